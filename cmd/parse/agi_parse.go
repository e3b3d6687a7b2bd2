// Command agi-parse prints a FastAGI handshake dump as JSON.
//
//	agi-parse -file handshake.txt
//	agi-parse -field caller_id < handshake.txt
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/Arten331/agi-gateway/internal/agiservice"
	"github.com/Arten331/agi-gateway/pkg/fastagi"
	"github.com/Arten331/observability/logger"
	"github.com/pkg/errors"
	"github.com/valyala/fastjson"
	"go.uber.org/zap"
)

func main() {
	var file, field string

	flag.StringVar(&file, "file", "", "handshake dump, stdin when empty")
	flag.StringVar(&field, "field", "", "print only this JSON field of the request")
	flag.Parse()

	logger.MustSetupGlobal(
		logger.WithConfiguration(logger.CoreOptions{
			OutputPath: "stderr",
			Level:      "INFO",
			Encoding:   logger.EncodingConsole,
		}),
	)

	if err := realMain(os.Stdout, file, field); err != nil {
		logger.L().Fatal("unable parse handshake", zap.Error(err))
	}
}

func realMain(out io.Writer, file, field string) error {
	in := io.Reader(os.Stdin)

	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			return errors.Wrap(err, "open handshake")
		}

		defer func() { _ = f.Close() }()

		in = f
	}

	result, err := run(in, field)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, result)

	return err
}

func run(in io.Reader, field string) (string, error) {
	lines, err := agiservice.ReadHandshake(bufio.NewReader(in))
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", err
	}

	req, err := fastagi.NewRequest(lines)
	if err != nil {
		return "", err
	}

	body, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return "", err
	}

	if field == "" {
		return string(body), nil
	}

	v, err := fastjson.ParseBytes(body)
	if err != nil {
		return "", err
	}

	value := v.Get(field)
	if value == nil {
		return "", errors.Errorf("field %q is not set", field)
	}

	if value.Type() == fastjson.TypeString {
		return string(value.GetStringBytes()), nil
	}

	return value.String(), nil
}
