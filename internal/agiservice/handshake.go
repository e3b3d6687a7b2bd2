package agiservice

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// maxHandshakeLines bounds the handshake; Asterisk sends a few dozen lines.
const maxHandshakeLines = 256

var ErrHandshakeTooLong = errors.New("agi handshake exceeds line limit")

// ReadHandshake reads the agi_* lines up to, not including, the first empty
// line. Line terminators are removed.
func ReadHandshake(r *bufio.Reader) ([]string, error) {
	lines := make([]string, 0, 32)

	for {
		line, err := r.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return lines, errors.Wrapf(io.ErrUnexpectedEOF, "handshake after %d lines", len(lines))
			}

			return lines, errors.Wrap(err, "read handshake")
		}

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			return lines, nil
		}

		if len(lines) == maxHandshakeLines {
			return lines, ErrHandshakeTooLong
		}

		lines = append(lines, line)
	}
}

// maxSessionEnv is the number of environment lines agi.Session accepts.
const maxSessionEnv = 150

// replayHandshake rebuilds the handshake for agi.Session.Init. Only lines the
// session parser accepts are kept: agi_ key without spaces, ": " separator and
// a non-empty value.
func replayHandshake(lines []string) string {
	var b strings.Builder

	kept := 0

	for _, line := range lines {
		if kept == maxSessionEnv {
			break
		}

		key, value, found := strings.Cut(line, ": ")
		if !found || value == "" || len(key) <= len("agi_") ||
			!strings.HasPrefix(key, "agi_") || strings.ContainsAny(key, " \t:") {
			continue
		}

		b.WriteString(line)
		b.WriteByte('\n')

		kept++
	}

	b.WriteByte('\n')

	return b.String()
}
