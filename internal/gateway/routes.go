package gateway

import (
	"context"
	"sort"
	"strings"

	"github.com/Arten331/agi-gateway/internal/agiservice"
	"github.com/Arten331/agi-gateway/internal/gateway/metrics"
	"github.com/Arten331/agi-gateway/pkg/fastagi"
	"github.com/pkg/errors"
)

const (
	RouteStoreMetric = "store-metric"
	RouteRequestInfo = "request-info"
	RouteHangup      = "hangup"
)

// storeMetric counts a dialplan checkpoint. phase, result and campaign come
// from the query string or, for dialplans passing AGI arguments, from
// agi_arg_1..3.
func (g *Gateway) storeMetric(_ context.Context, call *agiservice.Call) error {
	req := call.Request

	phase, ok := parameterOrArgument(req, "phase", 0)
	if !ok {
		return errors.New("phase missing in parameters and argument 1")
	}

	result, ok := parameterOrArgument(req, "result", 1)
	if !ok {
		return errors.New("result missing in parameters and argument 2")
	}

	campaign, _ := parameterOrArgument(req, "campaign", 2)

	m := &metrics.StoredMetric{
		Phase:    phase,
		Result:   result,
		Campaign: campaign,
	}
	m.Caller, _ = req.CallerID()
	m.Dnid, _ = req.Dnid()

	g.Metrics.StoreMetric(m)

	_, err := call.Commands.Verbose("stored metric "+phase+"/"+result, 3)

	return errors.Wrap(err, "verbose")
}

// requestInfo exposes the parsed request to the dialplan as channel variables.
func requestInfo(_ context.Context, call *agiservice.Call) error {
	req := call.Request

	variables := map[string]string{}

	if script, ok := req.Script(); ok {
		variables["AGI_SCRIPT"] = script
	}

	if callerID, ok := req.CallerID(); ok {
		variables["AGI_CALLERID"] = callerID
	}

	if name, ok := req.CallerIDName(); ok {
		variables["AGI_CALLERIDNAME"] = name
	}

	for name, values := range req.ParameterMap() {
		variables["AGI_PARAM_"+variableName(name)] = values[0]
	}

	names := make([]string, 0, len(variables))
	for name := range variables {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		if _, err := call.Commands.SetVariable(name, variables[name]); err != nil {
			return errors.Wrapf(err, "set variable %s", name)
		}
	}

	return nil
}

func hangup(_ context.Context, call *agiservice.Call) error {
	_, err := call.Commands.Hangup()

	return errors.Wrap(err, "hangup")
}

func parameterOrArgument(req *fastagi.Request, name string, index int) (string, bool) {
	if value, ok := req.Parameter(name); ok && value != "" {
		return value, true
	}

	args := req.Arguments()
	if index < len(args) && args[index] != "" {
		return args[index], true
	}

	return "", false
}

// variableName upper-cases name and replaces everything outside [A-Z0-9_].
func variableName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
