package fastagi

import (
	"net/url"
	"strings"
)

// parseQuery splits a query string into its parameters. Values keep the order
// in which they occur. A pair without '=' has an empty value.
//
// Only %XX escapes are decoded, '+' stays a plus sign.
func parseQuery(query string) map[string][]string {
	params := map[string][]string{}

	for _, pair := range strings.Split(query, "&") {
		if pair == "" {
			continue
		}

		name, value, _ := strings.Cut(pair, "=")
		name = unescape(name)
		params[name] = append(params[name], unescape(value))
	}

	return params
}

// unescape returns s unchanged when it holds a broken escape sequence.
func unescape(s string) string {
	decoded, err := url.PathUnescape(s)
	if err != nil {
		return s
	}

	return decoded
}
