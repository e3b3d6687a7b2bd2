// Package fastagi turns the FastAGI handshake sent by Asterisk into a Request.
//
// The handshake is a block of "agi_<key>: <value>" lines terminated by an empty
// line. Its exact contents vary between Asterisk versions, so the parser is
// permissive: lines it does not understand are skipped and malformed values
// leave the corresponding field unset.
package fastagi

import (
	"errors"
	"strconv"
	"strings"
)

var ErrInvalidArgument = errors.New("fastagi: handshake lines must not be nil")

const (
	keyPrefix = "agi_"

	// unknownValue is sent by Asterisk in place of an empty caller id, dnid or rdnis.
	unknownValue = "unknown"
	// enhancedOff is the only agi_enhanced value meaning "not EAGI".
	enhancedOff = "0.0"
)

const (
	keyNetworkScript = "network_script"
	keyRequest       = "request"
	keyChannel       = "channel"
	keyUniqueID      = "uniqueid"
	keyType          = "type"
	keyLanguage      = "language"
	keyCallerID      = "callerid"
	keyCallerIDName  = "calleridname"
	keyDnid          = "dnid"
	keyRdnis         = "rdnis"
	keyContext       = "context"
	keyExtension     = "extension"
	keyPriority      = "priority"
	keyEnhanced      = "enhanced"
	keyAccountCode   = "accountcode"
	keyVersion       = "version"
	keyThreadID      = "threadid"
	keyCallingPres   = "callingpres"
	keyCallingAni2   = "callingani2"
	keyCallingTon    = "callington"
	keyCallingTns    = "callingtns"
	keyArgPrefix     = "arg_"
)

// Request is the parsed handshake. It is never modified after NewRequest
// returns, so it can be shared between goroutines freely.
type Request struct {
	script       *string
	queryString  *string
	requestURL   *string
	channel      *string
	uniqueID     *string
	chanType     *string
	language     *string
	callerID     *string
	callerIDName *string
	dnid         *string
	rdnis        *string
	context      *string
	extension    *string
	priority     *int
	enhanced     *bool
	accountCode  *string
	version      *string
	threadID     *string
	callingPres  *int
	callingAni2  *int
	callingTon   *int
	callingTns   *int
	arguments    []string
	parameters   map[string][]string
}

// NewRequest builds a Request from the raw handshake lines, without the
// terminating empty line. A nil slice is rejected with ErrInvalidArgument, an
// empty one yields a Request with every field unset.
func NewRequest(lines []string) (*Request, error) {
	if lines == nil {
		return nil, ErrInvalidArgument
	}

	env := environment(lines)

	r := &Request{
		requestURL:  env.value(keyRequest),
		channel:     env.value(keyChannel),
		uniqueID:    env.value(keyUniqueID),
		chanType:    env.value(keyType),
		language:    env.value(keyLanguage),
		dnid:        env.known(keyDnid),
		rdnis:       env.known(keyRdnis),
		context:     env.value(keyContext),
		extension:   env.value(keyExtension),
		priority:    env.integer(keyPriority),
		accountCode: env.value(keyAccountCode),
		version:     env.value(keyVersion),
		threadID:    env.value(keyThreadID),
		callingPres: env.integer(keyCallingPres),
		callingAni2: env.integer(keyCallingAni2),
		callingTon:  env.integer(keyCallingTon),
		callingTns:  env.integer(keyCallingTns),
		arguments:   env.arguments(),
		parameters:  map[string][]string{},
	}

	if enhanced := env.value(keyEnhanced); enhanced != nil {
		on := *enhanced != enhancedOff
		r.enhanced = &on
	}

	if script := env.value(keyNetworkScript); script != nil {
		path, query, found := strings.Cut(*script, "?")
		r.script = &path

		if found {
			r.queryString = &query
			r.parameters = parseQuery(query)
		}
	}

	if _, split := env[keyCallerIDName]; split {
		// Asterisk 1.2 and later send name and number on separate lines.
		r.callerID = env.known(keyCallerID)
		r.callerIDName = env.known(keyCallerIDName)
	} else if combined := env.known(keyCallerID); combined != nil {
		name, id := splitCallerID(*combined)
		r.callerID = knownOrNil(id)
		r.callerIDName = knownOrNil(name)
	}

	return r, nil
}

// env holds the handshake values keyed by the name after the agi_ prefix.
type env map[string]string

func environment(lines []string) env {
	e := env{}

	for _, line := range lines {
		colon := strings.IndexByte(line, ':')
		if colon < 0 {
			continue
		}

		key := strings.TrimSpace(line[:colon])
		if !strings.HasPrefix(key, keyPrefix) {
			continue
		}

		e[strings.TrimPrefix(key, keyPrefix)] = strings.TrimPrefix(line[colon+1:], " ")
	}

	return e
}

func (e env) value(key string) *string {
	v, ok := e[key]
	if !ok || v == "" {
		return nil
	}

	return &v
}

// known is value with the "unknown" sentinel mapped to unset.
func (e env) known(key string) *string {
	v := e.value(key)
	if v == nil || *v == unknownValue {
		return nil
	}

	return v
}

func (e env) integer(key string) *int {
	v := e.value(key)
	if v == nil {
		return nil
	}

	i, err := strconv.Atoi(*v)
	if err != nil {
		return nil
	}

	return &i
}

// arguments collects agi_arg_1, agi_arg_2, ... up to the first gap.
func (e env) arguments() []string {
	var args []string

	for i := 1; ; i++ {
		v, ok := e[keyArgPrefix+strconv.Itoa(i)]
		if !ok {
			return args
		}

		args = append(args, v)
	}
}

func knownOrNil(s string) *string {
	if s == "" || s == unknownValue {
		return nil
	}

	return &s
}

func get(p *string) (string, bool) {
	if p == nil {
		return "", false
	}

	return *p, true
}

func getInt(p *int) (int, bool) {
	if p == nil {
		return 0, false
	}

	return *p, true
}

// Script is the agi_network_script value with the query string removed.
func (r *Request) Script() (string, bool) { return get(r.script) }

// QueryString is the raw text after the first '?' of agi_network_script.
func (r *Request) QueryString() (string, bool) { return get(r.queryString) }

// RequestURL is agi_request as received, query string included.
func (r *Request) RequestURL() (string, bool) { return get(r.requestURL) }

func (r *Request) Channel() (string, bool) { return get(r.channel) }

// UniqueID returns agi_uniqueid. Old handshakes do not carry that line; the
// channel name then doubles as the unique id, so both accessors return the
// same value.
func (r *Request) UniqueID() (string, bool) {
	if r.uniqueID != nil {
		return *r.uniqueID, true
	}

	return get(r.channel)
}

// Type is the channel technology, e.g. SIP.
func (r *Request) Type() (string, bool) { return get(r.chanType) }

func (r *Request) Language() (string, bool) { return get(r.language) }

// CallerID is the number part of the caller identity.
func (r *Request) CallerID() (string, bool) { return get(r.callerID) }

// CallerIDName is the display name part of the caller identity.
func (r *Request) CallerIDName() (string, bool) { return get(r.callerIDName) }

// Dnid is the dialed number.
func (r *Request) Dnid() (string, bool) { return get(r.dnid) }

// Rdnis is the redirecting number.
func (r *Request) Rdnis() (string, bool) { return get(r.rdnis) }

func (r *Request) Context() (string, bool) { return get(r.context) }

func (r *Request) Extension() (string, bool) { return get(r.extension) }

func (r *Request) Priority() (int, bool) { return getInt(r.priority) }

// Enhanced reports whether the script was started as EAGI.
func (r *Request) Enhanced() (bool, bool) {
	if r.enhanced == nil {
		return false, false
	}

	return *r.enhanced, true
}

func (r *Request) AccountCode() (string, bool) { return get(r.accountCode) }

// Version is the Asterisk version, sent by 1.6 and later.
func (r *Request) Version() (string, bool) { return get(r.version) }

func (r *Request) ThreadID() (string, bool) { return get(r.threadID) }

func (r *Request) CallingPres() (int, bool) { return getInt(r.callingPres) }

func (r *Request) CallingAni2() (int, bool) { return getInt(r.callingAni2) }

func (r *Request) CallingTon() (int, bool) { return getInt(r.callingTon) }

func (r *Request) CallingTns() (int, bool) { return getInt(r.callingTns) }

// Arguments returns the agi_arg_N values in order.
func (r *Request) Arguments() []string {
	return append([]string(nil), r.arguments...)
}

// Parameter returns the first value of the named query parameter.
func (r *Request) Parameter(name string) (string, bool) {
	values, ok := r.parameters[name]
	if !ok {
		return "", false
	}

	return values[0], true
}

// ParameterValues returns every value of the named query parameter in the
// order they appear, or nil if the parameter was never given.
func (r *Request) ParameterValues(name string) []string {
	values, ok := r.parameters[name]
	if !ok {
		return nil
	}

	return append([]string(nil), values...)
}

// ParameterMap returns a copy of all query parameters. It is never nil.
func (r *Request) ParameterMap() map[string][]string {
	m := make(map[string][]string, len(r.parameters))
	for name, values := range r.parameters {
		m[name] = append([]string(nil), values...)
	}

	return m
}
