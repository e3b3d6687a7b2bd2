package fastagi

import (
	"encoding/json"
	"strings"

	"go.uber.org/zap/zapcore"
)

type requestJSON struct {
	Script       *string             `json:"script,omitempty"`
	RequestURL   *string             `json:"request_url,omitempty"`
	Channel      *string             `json:"channel,omitempty"`
	UniqueID     *string             `json:"unique_id,omitempty"`
	Type         *string             `json:"type,omitempty"`
	Language     *string             `json:"language,omitempty"`
	CallerID     *string             `json:"caller_id,omitempty"`
	CallerIDName *string             `json:"caller_id_name,omitempty"`
	Dnid         *string             `json:"dnid,omitempty"`
	Rdnis        *string             `json:"rdnis,omitempty"`
	Context      *string             `json:"context,omitempty"`
	Extension    *string             `json:"extension,omitempty"`
	Priority     *int                `json:"priority,omitempty"`
	Enhanced     *bool               `json:"enhanced,omitempty"`
	AccountCode  *string             `json:"account_code,omitempty"`
	Version      *string             `json:"version,omitempty"`
	ThreadID     *string             `json:"thread_id,omitempty"`
	CallingPres  *int                `json:"calling_pres,omitempty"`
	CallingAni2  *int                `json:"calling_ani2,omitempty"`
	CallingTon   *int                `json:"calling_ton,omitempty"`
	CallingTns   *int                `json:"calling_tns,omitempty"`
	Arguments    []string            `json:"arguments,omitempty"`
	Parameters   map[string][]string `json:"parameters"`
}

// MarshalJSON leaves unset fields out of the object.
func (r *Request) MarshalJSON() ([]byte, error) {
	uniqueID := r.uniqueID
	if uniqueID == nil {
		uniqueID = r.channel
	}

	return json.Marshal(requestJSON{
		Script:       r.script,
		RequestURL:   r.requestURL,
		Channel:      r.channel,
		UniqueID:     uniqueID,
		Type:         r.chanType,
		Language:     r.language,
		CallerID:     r.callerID,
		CallerIDName: r.callerIDName,
		Dnid:         r.dnid,
		Rdnis:        r.rdnis,
		Context:      r.context,
		Extension:    r.extension,
		Priority:     r.priority,
		Enhanced:     r.enhanced,
		AccountCode:  r.accountCode,
		Version:      r.version,
		ThreadID:     r.threadID,
		CallingPres:  r.callingPres,
		CallingAni2:  r.callingAni2,
		CallingTon:   r.callingTon,
		CallingTns:   r.callingTns,
		Arguments:    r.arguments,
		Parameters:   r.parameters,
	})
}

func (r *Request) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	addString := func(key string, p *string) {
		if p != nil {
			enc.AddString(key, *p)
		}
	}

	addString("script", r.script)
	addString("request", r.requestURL)
	addString("channel", r.channel)
	addString("uniqueid", r.uniqueID)
	addString("callerid", r.callerID)
	addString("calleridname", r.callerIDName)
	addString("dnid", r.dnid)
	addString("context", r.context)
	addString("extension", r.extension)

	if r.priority != nil {
		enc.AddInt("priority", *r.priority)
	}

	if len(r.arguments) > 0 {
		enc.AddString("arguments", strings.Join(r.arguments, ","))
	}

	return nil
}

func (r *Request) String() string {
	var b strings.Builder

	b.WriteString("Request[")

	field := func(name string, value string, ok bool) {
		if !ok {
			return
		}

		if b.Len() > len("Request[") {
			b.WriteString(", ")
		}

		b.WriteString(name)
		b.WriteString("=")
		b.WriteString(value)
	}

	script, ok := r.Script()
	field("script", script, ok)
	requestURL, ok := r.RequestURL()
	field("requestURL", requestURL, ok)
	channel, ok := r.Channel()
	field("channel", channel, ok)
	uniqueID, ok := r.UniqueID()
	field("uniqueId", uniqueID, ok)
	callerID, ok := r.CallerID()
	field("callerId", callerID, ok)
	callerIDName, ok := r.CallerIDName()
	field("callerIdName", callerIDName, ok)
	context, ok := r.Context()
	field("context", context, ok)
	extension, ok := r.Extension()
	field("extension", extension, ok)

	b.WriteString("]")

	return b.String()
}
