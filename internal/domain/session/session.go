package session

import (
	"encoding/json"
	"time"

	"github.com/Arten331/agi-gateway/pkg/fastagi"
	"github.com/google/uuid"
	"go.uber.org/zap/zapcore"
)

// Session is an AGI connection between handshake and the end of its route.
// The indexed fields are copies of Request values so the repository can look
// them up.
type Session struct {
	ID       string           `json:"id"`
	UniqueID string           `json:"unique_id,omitempty"`
	Channel  string           `json:"channel,omitempty"`
	Script   string           `json:"script,omitempty"`
	CallerID string           `json:"caller_id,omitempty"`
	Remote   string           `json:"remote,omitempty"`
	Started  time.Time        `json:"started"`
	Request  *fastagi.Request `json:"request"`
}

func New(req *fastagi.Request, remote string) *Session {
	s := &Session{
		ID:      uuid.NewString(),
		Remote:  remote,
		Started: time.Now(),
		Request: req,
	}

	s.UniqueID, _ = req.UniqueID()
	s.Channel, _ = req.Channel()
	s.Script, _ = req.Script()
	s.CallerID, _ = req.CallerID()

	return s
}

func (s *Session) MarshalLogObject(encoder zapcore.ObjectEncoder) error {
	encoder.AddString("id", s.ID)
	encoder.AddString("uniqueid", s.UniqueID)
	encoder.AddString("channel", s.Channel)
	encoder.AddString("script", s.Script)
	encoder.AddString("remote", s.Remote)

	return nil
}

func (s *Session) JSON() []byte {
	body, _ := json.Marshal(s)

	return body
}
