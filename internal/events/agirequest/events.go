package agirequest

import (
	"encoding/json"
	"time"

	"github.com/Arten331/agi-gateway/internal/app/global"
	"github.com/Arten331/agi-gateway/internal/domain/session"
	"github.com/Arten331/agi-gateway/internal/events"
	kafkaClient "github.com/Arten331/messaging/kafka"
	"github.com/segmentio/kafka-go"
)

const (
	KeyRequestReceived = "agi_request_received"
	KeyRequestFinished = "agi_request_finished"
	typeAgiRequest     = "agi_request"
)

type Event interface {
	events.Event
	kafkaClient.QueueableMessage
}

type KafkaMessage struct {
	Timestamp   int64  `json:"timestamp"`
	App         string `json:"app"`
	Environment string `json:"environment"`
	Type        string `json:"type"`
	Data        string `json:"data"`
}

type RequestReceived struct {
	Session   *session.Session `json:"session"`
	EventName string           `json:"event_name"`
}

func NewRequestReceived(s *session.Session) *RequestReceived {
	return &RequestReceived{Session: s, EventName: KeyRequestReceived}
}

func (e *RequestReceived) Name() string {
	return KeyRequestReceived
}

func (e *RequestReceived) KafkaMessage() (kafka.Message, error) {
	return newMessage(e.Name(), e.sessionKey(), e)
}

func (e *RequestReceived) sessionKey() string {
	if e.Session == nil {
		return ""
	}

	return e.Session.UniqueID
}

type RequestFinished struct {
	SessionID string `json:"session_id"`
	UniqueID  string `json:"unique_id"`
	Script    string `json:"script"`
	Error     string `json:"error,omitempty"`
	Took      int64  `json:"took_ms"`
	EventName string `json:"event_name"`
}

func NewRequestFinished(s *session.Session, err error) *RequestFinished {
	e := &RequestFinished{
		SessionID: s.ID,
		UniqueID:  s.UniqueID,
		Script:    s.Script,
		Took:      time.Since(s.Started).Milliseconds(),
		EventName: KeyRequestFinished,
	}

	if err != nil {
		e.Error = err.Error()
	}

	return e
}

func (e *RequestFinished) Name() string {
	return KeyRequestFinished
}

func (e *RequestFinished) KafkaMessage() (kafka.Message, error) {
	return newMessage(e.Name(), e.UniqueID, e)
}

func newMessage(name, key string, data any) (kafka.Message, error) {
	msg, err := json.Marshal(NewKafkaMessage(data))
	if err != nil {
		return kafka.Message{}, err
	}

	if key == "" {
		key = name
	}

	return kafka.Message{
		Key:   []byte(key),
		Value: msg,
	}, nil
}

func NewKafkaMessage(data any) KafkaMessage {
	eventData, _ := json.Marshal(data)

	return KafkaMessage{
		Timestamp:   time.Now().Unix(),
		App:         global.AppName(),
		Environment: global.AppEnv(),
		Type:        typeAgiRequest,
		Data:        string(eventData),
	}
}
