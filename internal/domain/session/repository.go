package session

import (
	"errors"
)

var (
	ErrSessionNotFound = errors.New("agi session not found")
	ErrSaveSession     = errors.New("unable save agi session")
)

type Repository interface {
	Find(uniqueID string) (*Session, error)
	FindByChannel(channel string) (*Session, error)
	FindByScript(script string) ([]*Session, error)
	ReadAll() ([]*Session, error)
	Save(s *Session) error
	Delete(id string) error
	Truncate() error
}
