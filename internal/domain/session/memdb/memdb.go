package memdb

import (
	"github.com/Arten331/agi-gateway/internal/domain/session"
	"github.com/hashicorp/go-memdb"
	"github.com/pkg/errors"
)

const (
	SessionTable         = "sessions"
	SessionIndex         = "id"
	SessionUniqueIDIndex = "uniqueid"
	SessionChannelIndex  = "channel"
	SessionScriptIndex   = "script"
)

type Repository struct {
	db *memdb.MemDB
}

func NewSessionMemDBRepository() (Repository, error) {
	schema := &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			SessionTable: {
				Name: SessionTable,
				Indexes: map[string]*memdb.IndexSchema{
					SessionIndex: {
						Name:    SessionIndex,
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "ID"},
					},
					SessionUniqueIDIndex: {
						Name:         SessionUniqueIDIndex,
						AllowMissing: true,
						Indexer:      &memdb.StringFieldIndex{Field: "UniqueID"},
					},
					SessionChannelIndex: {
						Name:         SessionChannelIndex,
						AllowMissing: true,
						Indexer:      &memdb.StringFieldIndex{Field: "Channel"},
					},
					SessionScriptIndex: {
						Name:         SessionScriptIndex,
						AllowMissing: true,
						Indexer:      &memdb.StringFieldIndex{Field: "Script"},
					},
				},
			},
		},
	}

	db, err := memdb.NewMemDB(schema)
	if err != nil {
		return Repository{}, err
	}

	return Repository{db: db}, nil
}

func (n *Repository) ReadAll() ([]*session.Session, error) {
	tx := n.db.Txn(false)
	defer tx.Abort()

	res, err := tx.Get(SessionTable, SessionIndex)
	if err != nil {
		return nil, errors.Wrap(err, session.ErrSessionNotFound.Error())
	}

	return collect(res), nil
}

func (n *Repository) Find(uniqueID string) (*session.Session, error) {
	return n.first(SessionUniqueIDIndex, uniqueID)
}

func (n *Repository) FindByChannel(channel string) (*session.Session, error) {
	return n.first(SessionChannelIndex, channel)
}

func (n *Repository) FindByScript(script string) ([]*session.Session, error) {
	tx := n.db.Txn(false)
	defer tx.Abort()

	res, err := tx.Get(SessionTable, SessionScriptIndex, script)
	if err != nil {
		return nil, errors.Wrap(err, session.ErrSessionNotFound.Error())
	}

	return collect(res), nil
}

func (n *Repository) Save(s *session.Session) error {
	tx := n.db.Txn(true)
	defer tx.Abort()

	err := tx.Insert(SessionTable, s)
	if err != nil {
		return errors.Wrap(session.ErrSaveSession, err.Error())
	}

	tx.Commit()

	return nil
}

func (n *Repository) Delete(id string) error {
	tx := n.db.Txn(true)
	defer tx.Abort()

	obj, err := tx.First(SessionTable, SessionIndex, id)
	if err != nil {
		return errors.Wrap(err, session.ErrSessionNotFound.Error())
	}

	if obj == nil {
		return session.ErrSessionNotFound
	}

	err = tx.Delete(SessionTable, obj)
	if err != nil {
		return errors.Wrapf(err, "delete session %s", id)
	}

	tx.Commit()

	return nil
}

func (n *Repository) Truncate() error {
	tx := n.db.Txn(true)
	_, _ = tx.DeleteAll(SessionTable, SessionIndex)

	tx.Commit()

	return nil
}

func (n *Repository) first(index, value string) (*session.Session, error) {
	tx := n.db.Txn(false)
	defer tx.Abort()

	obj, err := tx.First(SessionTable, index, value)
	if err != nil {
		return nil, errors.Wrap(err, session.ErrSessionNotFound.Error())
	}

	s, ok := obj.(*session.Session)
	if !ok {
		return nil, session.ErrSessionNotFound
	}

	return s, nil
}

func collect(res memdb.ResultIterator) []*session.Session {
	sessions := make([]*session.Session, 0)

	for obj := res.Next(); obj != nil; obj = res.Next() {
		s, ok := obj.(*session.Session)
		if ok {
			sessions = append(sessions, s)
		}
	}

	return sessions
}
