// Package global keeps the process identity stamped on outgoing events.
package global

import "sync/atomic"

type Identity struct {
	Name string
	Env  string
}

var identity atomic.Value //nolint:gochecknoglobals // set once in app.Init

func AppName() string {
	return current().Name
}

func AppEnv() string {
	return current().Env
}

func SetGlobals(serviceName, env string) {
	identity.Store(Identity{Name: serviceName, Env: env})
}

func current() Identity {
	id, _ := identity.Load().(Identity)

	return id
}
