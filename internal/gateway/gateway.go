package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Arten331/agi-gateway/internal/agiservice"
	"github.com/Arten331/agi-gateway/internal/domain/session"
	"github.com/Arten331/agi-gateway/internal/events"
	"github.com/Arten331/agi-gateway/internal/events/agirequest"
	"github.com/Arten331/agi-gateway/internal/gateway/metrics"
	"github.com/Arten331/observability/logger"
	"go.uber.org/zap"
)

var ErrUnknownScript = errors.New("no route for agi script")

// Route serves one script. It runs while the session is registered.
type Route func(ctx context.Context, call *agiservice.Call) error

type Options struct {
	EventPublisher    *events.EventPublisher
	MetricService     metrics.Registerer
	SessionRepository session.Repository
	Feed              *Feed
}

type Gateway struct {
	EventPublisher *events.EventPublisher
	Metrics        metrics.Metrics
	Feed           *Feed
	sessions       session.Repository
	routes         map[string]Route
}

func New(o *Options) (*Gateway, error) {
	gateway := Gateway{
		EventPublisher: o.EventPublisher,
		Feed:           o.Feed,
		sessions:       o.SessionRepository,
		routes:         map[string]Route{},
		Metrics: metrics.Metrics{
			Service: o.MetricService,
		},
	}

	if gateway.sessions == nil {
		return nil, errors.New("service gateway require SessionRepository")
	}

	if o.MetricService == nil {
		return nil, errors.New("service gateway require MetricService")
	}

	if gateway.EventPublisher == nil {
		publisher := events.NewEventPublisher()
		gateway.EventPublisher = &publisher
	}

	if gateway.Feed == nil {
		gateway.Feed = NewFeed()
	}

	gateway.Metrics.Register()

	gateway.Handle(RouteStoreMetric, gateway.storeMetric)
	gateway.Handle(RouteRequestInfo, requestInfo)
	gateway.Handle(RouteHangup, hangup)

	return &gateway, nil
}

// Handle registers a route for the first path segment of agi_network_script.
// Call it before the AGI service starts.
func (g *Gateway) Handle(name string, route Route) {
	g.routes[name] = route
}

func (g *Gateway) Sessions() session.Repository {
	return g.sessions
}

func (g *Gateway) AgiHandler(ctx context.Context, call *agiservice.Call) error {
	s := session.New(call.Request, call.Remote)
	name := routeName(s.Script)

	err := g.sessions.Save(s)
	if err != nil {
		logger.L().Error("unable save agi session", zap.Error(err))
	}

	g.Metrics.SessionStarted()

	defer func() {
		g.Metrics.SessionFinished()

		if err := g.sessions.Delete(s.ID); err != nil && !errors.Is(err, session.ErrSessionNotFound) {
			logger.L().Error("unable delete agi session", zap.Error(err))
		}
	}()

	_, hasCallerID := call.Request.CallerID()
	g.Metrics.StoreRequest(name, !hasCallerID)
	g.Feed.Publish(s.JSON())
	g.EventPublisher.Notify(ctx, agirequest.NewRequestReceived(s))

	logger.L().Info("agi request", zap.Object("session", s))

	route, ok := g.routes[name]
	if !ok {
		err = fmt.Errorf("%w: %q", ErrUnknownScript, s.Script)
	} else {
		err = route(ctx, call)
	}

	if err != nil {
		g.Metrics.StoreRequestError(name)
	}

	g.EventPublisher.Notify(ctx, agirequest.NewRequestFinished(s, err))

	return err
}

// routeName is the first path segment of the script, "a" for "/a/b.agi".
func routeName(script string) string {
	script = strings.TrimPrefix(script, "/")

	name, _, _ := strings.Cut(script, "/")

	return name
}
