package httpservice

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/pprof"

	"github.com/Arten331/agi-gateway/internal/domain/session"
	"github.com/Arten331/agi-gateway/internal/gateway"
	"github.com/Arten331/agi-gateway/internal/httpservice/httpwriter"
	"github.com/Arten331/observability/logger"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type MetricsService interface {
	Handler() http.HandlerFunc
}

// ChannelHangup is implemented by the ARI client.
type ChannelHangup interface {
	Hangup(uniqueID string) error
}

type Services struct {
	Metrics  MetricsService
	Sessions session.Repository
	Feed     *gateway.Feed
	Channels ChannelHangup
}

type Service struct {
	server      *http.Server
	middlewares middlewareGroups
	router      *chi.Mux
	writer      httpwriter.Writer
	services    Services
}

type Configuration func(s *Service) error

func New(cfgs ...Configuration) (*Service, error) {
	service := Service{}

	// Apply all Configurations passed in
	for _, cfg := range cfgs {
		err := cfg(&service)
		if err != nil {
			return nil, err
		}
	}

	if service.router == nil {
		return nil, errors.New("http service require address, use WithHTTPAddress")
	}

	if service.writer == nil {
		rw := httpwriter.NewJSONResponseWriter()
		service.writer = &rw
	}

	service.configureMiddlewares()
	service.configureRouter()

	return &service, nil
}

func (s *Service) Run(ctx context.Context, cancel context.CancelFunc) {
	go func() {
		logger.L().Info(fmt.Sprintf("Start http httpserver on %s!", s.server.Addr))

		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Error("error serve httpserver", zap.Error(err))
			cancel()
		}
	}()

	<-ctx.Done()

	logger.L().Info(fmt.Sprintf("Shutdown http httpserver on %s!", s.server.Addr))

	err := s.server.Shutdown(context.Background())
	if err != nil {
		logger.L().Error("Unable shutdown http httpserver", zap.Error(err))
	}
}

func (s *Service) Shutdown(shutdownCtx context.Context) error {
	return s.server.Shutdown(shutdownCtx)
}

// Handler exposes the router, mainly for httptest.
func (s *Service) Handler() http.Handler {
	return s.router
}

func (s *Service) configureRouter() {
	base := s.middlewares.chain(groupBase)

	s.enablePPROFHandlers(base)
	s.router.With(base...).Route("/", func(r chi.Router) {
		r.Get("/metrics", s.prometheus())
	})

	s.router.Get("/readiness", s.readiness())
	s.router.Get("/liveness", s.liveness())

	s.router.With(base...).Route("/sessions", func(r chi.Router) {
		r.Get("/", s.listSessions())
		r.Get("/feed", s.feed())
		r.Get("/{uniqueID}", s.getSession())
		r.Post("/{uniqueID}/hangup", s.hangupSession())
	})
}

func WithHTTPAddress(address string) Configuration {
	return func(s *Service) error {
		s.router = chi.NewRouter()
		s.server = &http.Server{
			Addr:    address,
			Handler: s.router,
		}

		return nil
	}
}

func WithServices(services Services) Configuration {
	return func(s *Service) error {
		s.services = services

		return nil
	}
}

func WithResponseWritter(r httpwriter.Writer) Configuration {
	return func(s *Service) error {
		s.writer = r

		return nil
	}
}

func (s *Service) enablePPROFHandlers(mw chi.Middlewares) {
	s.router.With(mw...).Route("/debug", func(r chi.Router) {
		r.HandleFunc("/pprof", pprof.Index)
		r.HandleFunc("/pprof/cmdline", pprof.Cmdline)
		r.HandleFunc("/pprof/profile", pprof.Profile)
		r.HandleFunc("/pprof/symbol", pprof.Symbol)
		r.HandleFunc("/pprof/trace", pprof.Trace)
		r.Handle("/pprof/goroutine", pprof.Handler("goroutine"))
		r.Handle("/pprof/heap", pprof.Handler("heap"))
		r.Handle("/pprof/allocs", pprof.Handler("allocs"))
	})
}
