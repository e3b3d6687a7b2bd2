package httpservice

import (
	"errors"
	"io"
	"net/http"

	"github.com/Arten331/agi-gateway/internal/domain/session"
	"github.com/Arten331/observability/logger"
	"github.com/go-chi/chi/v5"
	"github.com/gobwas/ws"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	errAriDisabled  = errors.New("ari client disabled")
	errFeedDisabled = errors.New("request feed disabled")
)

func (s *Service) liveness() http.HandlerFunc {
	return func(w http.ResponseWriter, request *http.Request) {
		s.writer.WriteSuccess(w, "OK", nil)
	}
}

func (s *Service) readiness() http.HandlerFunc {
	return func(w http.ResponseWriter, request *http.Request) {
		s.writer.WriteSuccess(w, "OK", nil)
	}
}

func (s *Service) prometheus() http.HandlerFunc {
	if s.services.Metrics != nil {
		logger.L().Info("custom prometheus registry handler enabled")

		return s.services.Metrics.Handler()
	}

	logger.L().Info("default prometheus registry enabled")

	return func(w http.ResponseWriter, r *http.Request) {
		promhttp.HandlerFor(
			prometheus.DefaultGatherer,
			promhttp.HandlerOpts{},
		).ServeHTTP(w, r)
	}
}

func (s *Service) listSessions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			sessions []*session.Session
			err      error
		)

		if script := r.URL.Query().Get("script"); script != "" {
			sessions, err = s.services.Sessions.FindByScript(script)
		} else {
			sessions, err = s.services.Sessions.ReadAll()
		}

		if err != nil {
			s.writer.WriteError(w, err, http.StatusInternalServerError)

			return
		}

		s.writer.WriteSuccess(w, "OK", sessions)
	}
}

func (s *Service) getSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		found, ok := s.findSession(w, r)
		if !ok {
			return
		}

		s.writer.WriteSuccess(w, "OK", found)
	}
}

func (s *Service) hangupSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.services.Channels == nil {
			s.writer.WriteError(w, errAriDisabled, http.StatusServiceUnavailable)

			return
		}

		found, ok := s.findSession(w, r)
		if !ok {
			return
		}

		err := s.services.Channels.Hangup(found.UniqueID)
		if err != nil {
			logger.L().Error("Unable hangup channel", zap.Object("session", found), zap.Error(err))
			s.writer.WriteError(w, err, http.StatusBadGateway)

			return
		}

		logger.L().Info("channel hangup", zap.Object("session", found))
		s.writer.WriteSuccess(w, "OK", nil)
	}
}

func (s *Service) findSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	found, err := s.services.Sessions.Find(chi.URLParam(r, "uniqueID"))

	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		s.writer.WriteError(w, err, http.StatusNotFound)

		return nil, false
	case err != nil:
		s.writer.WriteError(w, err, http.StatusInternalServerError)

		return nil, false
	}

	return found, true
}

// feed streams every parsed request as a websocket text frame.
func (s *Service) feed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.services.Feed == nil {
			s.writer.WriteError(w, errFeedDisabled, http.StatusServiceUnavailable)

			return
		}

		conn, _, _, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			logger.L().Error("handshake error", zap.Error(err))

			return
		}

		defer func() { _ = conn.Close() }()

		messages, unsubscribe := s.services.Feed.Subscribe()
		defer unsubscribe()

		closed := make(chan struct{})

		go func() {
			defer close(closed)

			for {
				header, err := ws.ReadHeader(conn)
				if err != nil {
					return
				}

				if _, err = io.CopyN(io.Discard, conn, header.Length); err != nil {
					return
				}

				if header.OpCode == ws.OpClose {
					logger.L().Debug("feed closed by client")

					return
				}
			}
		}()

		for {
			select {
			case <-closed:
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}

				if err := ws.WriteFrame(conn, ws.NewFrame(ws.OpText, true, msg)); err != nil {
					logger.L().Debug("unable write feed frame", zap.Error(err))

					return
				}
			}
		}
	}
}
