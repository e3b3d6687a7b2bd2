package httpservice

import (
	"net/http"
	"time"

	"github.com/Arten331/observability/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type middlewareGroup int

const (
	groupBase middlewareGroup = iota + 1
)

type middlewareGroups map[middlewareGroup]chi.Middlewares

// chain panics on an unknown group, groups are fixed at startup.
func (g middlewareGroups) chain(name middlewareGroup) chi.Middlewares {
	mw, ok := g[name]
	if !ok {
		panic("not found middleware group")
	}

	return mw
}

func (s *Service) configureMiddlewares() {
	s.middlewares = middlewareGroups{
		groupBase: chi.Middlewares{
			middleware.RequestID,
			ZapLogger,
			middleware.Recoverer,
		},
	}
}

func ZapLogger(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		fields := []zapcore.Field{
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)),
			zap.String("remote", r.RemoteAddr),
			zap.String("request", r.RequestURI),
			zap.String("method", r.Method),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		}

		logger.L().Info("request completed", fields...)
	}

	return http.HandlerFunc(fn)
}
