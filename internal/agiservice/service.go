package agiservice

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"

	"github.com/Arten331/agi-gateway/pkg/fastagi"
	"github.com/Arten331/observability/logger"
	"github.com/pkg/errors"
	"github.com/zaf/agi"
	"go.uber.org/ratelimit"
	"go.uber.org/zap"
)

// Commander is the part of the AGI command set routes use.
type Commander interface {
	Verbose(msg interface{}, level ...int) (agi.Reply, error)
	SetVariable(variable string, value interface{}) (agi.Reply, error)
	Hangup(channel ...string) (agi.Reply, error)
}

// Call is a FastAGI connection after its handshake has been parsed.
type Call struct {
	Request  *fastagi.Request
	Remote   string
	Commands Commander
}

type AgiSessionHandler interface {
	AgiHandler(ctx context.Context, call *Call) error
}

type Service struct {
	address  string
	listener net.Listener
	limiter  ratelimit.Limiter
	handler  AgiSessionHandler
}

type Options struct {
	Host string
	Port int
	// RateLimit is the number of connections accepted per second, 0 disables it.
	RateLimit int
	Handler   AgiSessionHandler
}

func New(o Options) *Service {
	address := net.JoinHostPort(o.Host, strconv.Itoa(o.Port))

	limiter := ratelimit.NewUnlimited()
	if o.RateLimit > 0 {
		limiter = ratelimit.New(o.RateLimit)
	}

	return &Service{
		address: address,
		limiter: limiter,
		handler: o.Handler,
	}
}

// Listen binds the listener. Run calls it when it was not called before.
func (s *Service) Listen() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return errors.Wrapf(err, "agi listen on %s", s.address)
	}

	s.listener = listener

	return nil
}

func (s *Service) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}

	return s.listener.Addr()
}

func (s *Service) Run(ctx context.Context, cancel context.CancelFunc) {
	defer cancel()

	if s.listener == nil {
		if err := s.Listen(); err != nil {
			logger.L().Error("AGI listener error", zap.Error(err))

			return
		}
	}

	logger.L().Info(fmt.Sprintf("AGI service listen on %s", s.listener.Addr()))

	go func() {
		<-ctx.Done()

		_ = s.listener.Close()
	}()

	for {
		s.limiter.Take()

		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				logger.S().Infof("Stopped agi service %s", s.listener.Addr())

				return
			}

			logger.L().Error("AGI accept connection error", zap.Error(err))

			continue
		}

		go func() {
			if err := s.handleAgi(ctx, conn); err != nil {
				logger.L().Error("Error handle AGI connect", zap.Error(err))
			}
		}()
	}
}

func (s *Service) Shutdown(_ context.Context) error {
	if s.listener == nil {
		return nil
	}

	err := s.listener.Close()
	if errors.Is(err, net.ErrClosed) {
		return nil
	}

	return err
}

func (s *Service) handleAgi(ctx context.Context, c net.Conn) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.L().Error("Session terminated", zap.Any("error", r))

			err = fmt.Errorf("agi session panic: %v", r)
		}

		_ = c.Close()
	}()

	rw := bufio.NewReadWriter(bufio.NewReader(c), bufio.NewWriter(c))

	logger.L().Debug("handle AGI", zap.String("remote", c.RemoteAddr().String()))

	lines, err := ReadHandshake(rw.Reader)
	if err != nil {
		return errors.Wrap(err, "agi handshake")
	}

	req, err := fastagi.NewRequest(lines)
	if err != nil {
		return err
	}

	logger.L().Debug("AGI request", zap.Object("request", req))

	session, err := newSession(lines, rw)
	if err != nil {
		return err
	}

	return s.handler.AgiHandler(ctx, &Call{
		Request:  req,
		Remote:   c.RemoteAddr().String(),
		Commands: session,
	})
}

// newSession hands the already consumed handshake back to agi.Session so it
// fills Env, then continues on the connection for the command phase.
func newSession(lines []string, rw *bufio.ReadWriter) (*agi.Session, error) {
	session := agi.New()

	replay := io.MultiReader(strings.NewReader(replayHandshake(lines)), rw.Reader)

	err := session.Init(bufio.NewReadWriter(bufio.NewReader(replay), rw.Writer))
	if err != nil {
		return nil, errors.Wrap(err, "agi session init")
	}

	return session, nil
}
