//go:build !integration

package httpservice

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/Arten331/agi-gateway/internal/domain/session"
	"github.com/Arten331/agi-gateway/internal/domain/session/memdb"
	"github.com/Arten331/agi-gateway/internal/gateway"
	"github.com/Arten331/agi-gateway/internal/httpservice/httpwriter"
	"github.com/Arten331/agi-gateway/pkg/fastagi"
	"github.com/Arten331/observability/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fastjson"
	"nhooyr.io/websocket"
)

func TestMain(m *testing.M) {
	logger.MustSetupGlobal(
		logger.WithConfiguration(logger.CoreOptions{
			OutputPath: "stderr",
			Level:      logger.KeyLevelDebug,
			Encoding:   logger.EncodingConsole,
		}),
	)

	os.Exit(m.Run())
}

type fakeChannels struct {
	hungUp []string
	err    error
}

func (f *fakeChannels) Hangup(uniqueID string) error {
	f.hungUp = append(f.hungUp, uniqueID)

	return f.err
}

func newService(t *testing.T, services Services) *Service {
	t.Helper()

	rw := httpwriter.NewJSONResponseWriter()

	s, err := New(
		WithHTTPAddress(":0"),
		WithResponseWritter(&rw),
		WithServices(services),
	)
	require.NoError(t, err)

	return s
}

func newRepository(t *testing.T, handshakes ...[]string) session.Repository {
	t.Helper()

	repo, err := memdb.NewSessionMemDBRepository()
	require.NoError(t, err)

	for _, lines := range handshakes {
		req, err := fastagi.NewRequest(lines)
		require.NoError(t, err)
		require.NoError(t, repo.Save(session.New(req, "127.0.0.1:40000")))
	}

	return &repo
}

func serve(t *testing.T, s *Service, method, target string) (int, *fastjson.Value) {
	t.Helper()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)

	s.Handler().ServeHTTP(rec, req)

	body, err := fastjson.ParseBytes(rec.Body.Bytes())
	require.NoError(t, err, rec.Body.String())

	return rec.Code, body
}

func TestHttpService_liveness(t *testing.T) {
	s := newService(t, Services{})

	code, body := serve(t, s, http.MethodGet, "/liveness")

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "OK", string(body.GetStringBytes("message")))
}

func TestHttpService_New(t *testing.T) {
	_, err := New(WithServices(Services{}))
	require.Error(t, err)
}

func TestHttpService_Sessions(t *testing.T) {
	s := newService(t, Services{
		Sessions: newRepository(t,
			[]string{
				"agi_network_script: store-metric?phase=hello",
				"agi_uniqueid: 1697712345.42",
				"agi_callerid: \"Alice\" <4930123456>",
			},
			[]string{
				"agi_network_script: hangup",
				"agi_channel: SIP/1234-d715",
			},
		),
	})

	code, body := serve(t, s, http.MethodGet, "/sessions")
	require.Equal(t, http.StatusOK, code)
	require.Len(t, body.GetArray("data"), 2)

	code, body = serve(t, s, http.MethodGet, "/sessions?script=hangup")
	require.Equal(t, http.StatusOK, code)
	require.Len(t, body.GetArray("data"), 1)
	require.Equal(t, "SIP/1234-d715", string(body.GetStringBytes("data", "0", "unique_id")))

	code, body = serve(t, s, http.MethodGet, "/sessions/1697712345.42")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "store-metric", string(body.GetStringBytes("data", "script")))
	require.Equal(t, "Alice", string(body.GetStringBytes("data", "request", "caller_id_name")))
	require.Equal(t, "hello", string(body.GetStringBytes("data", "request", "parameters", "phase", "0")))

	code, body = serve(t, s, http.MethodGet, "/sessions/missing")
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, session.ErrSessionNotFound.Error(), string(body.GetStringBytes("message")))
}

func TestHttpService_Hangup(t *testing.T) {
	repo := newRepository(t, []string{"agi_uniqueid: 1697712345.42"})

	t.Run("ari disabled", func(t *testing.T) {
		s := newService(t, Services{Sessions: repo})

		code, _ := serve(t, s, http.MethodPost, "/sessions/1697712345.42/hangup")
		require.Equal(t, http.StatusServiceUnavailable, code)
	})

	t.Run("hangup", func(t *testing.T) {
		channels := &fakeChannels{}
		s := newService(t, Services{Sessions: repo, Channels: channels})

		code, _ := serve(t, s, http.MethodPost, "/sessions/1697712345.42/hangup")
		require.Equal(t, http.StatusOK, code)
		require.Equal(t, []string{"1697712345.42"}, channels.hungUp)

		code, _ = serve(t, s, http.MethodPost, "/sessions/missing/hangup")
		require.Equal(t, http.StatusNotFound, code)
		require.Len(t, channels.hungUp, 1)
	})

	t.Run("ari error", func(t *testing.T) {
		s := newService(t, Services{Sessions: repo, Channels: &fakeChannels{err: errors.New("404 Not Found")}})

		code, body := serve(t, s, http.MethodPost, "/sessions/1697712345.42/hangup")
		require.Equal(t, http.StatusBadGateway, code)
		require.Equal(t, "404 Not Found", string(body.GetStringBytes("message")))
	})
}

func TestHttpService_Feed(t *testing.T) {
	feed := gateway.NewFeed()
	s := newService(t, Services{Sessions: newRepository(t), Feed: feed})

	server := httptest.NewServer(s.Handler())
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(server.URL, "http")+"/sessions/feed", nil)
	require.NoError(t, err)

	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "") }()

	require.Eventually(t, func() bool { return feed.Subscribers() == 1 }, time.Second, 10*time.Millisecond)

	feed.Publish([]byte(`{"script":"hangup"}`))

	typ, msg, err := conn.Read(ctx)
	require.NoError(t, err)
	require.Equal(t, websocket.MessageText, typ)

	v, err := fastjson.ParseBytes(msg)
	require.NoError(t, err)
	require.Equal(t, "hangup", string(v.GetStringBytes("script")))
}
