//go:build !integration

package gateway

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/Arten331/agi-gateway/internal/agiservice"
	"github.com/Arten331/agi-gateway/internal/domain/session/memdb"
	"github.com/Arten331/agi-gateway/internal/events"
	"github.com/Arten331/agi-gateway/internal/events/agirequest"
	"github.com/Arten331/agi-gateway/pkg/fastagi"
	"github.com/Arten331/observability/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/zaf/agi"
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

type command struct {
	name string
	args []string
}

type fakeCommander struct {
	mu       sync.Mutex
	commands []command
}

func (f *fakeCommander) record(name string, args ...string) (agi.Reply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.commands = append(f.commands, command{name: name, args: args})

	return agi.Reply{Res: 1}, nil
}

func (f *fakeCommander) Verbose(msg interface{}, _ ...int) (agi.Reply, error) {
	return f.record("VERBOSE", fmt.Sprint(msg))
}

func (f *fakeCommander) SetVariable(variable string, value interface{}) (agi.Reply, error) {
	return f.record("SET VARIABLE", variable, fmt.Sprint(value))
}

func (f *fakeCommander) Hangup(channel ...string) (agi.Reply, error) {
	return f.record("HANGUP", channel...)
}

type fixture struct {
	gateway  *Gateway
	registry *prometheus.Registry
	events   []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo, err := memdb.NewSessionMemDBRepository()
	require.NoError(t, err)

	f := &fixture{registry: prometheus.NewRegistry()}

	publisher := events.NewEventPublisher()
	publisher.Subscribe(events.EventHandlerFunc(func(_ context.Context, event events.Event) {
		f.events = append(f.events, event.Name())
	}), &agirequest.RequestReceived{}, &agirequest.RequestFinished{})

	f.gateway, err = New(&Options{
		EventPublisher:    &publisher,
		MetricService:     f.registry,
		SessionRepository: &repo,
	})
	require.NoError(t, err)

	return f
}

func newCall(t *testing.T, lines ...string) (*agiservice.Call, *fakeCommander) {
	t.Helper()

	req, err := fastagi.NewRequest(append([]string{}, lines...))
	require.NoError(t, err)

	commander := &fakeCommander{}

	return &agiservice.Call{Request: req, Remote: "127.0.0.1:40000", Commands: commander}, commander
}

func TestNew_RequiresRepository(t *testing.T) {
	_, err := New(&Options{MetricService: prometheus.NewRegistry()})
	require.Error(t, err)
}

func TestGateway_StoreMetric(t *testing.T) {
	f := newFixture(t)

	call, commander := newCall(t,
		"agi_network_script: store-metric?phase=hello&result=QUEUE&campaign=spring",
		"agi_callerid: 979144181775",
	)

	require.NoError(t, f.gateway.AgiHandler(context.Background(), call))
	require.Equal(t, []command{{name: "VERBOSE", args: []string{"stored metric hello/QUEUE"}}}, commander.commands)
	require.Equal(t, []string{agirequest.KeyRequestReceived, agirequest.KeyRequestFinished}, f.events)

	count, err := testutil.GatherAndCount(f.registry, "agi_store_metric_total")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestGateway_StoreMetricArguments(t *testing.T) {
	f := newFixture(t)

	call, _ := newCall(t,
		"agi_network_script: store-metric",
		"agi_arg_1: call_record",
		"agi_arg_2: HANGUP",
	)

	require.NoError(t, f.gateway.AgiHandler(context.Background(), call))

	call, _ = newCall(t, "agi_network_script: store-metric?phase=hello")
	require.Error(t, f.gateway.AgiHandler(context.Background(), call))

	count, err := testutil.GatherAndCount(f.registry, "agi_request_errors_total")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestGateway_RequestInfo(t *testing.T) {
	f := newFixture(t)

	call, commander := newCall(t,
		"agi_network_script: request-info?lang=de&my-param=x&my-param=y",
		"agi_callerid: \"John Doe\" <1234>",
	)

	require.NoError(t, f.gateway.AgiHandler(context.Background(), call))
	require.Equal(t, []command{
		{name: "SET VARIABLE", args: []string{"AGI_CALLERID", "1234"}},
		{name: "SET VARIABLE", args: []string{"AGI_CALLERIDNAME", "John Doe"}},
		{name: "SET VARIABLE", args: []string{"AGI_PARAM_LANG", "de"}},
		{name: "SET VARIABLE", args: []string{"AGI_PARAM_MY_PARAM", "x"}},
		{name: "SET VARIABLE", args: []string{"AGI_SCRIPT", "request-info"}},
	}, commander.commands)
}

func TestGateway_Hangup(t *testing.T) {
	f := newFixture(t)

	call, commander := newCall(t, "agi_network_script: /hangup/now.agi")

	require.NoError(t, f.gateway.AgiHandler(context.Background(), call))
	require.Equal(t, []command{{name: "HANGUP"}}, commander.commands)
}

func TestGateway_UnknownScript(t *testing.T) {
	f := newFixture(t)

	call, _ := newCall(t, "agi_network_script: missing.agi")

	err := f.gateway.AgiHandler(context.Background(), call)
	require.ErrorIs(t, err, ErrUnknownScript)
}

func TestGateway_SessionLifetime(t *testing.T) {
	f := newFixture(t)

	started := make(chan struct{})
	release := make(chan struct{})

	f.gateway.Handle("wait", func(ctx context.Context, call *agiservice.Call) error {
		close(started)
		<-release

		return nil
	})

	messages, unsubscribe := f.gateway.Feed.Subscribe()
	defer unsubscribe()

	call, _ := newCall(t,
		"agi_network_script: wait",
		"agi_uniqueid: 1697712345.42",
	)

	done := make(chan error, 1)

	go func() {
		done <- f.gateway.AgiHandler(context.Background(), call)
	}()

	<-started

	s, err := f.gateway.Sessions().Find("1697712345.42")
	require.NoError(t, err)
	require.Equal(t, "wait", s.Script)

	select {
	case msg := <-messages:
		require.Contains(t, string(msg), "1697712345.42")
	case <-time.After(time.Second):
		t.Fatal("request not published to feed")
	}

	close(release)
	require.NoError(t, <-done)

	all, err := f.gateway.Sessions().ReadAll()
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestRouteName(t *testing.T) {
	for script, expected := range map[string]string{
		"store-metric":   "store-metric",
		"/store-metric":  "store-metric",
		"hangup/now.agi": "hangup",
		"":               "",
		"/":              "",
		"myscript.agi":   "myscript.agi",
	} {
		require.Equal(t, expected, routeName(script), script)
	}
}
