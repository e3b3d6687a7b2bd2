package app

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/Arten331/agi-gateway/internal/agiservice"
	"github.com/Arten331/agi-gateway/internal/app/global"
	"github.com/Arten331/agi-gateway/internal/config"
	"github.com/Arten331/agi-gateway/internal/domain/session"
	"github.com/Arten331/agi-gateway/internal/domain/session/memdb"
	"github.com/Arten331/agi-gateway/internal/events"
	"github.com/Arten331/agi-gateway/internal/events/agirequest"
	"github.com/Arten331/agi-gateway/internal/gateway"
	"github.com/Arten331/agi-gateway/internal/httpservice"
	"github.com/Arten331/agi-gateway/internal/httpservice/httpwriter"
	"github.com/Arten331/agi-gateway/pkg/ari"
	kafkaClient "github.com/Arten331/messaging/kafka"
	"github.com/Arten331/observability/logger"
	"github.com/Arten331/observability/metrics"
)

type Repositories struct {
	sessions session.Repository
}

type Services struct {
	httpService *httpservice.Service
	agiService  *agiservice.Service
	gateway     *gateway.Gateway
	ari         *ari.Client
}

type App struct {
	serviceName  string
	env          string
	cfg          *config.AppConfig
	services     Services
	metrics      *metrics.Service
	repositories Repositories
	events       struct {
		publisher events.EventPublisher
	}
}

func Init(ctx context.Context, cfg *config.AppConfig) (ac *App, err error) {
	ms := metrics.New()

	ac = &App{
		serviceName: cfg.App.Name,
		env:         cfg.App.Env,
		cfg:         cfg,
		metrics:     &ms,
	}

	err = ac.initRepositories(ctx)
	if err != nil {
		return nil, err
	}

	ac.initEventsServices(ctx)

	err = ac.initServices(ctx)
	if err != nil {
		return nil, err
	}

	// setup globals
	global.SetGlobals(ac.serviceName, ac.env)

	return ac, nil
}

func (a *App) initServices(_ context.Context) error {
	feed := gateway.NewFeed()

	gatewayService, err := gateway.New(&gateway.Options{
		EventPublisher:    &a.events.publisher,
		MetricService:     a.metrics,
		SessionRepository: a.repositories.sessions,
		Feed:              feed,
	})
	if err != nil {
		return err
	}

	agiService := agiservice.New(agiservice.Options{
		Host:      a.cfg.Agi.Host,
		Port:      a.cfg.Agi.Port,
		RateLimit: a.cfg.Agi.RateLimit,
		Handler:   gatewayService,
	})

	httpServices := httpservice.Services{
		Metrics:  a.metrics,
		Sessions: a.repositories.sessions,
		Feed:     feed,
	}

	if ariCfg := a.cfg.Ari; ariCfg.Enabled {
		ariClient, err := ari.New(ari.Options{
			Host:        ariCfg.Host,
			Port:        ariCfg.Port,
			User:        ariCfg.User,
			Password:    ariCfg.Password,
			Original:    ariCfg.Original,
			Application: ariCfg.Application,
			Secure:      ariCfg.Secure,
		})
		if err != nil {
			return err
		}

		a.services.ari = ariClient
		httpServices.Channels = ariClient
	}

	rw := httpwriter.NewJSONResponseWriter()

	httpService, err := httpservice.New(
		httpservice.WithHTTPAddress(net.JoinHostPort("", strconv.Itoa(a.cfg.HTTPService.Port))),
		httpservice.WithResponseWritter(&rw),
		httpservice.WithServices(httpServices),
	)
	if err != nil {
		return err
	}

	a.services.httpService = httpService
	a.services.agiService = agiService
	a.services.gateway = gatewayService

	return nil
}

func (a *App) initRepositories(_ context.Context) error {
	sessionRepo, err := memdb.NewSessionMemDBRepository()
	if err != nil {
		return err
	}

	a.repositories.sessions = &sessionRepo

	return nil
}

func (a *App) initEventsServices(_ context.Context) {
	a.events.publisher = events.NewEventPublisher()

	kafkaCfg := a.cfg.QueueService.Kafka
	if len(kafkaCfg.BootstrapServers) == 0 {
		logger.L().Info("kafka bootstrap servers not set, agi events are not published")

		return
	}

	brokers := make([]string, 0, len(kafkaCfg.BootstrapServers))

	for _, server := range kafkaCfg.BootstrapServers {
		brokers = append(brokers, fmt.Sprintf("%s:%d", server, kafkaCfg.Port))
	}

	requestEvents := events.NewKafkaEventHandler(kafkaClient.MustCreateProducer(kafkaClient.ProducerClientOptions{
		Brokers: brokers,
		Topic:   a.cfg.QueueService.Topics.Requests.Name,
	}))

	a.events.publisher.Subscribe(requestEvents,
		&agirequest.RequestReceived{},
		&agirequest.RequestFinished{},
	)
}

func (a *App) Run(ctx context.Context, cancelFunc context.CancelFunc) error {
	err := a.services.agiService.Listen()
	if err != nil {
		return err
	}

	go a.services.httpService.Run(ctx, cancelFunc)
	go a.services.agiService.Run(ctx, cancelFunc)

	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	var err error

	err = a.services.httpService.Shutdown(ctx)
	if err != nil {
		return err
	}

	err = a.services.agiService.Shutdown(ctx)
	if err != nil {
		return err
	}

	if a.services.ari != nil {
		a.services.ari.Close()
	}

	return nil
}
