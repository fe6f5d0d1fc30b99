package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/lifeflow/bloodlink/api"
	"github.com/lifeflow/bloodlink/config"
	"github.com/lifeflow/bloodlink/core/aggregate"
	"github.com/lifeflow/bloodlink/core/collect"
	"github.com/lifeflow/bloodlink/core/dispatch"
	"github.com/lifeflow/bloodlink/core/geo"
	coremetrics "github.com/lifeflow/bloodlink/core/metrics"
	"github.com/lifeflow/bloodlink/infra/logger"
	"github.com/lifeflow/bloodlink/infra/metrics"
	"github.com/lifeflow/bloodlink/infra/notify"
	"github.com/lifeflow/bloodlink/infra/sms"
	"github.com/lifeflow/bloodlink/infra/store/sqlite"
	"github.com/lifeflow/bloodlink/internal/eventbus"
)

// Service wires the stores, the dispatcher and the HTTP API together.
type Service struct {
	Dispatcher  *dispatch.Dispatcher
	db          *sql.DB
	server      *http.Server
	broadcaster *notify.Broadcaster
	bus         eventbus.EventBus
	log         logger.Logger
	promEnabled bool
	promAddr    string
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	db, err := sqlite.Open(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	donors := sqlite.NewDonorStore(db)
	requests := sqlite.NewRequestStore(db)
	tokens := sqlite.NewTokenStore(db)
	responses := sqlite.NewResponseStore(db)
	legacy := sqlite.NewLegacyStore(db)

	var sinks []coremetrics.Sink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics))
	}
	var sink coremetrics.Sink
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	var sender sms.Sender
	if cfg.SMS.URL != "" {
		sender = sms.NewGatewaySender(cfg.SMS)
	} else {
		logg.Warnf("no SMS gateway configured, messages are logged only")
		sender = sms.NewMockSender()
	}

	bus := eventbus.New()
	dispatcher, err := dispatch.New(donors, tokens, sender, bus, sink, logg, cfg.Server.LinkBaseURL)
	if err != nil {
		return nil, fmt.Errorf("dispatcher: %w", err)
	}
	collector, err := collect.New(tokens, requests, donors, responses, logg)
	if err != nil {
		return nil, fmt.Errorf("collector: %w", err)
	}
	ranker := geo.NewRanker(geo.Point{Lat: cfg.Hospital.Lat, Lng: cfg.Hospital.Lng})
	aggregator, err := aggregate.New(requests, ranker, logg,
		aggregate.NewStructuredSource(responses, donors),
		aggregate.NewLegacySource(legacy, donors))
	if err != nil {
		return nil, fmt.Errorf("aggregator: %w", err)
	}

	handler := api.New(requests, dispatcher, collector, aggregator, bus, logger.New("api"), cfg.Server.AuthToken)
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	svc := &Service{
		Dispatcher:  dispatcher,
		db:          db,
		server:      srv,
		bus:         bus,
		log:         logg,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promAddr:    cfg.Metrics.PrometheusAddr,
	}
	if cfg.Notify.Enabled {
		b, err := notify.NewBroadcaster(cfg.Notify, bus)
		if err != nil {
			return nil, fmt.Errorf("notify broadcaster: %w", err)
		}
		svc.broadcaster = b
	}
	return svc, nil
}

// Run starts the HTTP server and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if s.broadcaster != nil {
		go s.broadcaster.Run(ctx)
	}
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("listening on %s", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.broadcaster != nil {
		s.broadcaster.Close()
	}
	s.bus.Close()
	return s.db.Close()
}
