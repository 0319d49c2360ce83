package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"

	"github.com/danghamo/presence/internal/api/handlers"
	"github.com/danghamo/presence/internal/recorder"
	"github.com/danghamo/presence/internal/tracking"
	"github.com/danghamo/presence/pkg/config"
	"github.com/danghamo/presence/pkg/logger"
	"github.com/danghamo/presence/pkg/redisx"
	"github.com/danghamo/presence/pkg/sse"
)

// Server represents the HTTP server
type Server struct {
	httpServer    *http.Server
	logger        *logger.Logger
	redisClient   *redisx.Client
	mux           *http.ServeMux
	corsConfig    config.CORSConfig
	dispatcher    *tracking.Dispatcher
	reportHandler *handlers.ReportHandler
	workerHandler *handlers.WorkerHandler
	streamHandler *sse.StreamHandler
	// Watermill components for the persistence boundary
	eventBus       *cqrs.EventBus
	eventProcessor *cqrs.EventProcessor
	router         *message.Router
	csvRecorder    *recorder.CSVRecorder
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port         int           `json:"port"`
	Host         string        `json:"host"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
}

// NewServer creates a new HTTP server wired to the tracking core
func NewServer(serverCfg ServerConfig, appCfg *config.Config, log *logger.Logger, redisClient *redisx.Client) *Server {
	mux := http.NewServeMux()
	apiLogger := log.WithComponent("api")

	// Core state components
	store := tracking.NewPositionStore()
	timeline := tracking.NewTimeline()
	alerts := tracking.NewAlertEvaluator(appCfg.Tracking.AllowedFloors)
	registry := tracking.NewRegistry()
	mirror := tracking.NewRedisPositionRepository(redisClient.Client, log)

	if appCfg.Tracking.WarmStart {
		warmStart(store, mirror, apiLogger)
	}

	// Unique consumer group member per server instance
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "unknown"
	}
	serverID := fmt.Sprintf("%s-%d", hostname, time.Now().UnixNano())

	watermillLogger := watermill.NewStdLogger(false, false)

	publisher, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{
			Client: redisClient.Client,
		},
		watermillLogger,
	)
	if err != nil {
		panic(fmt.Sprintf("Failed to create publisher: %v", err))
	}

	subscriber, err := redisstream.NewSubscriber(
		redisstream.SubscriberConfig{
			Client:        redisClient.Client,
			ConsumerGroup: fmt.Sprintf("presence-server-%s", serverID),
		},
		watermillLogger,
	)
	if err != nil {
		panic(fmt.Sprintf("Failed to create subscriber: %v", err))
	}

	router, err := message.NewRouter(message.RouterConfig{
		CloseTimeout: 5 * time.Second,
	}, watermillLogger)
	if err != nil {
		panic(fmt.Sprintf("Failed to create router: %v", err))
	}

	eventBus, err := cqrs.NewEventBusWithConfig(
		publisher,
		cqrs.EventBusConfig{
			GeneratePublishTopic: func(params cqrs.GenerateEventPublishTopicParams) (string, error) {
				return fmt.Sprintf("presence-events.%s", params.EventName), nil
			},
			Marshaler: cqrs.JSONMarshaler{},
			Logger:    watermillLogger,
		},
	)
	if err != nil {
		panic(fmt.Sprintf("Failed to create event bus: %v", err))
	}

	eventProcessor, err := cqrs.NewEventProcessorWithConfig(
		router,
		cqrs.EventProcessorConfig{
			GenerateSubscribeTopic: func(params cqrs.EventProcessorGenerateSubscribeTopicParams) (string, error) {
				return fmt.Sprintf("presence-events.%s", params.EventName), nil
			},
			SubscriberConstructor: func(params cqrs.EventProcessorSubscriberConstructorParams) (message.Subscriber, error) {
				return subscriber, nil
			},
			Marshaler: cqrs.JSONMarshaler{},
			Logger:    watermillLogger,
		},
	)
	if err != nil {
		panic(fmt.Sprintf("Failed to create event processor: %v", err))
	}

	dispatcher := tracking.NewDispatcher(
		log, store, timeline, alerts, registry,
		tracking.WithPublisher(eventBus),
		tracking.WithMirror(mirror),
	)

	csvRecorder, err := recorder.NewCSVRecorder(appCfg.Tracking.CSVPath, log)
	if err != nil {
		panic(fmt.Sprintf("Failed to create CSV recorder: %v", err))
	}

	err = eventProcessor.AddHandlers(
		cqrs.NewEventHandler("RecordAcceptedReport", csvRecorder.HandleReportAccepted),
	)
	if err != nil {
		panic(fmt.Sprintf("Failed to register event handlers: %v", err))
	}

	server := &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", serverCfg.Host, serverCfg.Port),
			Handler:      mux,
			ReadTimeout:  serverCfg.ReadTimeout,
			WriteTimeout: serverCfg.WriteTimeout,
			IdleTimeout:  serverCfg.IdleTimeout,
		},
		logger:         apiLogger,
		redisClient:    redisClient,
		mux:            mux,
		corsConfig:     appCfg.CORS,
		dispatcher:     dispatcher,
		reportHandler:  handlers.NewReportHandler(log, dispatcher),
		workerHandler:  handlers.NewWorkerHandler(log, dispatcher),
		streamHandler:  sse.NewStreamHandler(log, registry),
		eventBus:       eventBus,
		eventProcessor: eventProcessor,
		router:         router,
		csvRecorder:    csvRecorder,
	}

	server.setupRoutes()
	server.setupMiddleware()

	return server
}

// warmStart re-seeds the position store from the Redis mirror
func warmStart(store *tracking.PositionStore, mirror *tracking.RedisPositionRepository, log *logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	records, err := mirror.GetAll(ctx)
	if err != nil {
		log.Warn("Warm start skipped, failed to load mirrored positions", zap.Error(err))
		return
	}

	store.Load(records)
	log.Info("Warm-started position store", zap.Int("workers", len(records)))
}

// setupRoutes configures the server routes
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.mux.HandleFunc("/health", s.healthCheckHandler)

	// Report ingestion (rate limited per producer IP)
	s.mux.Handle("/api/v1/reports", RateLimit(s.logger)(http.HandlerFunc(s.reportHandler.HandleSubmit)))

	// Current positions and per-worker history
	s.mux.HandleFunc("/api/v1/workers", s.workerHandler.HandleList)
	s.mux.HandleFunc("/api/v1/workers/", s.workerHandler.HandleTimeline)

	// SSE endpoint for live presence updates
	s.mux.HandleFunc("/api/v1/stream/presence", s.streamHandler.HandleStream)
}

// setupMiddleware applies middleware to all routes
func (s *Server) setupMiddleware() {
	middlewareChain := Chain(
		Recovery(s.logger),
		CORS(s.corsConfig),
		Logging(s.logger),
	)

	s.httpServer.Handler = middlewareChain(s.mux)
}

// Start starts the HTTP server and the event router
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server",
		zap.String("address", s.httpServer.Addr))

	go func() {
		if err := s.router.Run(ctx); err != nil {
			s.logger.Error("Watermill router error", zap.Error(err))
		}
	}()

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	return s.Shutdown()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown() error {
	s.logger.Info("Shutting down HTTP server")

	// Close observer streams first so the HTTP shutdown is not held
	// open by long-lived SSE connections.
	if s.streamHandler != nil {
		s.streamHandler.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("Server shutdown error", zap.Error(err))
		return err
	}

	if s.router != nil {
		s.logger.Info("Closing Watermill router")
		if err := s.router.Close(); err != nil {
			s.logger.Error("Router shutdown error", zap.Error(err))
			return err
		}
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// GetAddr returns the server address
func (s *Server) GetAddr() string {
	return s.httpServer.Addr
}

// healthCheckHandler handles health check requests
func (s *Server) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.redisClient.HealthCheck(r.Context()); err != nil {
		s.logger.Error("Redis health check failed", zap.Error(err))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"unhealthy","checks":{"redis":{"status":"down"}}}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","checks":{"redis":{"status":"up"}}}`))
}
