package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IsaiahDupree/MetaCoach/internal/app"
	"github.com/IsaiahDupree/MetaCoach/internal/domain/port"
	"github.com/IsaiahDupree/MetaCoach/internal/infra/config"
	"github.com/IsaiahDupree/MetaCoach/internal/infra/email"
	"github.com/IsaiahDupree/MetaCoach/internal/infra/ffmpeg"
	"github.com/IsaiahDupree/MetaCoach/internal/infra/graph"
	"github.com/IsaiahDupree/MetaCoach/internal/infra/httpapi"
	miniostorage "github.com/IsaiahDupree/MetaCoach/internal/infra/minio"
	"github.com/IsaiahDupree/MetaCoach/internal/infra/postgres"
	"github.com/IsaiahDupree/MetaCoach/internal/infra/rabbitmq"
	"github.com/IsaiahDupree/MetaCoach/internal/infra/tracing"
	"github.com/IsaiahDupree/MetaCoach/internal/usecase"
	"github.com/IsaiahDupree/MetaCoach/pkg/logger"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	fatalOnErr(err, "load config")

	log, err := logger.New(cfg.LogLevel)
	fatalOnErr(err, "init logger")
	defer log.Sync()

	log.Info("starting metacoach analysis worker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tracing (non-fatal if the collector is unavailable)
	tp, err := tracing.InitTracer(ctx, cfg.JaegerEndpoint, tracing.ServiceName)
	if err != nil {
		log.Warn("tracing init failed, continuing without tracing", zap.Error(err))
	} else {
		defer tp.Shutdown(ctx)
	}

	pipeline, err := app.NewPipeline(cfg, log)
	fatalOnErr(err, "build analysis pipeline")
	if err := pipeline.Decoder.Available(); err != nil {
		log.Warn("ffmpeg not available, video analyses will fail", zap.Error(err))
	}

	// Database
	fatalOnErr(postgres.RunMigrations(cfg.DatabaseURL), "run migrations")
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	fatalOnErr(err, "connect to postgres")
	defer pool.Close()

	// MinIO
	storage, err := miniostorage.NewStorage(miniostorage.StorageConfig{
		Endpoint:     cfg.MinIOEndpoint,
		AccessKey:    cfg.MinIOAccessKey,
		SecretKey:    cfg.MinIOSecretKey,
		UseSSL:       cfg.MinIOUseSSL,
		MediaBucket:  cfg.MinIOMediaBucket,
		ReportBucket: cfg.MinIOReportBucket,
	})
	fatalOnErr(err, "create minio storage")
	fatalOnErr(storage.EnsureBuckets(ctx), "ensure minio buckets")

	topology := rabbitmq.Topology{
		Exchange:     cfg.RabbitMQExchange,
		RequestQueue: cfg.RabbitMQRequestQueue,
		StatusQueue:  cfg.RabbitMQStatusQueue,
		DLQ:          cfg.RabbitMQDLQ,
	}

	// RabbitMQ publisher connection
	rmqConn, err := amqp.Dial(cfg.RabbitMQURL)
	fatalOnErr(err, "connect to rabbitmq for publisher")
	defer rmqConn.Close()

	pub, err := rabbitmq.NewPublisher(rmqConn, cfg.RabbitMQExchange)
	fatalOnErr(err, "create rabbitmq publisher")
	fatalOnErr(topology.Declare(pub.Channel()), "declare rabbitmq topology")

	statusPub := rabbitmq.NewStatusPublisher(pub)
	requestPub := rabbitmq.NewRequestPublisher(pub)
	dlqPub := rabbitmq.NewDLQPublisher(pub, cfg.RabbitMQDLQ)

	// Infra adapters
	repo := postgres.NewJobRepository(pool)
	source := graph.NewClient(graph.ClientConfig{
		BaseURL:         cfg.MetaGraphURL,
		AccessToken:     cfg.MetaAccessToken,
		DownloadTimeout: time.Duration(cfg.DownloadTimeoutSeconds) * time.Second,
	}, log)
	notifier := email.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, log)

	var embedder port.Embedder
	if cfg.EmbedTranscripts {
		embedder = pipeline.Model
	}

	uc := usecase.NewProcessAnalysisUseCase(
		repo, storage, source, pipeline.Analyzer, embedder, ffmpeg.NewZipCreator(),
		statusPub, dlqPub, notifier,
		log,
		usecase.ProcessAnalysisConfig{MaxRetries: cfg.MaxRetries},
	)

	// HTTP API and metrics
	router := httpapi.NewRouter(httpapi.NewHandlers(repo, requestPub, cfg.MaxRetries, log))
	httpSrv := httpapi.Start(cfg.HTTPPort, router, log)

	// Consumer (worker pool)
	consumer, err := rabbitmq.NewConsumer(rabbitmq.ConsumerConfig{
		URL:         cfg.RabbitMQURL,
		Topology:    topology,
		Prefetch:    cfg.RabbitMQPrefetch,
		WorkerCount: cfg.WorkerCount,
		BaseDelayMs: cfg.RetryBaseDelayMs,
	}, uc.Execute, log)
	fatalOnErr(err, "create consumer")

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	log.Info("metacoach analysis worker started, consuming messages",
		zap.String("queue", cfg.RabbitMQRequestQueue),
		zap.Int("workers", cfg.WorkerCount),
	)

	if err := consumer.Start(ctx); err != nil {
		log.Error("consumer error", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpapi.Shutdown(shutdownCtx, httpSrv, log)

	consumer.Close()
	log.Info("metacoach analysis worker stopped")
}

func fatalOnErr(err error, msg string) {
	if err != nil {
		panic(msg + ": " + err.Error())
	}
}
