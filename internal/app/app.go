package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andreyxaxa/Image-Moderation/config"
	kafkactrl "github.com/andreyxaxa/Image-Moderation/internal/controller/kafka"
	"github.com/andreyxaxa/Image-Moderation/internal/controller/restapi"
	"github.com/andreyxaxa/Image-Moderation/internal/controller/worker/outbox"
	"github.com/andreyxaxa/Image-Moderation/internal/infrastructure/inspector"
	infrakafka "github.com/andreyxaxa/Image-Moderation/internal/infrastructure/kafka"
	"github.com/andreyxaxa/Image-Moderation/internal/infrastructure/push"
	"github.com/andreyxaxa/Image-Moderation/internal/metrics"
	"github.com/andreyxaxa/Image-Moderation/internal/repo"
	"github.com/andreyxaxa/Image-Moderation/internal/repo/persistent"
	"github.com/andreyxaxa/Image-Moderation/internal/usecase"
	"github.com/andreyxaxa/Image-Moderation/internal/usecase/moderation"
	outboxuc "github.com/andreyxaxa/Image-Moderation/internal/usecase/outbox"
	"github.com/andreyxaxa/Image-Moderation/pkg/httpserver"
	"github.com/andreyxaxa/Image-Moderation/pkg/kafka/consumer"
	"github.com/andreyxaxa/Image-Moderation/pkg/kafka/producer"
	"github.com/andreyxaxa/Image-Moderation/pkg/logger"
	"github.com/andreyxaxa/Image-Moderation/pkg/mongo"
	"github.com/andreyxaxa/Image-Moderation/pkg/postgres"
	"github.com/andreyxaxa/Image-Moderation/pkg/s3client"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const _mongoTimeout = 10 * time.Second

func Run(cfg *config.Config) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Logger
	l := logger.New(cfg.Log.Level)

	// Metrics
	m := metrics.New()

	// Repository

	// s3
	s3Ctx, s3Cancel := context.WithTimeout(ctx, cfg.S3.CfgLoadTimeout)
	defer s3Cancel()
	s3c, err := s3client.New(s3Ctx, cfg.S3.Endpoint, cfg.S3.AccessKey, cfg.S3.SecretKey,
		s3client.Region(cfg.S3.Region),
		s3client.ProbeBucket(cfg.S3.Bucket),
	)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - s3client.New: %w", err))
	}
	mediaRepo := persistent.NewMediaRepo(s3c, cfg.S3.Bucket, cfg.S3.Endpoint, cfg.Media.PublicURL)

	// records
	var (
		pg         *postgres.Postgres
		records    repo.ImageRecordRepo
		transactor repo.Transactor
	)

	switch cfg.Store.Backend {
	case config.StoreMongo:
		mg, err := mongo.New(cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			l.Fatal(fmt.Errorf("app - Run - mongo.New: %w", err))
		}
		defer func() {
			closeCtx, closeCancel := context.WithTimeout(context.Background(), _mongoTimeout)
			defer closeCancel()
			if err := mg.Close(closeCtx); err != nil {
				l.Error(fmt.Errorf("app - Run - mg.Close: %w", err))
			}
		}()

		mongoRepo := persistent.NewImageMongoRepo(mg.DB)

		idxCtx, idxCancel := context.WithTimeout(ctx, _mongoTimeout)
		err = mongoRepo.EnsureIndexes(idxCtx)
		idxCancel()
		if err != nil {
			l.Fatal(fmt.Errorf("app - Run - mongoRepo.EnsureIndexes: %w", err))
		}

		records = mongoRepo
		transactor = repo.NoTransaction{}
	default:
		pg, err = postgres.New(cfg.PG.URL, postgres.MaxPoolSize(cfg.PG.PoolMax))
		if err != nil {
			l.Fatal(fmt.Errorf("app - Run - postgres.New: %w", err))
		}
		defer pg.Close()

		records = persistent.NewImagePostgresRepo(pg)
		transactor = pg
	}

	// Push hub
	hub := push.New(l,
		push.SendBuffer(cfg.Push.SendBuffer),
		push.WriteWait(cfg.Push.WriteWait),
		push.PongWait(cfg.Push.PongWait),
		push.WithObserver(m),
	)
	go hub.Run(ctx)

	// Events
	var (
		events            usecase.EventPublisher = hub
		outboxRelayWorker *outbox.OutboxRelay
		kafkaController   *kafkactrl.KafkaController
	)

	if cfg.Notify.Mode == config.NotifyKafka {
		// outbox use-case, events are written in the transaction of the state change
		outboxUseCase := outboxuc.New(persistent.NewOutboxRepo(pg), cfg.OutboxRelay.Retention, l)
		events = outboxUseCase

		// Kafka Producer
		kafkaProducer, err := producer.New(ctx, cfg.Kafka.Brokers)
		if err != nil {
			l.Fatal(fmt.Errorf("app - Run - producer.New: %w", err))
		}

		// Outbox Relay Worker
		outboxRelayWorker = outbox.New(
			outboxUseCase,
			infrakafka.NewEventProducer(kafkaProducer, cfg.Kafka.Topic),
			l,
			cfg.OutboxRelay.PollInterval,
			cfg.OutboxRelay.CleanupInterval,
			cfg.OutboxRelay.MarkFailedInterval,
			cfg.OutboxRelay.ProcessBatchTimeout,
			cfg.OutboxRelay.BatchSize,
			cfg.OutboxRelay.MaxRetries,
		).WithObserver(m)

		// Kafka Consumer: own group per instance, every instance serves its own viewers
		groupID := fmt.Sprintf("%s-%s", cfg.Kafka.GroupID, uuid.NewString())
		kafkaConsumer, err := consumer.New(ctx, cfg.Kafka.Brokers, groupID, cfg.Kafka.Topic,
			consumer.StartOffset(kafka.LastOffset),
		)
		if err != nil {
			l.Fatal(fmt.Errorf("app - Run - consumer.New: %w", err))
		}

		// Kafka as Controller
		kafkaController = kafkactrl.New(
			infrakafka.NewEventConsumer(kafkaConsumer),
			hub,
			l,
			cfg.KafkaController.CommitTimeout,
			cfg.KafkaController.ProcessTimeout,
		)
	}

	// Use-Case
	moderationUseCase := moderation.New(
		mediaRepo,
		records,
		transactor,
		inspector.New(inspector.MaxPixels(cfg.Media.MaxPixels)),
		events,
		l,
		moderation.Folder(cfg.Media.Folder),
		moderation.WithObserver(m),
	)

	// HTTP Server
	httpServer := httpserver.New(l,
		httpserver.Port(cfg.HTTP.Port),
		httpserver.Prefork(cfg.HTTP.UsePreforkMode),
		httpserver.BodyLimit(cfg.HTTP.BodyLimit),
		httpserver.ReadTimeout(cfg.HTTP.ReadTimeout),
		httpserver.WriteTimeout(cfg.HTTP.WriteTimeout),
		httpserver.ErrorHandler(restapi.ErrorHandler(l)),
	)
	restapi.NewRouter(httpServer.App, cfg, moderationUseCase, hub, m, l)

	// Start Components
	if outboxRelayWorker != nil {
		err = outboxRelayWorker.Start(ctx)
		if err != nil {
			l.Fatal(fmt.Errorf("app - Run - outboxRelayWorker.Start: %w", err))
		}
	}
	if kafkaController != nil {
		err = kafkaController.Start(ctx)
		if err != nil {
			l.Fatal(fmt.Errorf("app - Run - kafkaController.Start: %w", err))
		}
	}
	httpServer.Start()

	l.Info("app - Run - started: store=%s notify=%s", cfg.Store.Backend, cfg.Notify.Mode)

	// Waiting Signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		l.Info("app - Run - signal: %s", s.String())
	case err = <-httpServer.Notify():
		l.Error(fmt.Errorf("app - Run - httpServer.Notify: %w", err))
	}

	// Shutdown
	err = httpServer.Shutdown()
	if err != nil {
		l.Error(fmt.Errorf("app - Run - httpServer.Shutdown: %w", err))
	}

	if outboxRelayWorker != nil {
		orlShutdownCtx, orlShutdownCancel := context.WithTimeout(ctx, cfg.OutboxRelay.ShutdownTimeout)
		defer orlShutdownCancel()
		err = outboxRelayWorker.Shutdown(orlShutdownCtx)
		if err != nil {
			l.Error(fmt.Errorf("app - Run - outboxRelayWorker.Shutdown: %w", err))
		}
	}

	if kafkaController != nil {
		kcShutdownCtx, kcShutdownCancel := context.WithTimeout(ctx, cfg.KafkaController.ShutdownTimeout)
		defer kcShutdownCancel()
		err = kafkaController.Shutdown(kcShutdownCtx)
		if err != nil {
			l.Error(fmt.Errorf("app - Run - kafkaController.Shutdown: %w", err))
		}
	}

	hub.Close()
}
