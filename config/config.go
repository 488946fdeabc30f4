package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	StorePostgres = "postgres"
	StoreMongo    = "mongo"

	NotifyDirect = "direct"
	NotifyKafka  = "kafka"
)

type (
	Config struct {
		HTTP            HTTP
		Log             Log
		Store           Store
		PG              PG
		Mongo           Mongo
		S3              S3
		Media           Media
		Notify          Notify
		Push            Push
		OutboxRelay     OutboxRelay
		Kafka           Kafka
		KafkaController KafkaController
		Metrics         Metrics
		Swagger         Swagger
	}

	HTTP struct {
		Port           string        `env:"HTTP_PORT,required"`
		UsePreforkMode bool          `env:"HTTP_USE_PREFORK_MODE" envDefault:"false"`
		BodyLimit      int           `env:"HTTP_BODY_LIMIT" envDefault:"12582912"` // 12MB, запас над лимитом файла
		ReadTimeout    time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
		WriteTimeout   time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"15s"`
	}

	Log struct {
		Level string `env:"LOG_LEVEL,required"`
	}

	Store struct {
		Backend string `env:"STORE_BACKEND" envDefault:"postgres"`
	}

	PG struct {
		PoolMax int    `env:"PG_POOL_MAX" envDefault:"10"`
		URL     string `env:"PG_URL"`
	}

	Mongo struct {
		URI      string `env:"MONGO_URI"`
		Database string `env:"MONGO_DATABASE" envDefault:"moderation"`
	}

	S3 struct {
		Endpoint       string        `env:"S3_ENDPOINT,required"`
		AccessKey      string        `env:"S3_ACCESS_KEY,required"`
		SecretKey      string        `env:"S3_SECRET_KEY,required"`
		Bucket         string        `env:"S3_BUCKET,required"`
		Region         string        `env:"S3_REGION" envDefault:"us-east-1"`
		CfgLoadTimeout time.Duration `env:"S3_LOAD_CFG_TIMEOUT" envDefault:"10s"`
	}

	Media struct {
		PublicURL string `env:"MEDIA_PUBLIC_URL"`
		Folder    string `env:"MEDIA_FOLDER" envDefault:"carousel-images"`
		MaxPixels int    `env:"MEDIA_MAX_PIXELS" envDefault:"50000000"`
	}

	Notify struct {
		Mode string `env:"NOTIFY_MODE" envDefault:"direct"`
	}

	Push struct {
		SendBuffer int           `env:"PUSH_SEND_BUFFER" envDefault:"64"`
		WriteWait  time.Duration `env:"PUSH_WRITE_WAIT" envDefault:"10s"`
		PongWait   time.Duration `env:"PUSH_PONG_WAIT" envDefault:"60s"`
	}

	Kafka struct {
		Brokers []string `env:"KAFKA_BROKERS"`
		GroupID string   `env:"KAFKA_GROUP_ID" envDefault:"image-moderation"`
		Topic   string   `env:"KAFKA_TOPIC" envDefault:"image-moderation-events"`
	}

	OutboxRelay struct {
		PollInterval        time.Duration `env:"OUTBOX_RELAY_POLL_INTERVAL" envDefault:"500ms"`
		MarkFailedInterval  time.Duration `env:"OUTBOX_RELAY_MARK_FAILED_INTERVAL" envDefault:"2m"`
		CleanupInterval     time.Duration `env:"OUTBOX_RELAY_CLEANUP_INTERVAL" envDefault:"24h"`
		Retention           time.Duration `env:"OUTBOX_RELAY_RETENTION" envDefault:"72h"`
		ProcessBatchTimeout time.Duration `env:"OUTBOX_RELAY_PROCESS_BATCH_TIMEOUT" envDefault:"15s"`
		ShutdownTimeout     time.Duration `env:"OUTBOX_RELAY_SHUTDOWN_TIMEOUT" envDefault:"5s"`
		BatchSize           int           `env:"OUTBOX_RELAY_BATCH_SIZE" envDefault:"100"`
		MaxRetries          int           `env:"OUTBOX_RELAY_MAX_RETRIES" envDefault:"3"`
	}

	KafkaController struct {
		CommitTimeout   time.Duration `env:"KAFKA_CONTROLLER_COMMIT_TIMEOUT" envDefault:"2s"`
		ProcessTimeout  time.Duration `env:"KAFKA_CONTROLLER_PROCESS_TIMEOUT" envDefault:"5s"`
		ShutdownTimeout time.Duration `env:"KAFKA_CONTROLLER_SHUTDOWN_TIMEOUT" envDefault:"5s"`
	}

	Metrics struct {
		Enabled bool `env:"METRICS_ENABLED" envDefault:"true"`
	}

	Swagger struct {
		Enabled bool `env:"SWAGGER_ENABLED" envDefault:"false"`
	}
)

func New() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	return cfg, nil
}

// Validate checks the combinations env tags cannot express.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case StorePostgres:
		if c.PG.URL == "" {
			return errors.New("PG_URL is required for the postgres store")
		}
	case StoreMongo:
		if c.Mongo.URI == "" {
			return errors.New("MONGO_URI is required for the mongo store")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}

	switch c.Notify.Mode {
	case NotifyDirect:
	case NotifyKafka:
		if c.Store.Backend != StorePostgres {
			return errors.New("NOTIFY_MODE=kafka needs the postgres store for the outbox")
		}
		if len(c.Kafka.Brokers) == 0 {
			return errors.New("KAFKA_BROKERS is required for NOTIFY_MODE=kafka")
		}
	default:
		return fmt.Errorf("unknown NOTIFY_MODE %q", c.Notify.Mode)
	}

	return nil
}
