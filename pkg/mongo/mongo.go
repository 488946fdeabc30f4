package mongo

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	_defaultConnAttempts = 10
	_defaultConnTimeout  = time.Second
	_defaultPingTimeout  = 5 * time.Second
)

type Mongo struct {
	connAttempts int
	connTimeout  time.Duration
	pingTimeout  time.Duration

	Client *mongo.Client
	DB     *mongo.Database
}

func New(uri, database string, opts ...Option) (*Mongo, error) {
	m := &Mongo{
		connAttempts: _defaultConnAttempts,
		connTimeout:  _defaultConnTimeout,
		pingTimeout:  _defaultPingTimeout,
	}

	for _, opt := range opts {
		opt(m)
	}

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("Mongo - New - mongo.Connect: %w", err)
	}

	for m.connAttempts > 0 {
		err = m.ping(client)
		if err == nil {
			break
		}

		log.Printf("Mongo is trying to connect, attempts left: %d", m.connAttempts)

		time.Sleep(m.connTimeout)

		m.connAttempts--
	}

	if err != nil {
		_ = client.Disconnect(context.Background())

		return nil, fmt.Errorf("Mongo - New - connAttempts == 0: %w", err)
	}

	m.Client = client
	m.DB = client.Database(database)

	return m, nil
}

func (m *Mongo) ping(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), m.pingTimeout)
	defer cancel()

	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("Mongo - client.Ping: %w", err)
	}

	return nil
}

func (m *Mongo) Close(ctx context.Context) error {
	if m.Client == nil {
		return nil
	}

	return m.Client.Disconnect(ctx)
}
