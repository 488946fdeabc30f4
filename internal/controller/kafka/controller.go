package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andreyxaxa/Image-Moderation/internal/entity"
	"github.com/andreyxaxa/Image-Moderation/internal/usecase"
	"github.com/andreyxaxa/Image-Moderation/pkg/logger"
	"github.com/segmentio/kafka-go"
)

// EventReader is the consumer side of the event stream.
type EventReader interface {
	ReadEvent(ctx context.Context) (kafka.Message, error)
	CommitEvent(ctx context.Context, event kafka.Message) error
	Close() error
}

// KafkaController relays moderation events from the stream to local viewers.
// Messages are handled one at a time so that events of one image keep their
// order.
type KafkaController struct {
	er     EventReader
	events usecase.EventPublisher
	logger logger.Interface

	commitTimeout  time.Duration
	processTimeout time.Duration
	retryDelay     time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	started atomic.Bool
}

func New(
	er EventReader,
	events usecase.EventPublisher,
	l logger.Interface,
	commitTimeout time.Duration,
	processTimeout time.Duration,
) *KafkaController {
	return &KafkaController{
		er:             er,
		events:         events,
		logger:         l,
		commitTimeout:  commitTimeout,
		processTimeout: processTimeout,
		retryDelay:     time.Second,
	}
}

func (c *KafkaController) Start(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return fmt.Errorf("KafkaController - Start - controller already started")
	}

	c.ctx, c.cancel = context.WithCancel(ctx)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		for {
			// 1. читаем из кафки
			msg, err := c.er.ReadEvent(c.ctx)
			if err != nil {
				if c.ctx.Err() != nil {
					return
				}
				c.logger.Error(err, "KafkaController - Start - c.er.ReadEvent")
				c.sleep(c.retryDelay)
				continue
			}

			// 2. рассылаем зрителям
			c.handle(msg)

			// 3. коммитим
			commitCtx, commitCancel := context.WithTimeout(c.ctx, c.commitTimeout)
			err = c.er.CommitEvent(commitCtx, msg)
			commitCancel()
			if err != nil && !errors.Is(err, context.Canceled) {
				c.logger.Error(err, "KafkaController - Start - c.er.CommitEvent")
			}
		}
	}()

	return nil
}

// handle never fails the message: a malformed payload is logged and skipped.
func (c *KafkaController) handle(msg kafka.Message) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error(fmt.Errorf("panic %v", r), "KafkaController - handle - panic")
		}
	}()

	event, err := decodeEvent(msg.Value)
	if err != nil {
		c.logger.Error(err, "KafkaController - handle - offset %d", msg.Offset)

		return
	}

	processCtx, processCancel := context.WithTimeout(c.ctx, c.processTimeout)
	defer processCancel()

	err = c.events.Publish(processCtx, event)
	if err != nil {
		c.logger.Error(err, "KafkaController - handle - c.events.Publish")
	}
}

func decodeEvent(value []byte) (entity.Event, error) {
	var event entity.Event

	err := json.Unmarshal(value, &event)
	if err != nil {
		return entity.Event{}, fmt.Errorf("KafkaController - decodeEvent - json.Unmarshal: %w", err)
	}

	err = event.Validate()
	if err != nil {
		return entity.Event{}, fmt.Errorf("KafkaController - decodeEvent - event.Validate: %w", err)
	}

	return event, nil
}

func (c *KafkaController) sleep(d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-c.ctx.Done():
	case <-t.C:
	}
}

func (c *KafkaController) Shutdown(ctx context.Context) error {
	if !c.started.Load() {
		return nil
	}

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})

	go func() {
		c.wg.Wait()
		if err := c.er.Close(); err != nil {
			c.logger.Error(err, "KafkaController - Shutdown - c.er.Close")
		}
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("KafkaController - Shutdown: %w", ctx.Err())
	}
}
