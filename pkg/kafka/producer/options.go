package producer

import (
	"time"

	"github.com/segmentio/kafka-go"
)

type Option func(*Producer)

func ConnAttempts(attempts int) Option {
	return func(p *Producer) {
		p.connAttempts = attempts
	}
}

func ConnTimeout(timeout time.Duration) Option {
	return func(p *Producer) {
		p.connTimeout = timeout
	}
}

// Balancer overrides the default key hash balancer, which keeps messages
// with the same key on one partition.
func Balancer(b kafka.Balancer) Option {
	return func(p *Producer) {
		p.balancer = b
	}
}
