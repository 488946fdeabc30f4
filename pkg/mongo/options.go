package mongo

import "time"

type Option func(*Mongo)

func ConnAttempts(attempts int) Option {
	return func(m *Mongo) {
		m.connAttempts = attempts
	}
}

func ConnTimeout(timeout time.Duration) Option {
	return func(m *Mongo) {
		m.connTimeout = timeout
	}
}

func PingTimeout(timeout time.Duration) Option {
	return func(m *Mongo) {
		m.pingTimeout = timeout
	}
}
