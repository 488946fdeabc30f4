package push

import "time"

type Option func(*Hub)

// SendBuffer is the number of frames queued per viewer before it is dropped.
func SendBuffer(n int) Option {
	return func(h *Hub) {
		h.sendBuffer = n
	}
}

func WriteWait(d time.Duration) Option {
	return func(h *Hub) {
		h.writeWait = d
	}
}

// PongWait is how long a silent viewer is kept. Pings go out at 9/10 of it
// unless PingPeriod is set.
func PongWait(d time.Duration) Option {
	return func(h *Hub) {
		h.pongWait = d
	}
}

func PingPeriod(d time.Duration) Option {
	return func(h *Hub) {
		h.pingPeriod = d
	}
}

func WithObserver(o Observer) Option {
	return func(h *Hub) {
		h.observer = o
	}
}
