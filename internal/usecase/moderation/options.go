package moderation

import "time"

type Option func(*UseCase)

// Folder is the key prefix of stored media objects.
func Folder(folder string) Option {
	return func(uc *UseCase) {
		uc.folder = folder
	}
}

func WithObserver(o Observer) Option {
	return func(uc *UseCase) {
		uc.observer = o
	}
}

func Clock(now func() time.Time) Option {
	return func(uc *UseCase) {
		uc.now = now
	}
}
