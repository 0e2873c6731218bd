package memory

import "time"

type Option func(*Engine)

// WithKeyField sets the document field holding the entity key (default "_id").
func WithKeyField(field string) Option {
	return func(engine *Engine) {
		engine.keyField = field
	}
}

// WithDataFile sets the snapshot file used by saves and by Close.
func WithDataFile(path string) Option {
	return func(engine *Engine) {
		engine.dataFile = path
	}
}

// WithBackgroundSave enables periodic snapshots at the given interval.
func WithBackgroundSave(interval time.Duration) Option {
	return func(engine *Engine) {
		engine.backgroundSave = true
		engine.saveInterval = interval
	}
}
