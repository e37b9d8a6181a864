package qtable

import "go.uber.org/zap"

// Observer receives the agent's side-effect notifications.
type Observer interface {
	// ValueUpdated is called after every Update with the previous and stored value.
	ValueUpdated(key Key, old, updated float64)
	// TableLoaded is called after a table was restored from path.
	TableLoaded(path string, entries int)
	// TableSaved is called after the table was written to path.
	TableSaved(path string, entries int)
}

type nopObserver struct{}

func (nopObserver) ValueUpdated(Key, float64, float64) {}
func (nopObserver) TableLoaded(string, int)            {}
func (nopObserver) TableSaved(string, int)             {}

// LogObserver reports agent events to a zap logger.
type LogObserver struct {
	logger  *zap.SugaredLogger
	updates bool
}

// NewLogObserver logs loads and saves at info level. Updates are logged at
// debug level only when traceUpdates is set; training emits one per step.
func NewLogObserver(logger *zap.SugaredLogger, traceUpdates bool) *LogObserver {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &LogObserver{logger: logger, updates: traceUpdates}
}

func (o *LogObserver) ValueUpdated(key Key, old, updated float64) {
	if !o.updates {
		return
	}
	o.logger.Debugw("Updated value",
		"state", key.State,
		"action", key.Action,
		"old", old,
		"value", updated,
	)
}

func (o *LogObserver) TableLoaded(path string, entries int) {
	o.logger.Infow("Loaded value table", "path", path, "entries", entries)
}

func (o *LogObserver) TableSaved(path string, entries int) {
	o.logger.Infow("Saved value table", "path", path, "entries", entries)
}
