package job

import "log/slog"

type config struct {
	registry   *registry
	queues     map[string]int
	logger     *slog.Logger
	schedules  []ScheduledTask
	maxWorkers int
}

func newConfig() *config {
	return &config{
		registry: newRegistry(),
		queues:   make(map[string]int),
	}
}

// Option configures a Manager.
type Option func(*config)

// WithTask registers a typed task. A later registration with the same name
// replaces the earlier one.
func WithTask[P any](task Task[P]) Option {
	return func(c *config) {
		c.registry.register(task.Name(), typedExecutor[P]{task: task})
	}
}

// WithScheduledTask registers a task that River enqueues periodically.
func WithScheduledTask(task ScheduledTask) Option {
	return func(c *config) {
		c.schedules = append(c.schedules, task)
		c.registry.register(task.Name(), scheduledExecutor{handle: task.Handle})
	}
}

// WithQueue adds a named queue with its own worker limit.
func WithQueue(name string, workers int) Option {
	return func(c *config) {
		if name != "" && workers > 0 {
			c.queues[name] = workers
		}
	}
}

// WithLogger sets the logger passed to River and used for task logs.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxWorkers sets the worker limit of the default queue.
func WithMaxWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxWorkers = n
		}
	}
}
