package job

import "errors"

var (
	// ErrNotConfigured is returned when jobs are used without a manager.
	ErrNotConfigured = errors.New("job: not configured")

	// ErrUnknownTask is returned for a task name that was never registered.
	ErrUnknownTask = errors.New("job: unknown task")

	// ErrInvalidPayload is returned when a stored payload cannot be decoded.
	ErrInvalidPayload = errors.New("job: invalid payload")

	ErrAlreadyStarted = errors.New("job: already started")
	ErrNotStarted     = errors.New("job: not started")

	// ErrPoolRequired is returned when a nil pool is passed to a constructor.
	ErrPoolRequired = errors.New("job: pool is required")

	// ErrHealthcheckFailed wraps every health check failure.
	ErrHealthcheckFailed = errors.New("job: healthcheck failed")
)
