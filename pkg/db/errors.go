package db

import "errors"

var (
	ErrParseConfig       = errors.New("db: failed to parse configuration")
	ErrConnect           = errors.New("db: failed to connect")
	ErrHealthcheckFailed = errors.New("db: healthcheck failed")
	ErrMigrate           = errors.New("db: migration failed")
)
