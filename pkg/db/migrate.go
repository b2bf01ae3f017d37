package db

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Direction selects the migration command.
type Direction string

const (
	Up     Direction = "up"
	Down   Direction = "down"
	Status Direction = "status"
)

// goose keeps its settings in package globals.
var gooseMu sync.Mutex

// Migrate runs the goose command for dir against the SQL files in fsys.
func Migrate(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS, dir Direction, table string, log *slog.Logger) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	sqlDB := stdlib.OpenDBFromPool(pool)
	defer sqlDB.Close()

	goose.SetBaseFS(fsys)
	goose.SetLogger(gooseLogger{log})
	if table != "" {
		goose.SetTableName(table)
	}
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrMigrate, err)
	}

	var err error
	switch dir {
	case Up:
		err = goose.UpContext(ctx, sqlDB, ".")
	case Down:
		err = goose.DownContext(ctx, sqlDB, ".")
	case Status:
		err = goose.StatusContext(ctx, sqlDB, ".")
	default:
		err = fmt.Errorf("unknown direction %q", dir)
	}
	if err != nil {
		return errors.Join(ErrMigrate, err)
	}
	return nil
}

type gooseLogger struct {
	log *slog.Logger
}

func (g gooseLogger) Printf(format string, args ...any) {
	g.log.Info(fmt.Sprintf(format, args...))
}

func (g gooseLogger) Fatalf(format string, args ...any) {
	g.log.Error(fmt.Sprintf(format, args...))
}
