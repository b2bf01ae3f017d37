// Package db connects to PostgreSQL through pgxpool, applies embedded goose
// migrations and runs functions inside transactions.
//
//	pool, err := db.Connect(ctx, cfg.Database)
//	if err != nil { ... }
//	defer pool.Close()
//
//	if err := db.Migrate(ctx, pool, migrations.FS, db.Up, log); err != nil { ... }
//
//	err = db.WithTx(ctx, pool, func(tx pgx.Tx) error {
//	    // queries and job inserts share tx
//	    return nil
//	})
package db
