// Package database opens the SQLite file behind the activity journal and
// applies its schema migrations.
//
//	db, err := database.Open(database.ConfigFrom(cfg.Database))
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//	err = db.Migrate(ctx, migrations.Source())
//
// Migrations only add; every version should ship a .down.sql so
// MigrateDown can revert it during development.
package database
