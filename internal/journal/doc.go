// Package journal keeps an append-only SQLite record of session events.
//
// The journal is an audit trail for the panel. It is never read back into
// session state: a restarted panel starts from its catalog, not from the
// journal.
//
//	store := journal.NewStore(db.DB)
//	rec := journal.NewRecorder(store, journal.RecorderOptions{Retention: 7 * 24 * time.Hour})
//	controller.AddSink(rec)
//	go rec.Run(ctx)
package journal
