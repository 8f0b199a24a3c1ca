// Package sqlengine stores event streams in a relational database, one table per stream.
//
// Each stream gets its own table with a fixed set of standard columns plus one column per metadata key
// of the stream's first event. Loading filters by a minimum version and by equality on metadata columns,
// and always returns events ordered by version.
//
// Supported connections are pgx pools, sql.DB and sqlx.DB. Statements are built with goqu for the
// PostgreSQL or the SQLite dialect.
//
// Key features:
//   - Table names derived from namespaced stream names, overridable per stream
//   - Pluggable payload codecs (JSON, snappy-compressed JSON)
//   - Explicit transactions spanning several operations
//   - Emit-only DDL for migration tooling
//   - Logging, metrics and tracing hooks
//
// Usage examples:
//
//	db, _ := pgxpool.New(ctx, dsn)
//	store, _ := sqlengine.NewStreamStoreFromPGXPool(db, sqlengine.WithLogger(slog.Default()))
//
//	stream := eventstore.BuildStream("Model.User", userCreated)
//	err := store.Create(ctx, stream)
//
//	filter := eventstore.BuildMetadata(eventstore.KV("tag", "person"))
//	events, err := store.LoadEventsByMetadataFrom(ctx, "Model.User", filter, eventstore.NoMinVersion)
//
//	// several operations in one transaction
//	_ = store.BeginTransaction(ctx)
//	if err := store.AppendTo(ctx, "Model.User", usernameChanged); err != nil {
//		_ = store.Rollback(ctx)
//	}
//	err = store.Commit(ctx)
package sqlengine
