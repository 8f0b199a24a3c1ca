// Package eventstore provides the core types for persisting event streams with one table per stream.
//
// This package is free of database drivers. It defines the records and rules the engine packages
// build on:
//   - StreamName, Stream and Event: the data transfer records that are appended and loaded
//   - Metadata: insertion-ordered key/value tags, stored as one column per key
//   - TableNamer: derives a table name from a stream name, overridable with a TableMap
//   - PayloadCodec and PayloadRegistry: the opaque payload serialization and explicit per-event-name decoding
//   - Logger, MetricsCollector, TracingCollector: dependency-free observability hooks
//
// Common usage pattern:
//
//	registry := eventstore.NewPayloadRegistry()
//	_ = eventstore.RegisterPayload[UserCreated](registry, "UserCreated")
//
//	event, err := eventstore.BuildEvent(
//		"UserCreated",
//		1,
//		UserCreated{Email: "contact@example.com"},
//		eventstore.BuildMetadata(eventstore.KV("tag", "person")),
//	)
//	if err != nil {
//		// handle error
//	}
//
//	err = store.Create(ctx, eventstore.BuildStream("Model.User", event))
//	events, err := store.LoadEventsByMetadataFrom(
//		ctx,
//		"Model.User",
//		eventstore.BuildMetadata(eventstore.KV("tag", "person")),
//		eventstore.NoMinVersion,
//	)
package eventstore
