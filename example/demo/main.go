// Command demo runs the library example against a stream store.
//
// It uses PostgreSQL via pgx when STREAMSTORE_POSTGRES_DSN is set and an in-memory SQLite database otherwise.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/stream-tables-eventstore-go/eventstore"
	"github.com/AntonStoeckl/stream-tables-eventstore-go/eventstore/sqlengine"
	"github.com/AntonStoeckl/stream-tables-eventstore-go/example/core"
	"github.com/AntonStoeckl/stream-tables-eventstore-go/example/features/lendbookcopy"
	"github.com/AntonStoeckl/stream-tables-eventstore-go/example/shell"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if err := run(context.Background(), logger); err != nil {
		logger.Error("demo failed", "error", err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	registry, err := shell.PayloadRegistry()
	if err != nil {
		return err
	}

	cfg := sqlengine.ConnectionConfig{Driver: sqlengine.DriverSQLite, DSN: ":memory:"}
	if dsn := os.Getenv("STREAMSTORE_POSTGRES_DSN"); dsn != "" {
		cfg = sqlengine.ConnectionConfig{Driver: sqlengine.DriverPGX, DSN: dsn}
	}

	es, err := sqlengine.NewStreamStoreFromConfig(
		ctx,
		cfg,
		sqlengine.WithPayloadCodec(eventstore.NewJSONCodec(registry)),
		sqlengine.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	defer func() {
		_ = es.Close()
	}()

	if err = es.CreateSchemaFor(ctx, shell.BookCopyStream, shell.MetadataSample()); err != nil {
		return err
	}

	bookID, alice, bob := uuid.New(), uuid.New(), uuid.New()
	uid := uuid.New()

	added, err := shell.EventFrom(
		core.BuildBookCopyAddedToCirculation(bookID, "Implementing Domain-Driven Design", "Vaughn Vernon", time.Now()),
		1,
		shell.BuildEventMetadata(uid, uid, uid),
	)
	if err != nil {
		return err
	}

	if err = es.AppendTo(ctx, shell.BookCopyStream, added); err != nil {
		return err
	}

	handler := lendbookcopy.NewCommandHandler(es)

	for _, readerID := range []uuid.UUID{alice, alice, bob} {
		outcome, handleErr := handler.Handle(ctx, lendbookcopy.BuildCommand(bookID, readerID, time.Now()))
		if handleErr != nil && !errors.Is(handleErr, lendbookcopy.ErrLendingFailed) {
			return handleErr
		}

		logger.Info("lend command handled", "reader_id", readerID.String(), "outcome", string(outcome))
	}

	events, err := es.LoadEventsByMetadataFrom(ctx, shell.BookCopyStream, shell.BookCopyFilter(bookID), eventstore.NoMinVersion)
	if err != nil {
		return err
	}

	fmt.Printf("history of book copy %s in table %s:\n", bookID, es.TableFor(shell.BookCopyStream))
	for _, event := range events {
		fmt.Printf("  v%d %s at %s\n", event.Version, event.Name, event.OccurredAt.Format(time.RFC3339))
	}

	return es.DropSchemaFor(ctx, shell.BookCopyStream)
}
