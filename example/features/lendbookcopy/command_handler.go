package lendbookcopy

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/stream-tables-eventstore-go/eventstore"
	"github.com/AntonStoeckl/stream-tables-eventstore-go/example/shell"
)

// StreamStore defines the stream store operations the CommandHandler needs.
type StreamStore interface {
	LoadEventsByMetadataFrom(
		ctx context.Context,
		streamName eventstore.StreamName,
		filter eventstore.Metadata,
		minVersion eventstore.Version,
	) ([]eventstore.Event, error)
	AppendTo(ctx context.Context, streamName eventstore.StreamName, events ...eventstore.Event) error
	BeginTransaction(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Outcome tells what a handled command changed.
type Outcome string

const (
	OutcomeLent       Outcome = "lent"
	OutcomeIdempotent Outcome = "idempotent"
	OutcomeRejected   Outcome = "rejected"
)

// CommandHandler runs Load -> Decide -> Append for one book copy inside a transaction.
type CommandHandler struct {
	streamStore StreamStore
}

// NewCommandHandler creates a new CommandHandler.
func NewCommandHandler(streamStore StreamStore) CommandHandler {
	return CommandHandler{streamStore: streamStore}
}

// Handle executes the command.
//
// A rejected command still appends its failure event and returns an error wrapping ErrLendingFailed.
func (h CommandHandler) Handle(ctx context.Context, command Command) (Outcome, error) {
	if err := h.streamStore.BeginTransaction(ctx); err != nil {
		return "", err
	}

	outcome, err := h.executeCommand(ctx, command)
	if err != nil && !errors.Is(err, ErrLendingFailed) {
		return "", errors.Join(err, h.streamStore.Rollback(ctx))
	}

	if commitErr := h.streamStore.Commit(ctx); commitErr != nil {
		return "", commitErr
	}

	return outcome, err
}

func (h CommandHandler) executeCommand(ctx context.Context, command Command) (Outcome, error) {
	events, err := h.streamStore.LoadEventsByMetadataFrom(
		ctx,
		shell.BookCopyStream,
		shell.BookCopyFilter(command.BookID),
		eventstore.NoMinVersion,
	)
	if err != nil {
		return "", err
	}

	history, err := shell.DomainEventsFrom(events)
	if err != nil {
		return "", err
	}

	result := Decide(history, command)
	if !result.HasEventToAppend() {
		return OutcomeIdempotent, nil
	}

	uid := uuid.New()
	event, err := shell.EventFrom(result.Event, nextVersion(events), shell.BuildEventMetadata(uid, uid, uid))
	if err != nil {
		return "", err
	}

	if appendErr := h.streamStore.AppendTo(ctx, shell.BookCopyStream, event); appendErr != nil {
		return "", appendErr
	}

	if result.HasError() != nil {
		return OutcomeRejected, result.HasError()
	}

	return OutcomeLent, nil
}

// nextVersion numbers the events of each book copy from 1.
func nextVersion(history []eventstore.Event) eventstore.Version {
	if len(history) == 0 {
		return 1
	}

	return history[len(history)-1].Version + 1
}
