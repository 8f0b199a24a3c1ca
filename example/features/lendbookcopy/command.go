package lendbookcopy

import (
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/stream-tables-eventstore-go/example/core"
)

// Command represents the intent to lend a book copy to a reader.
type Command struct {
	BookID     uuid.UUID
	ReaderID   uuid.UUID
	OccurredAt core.OccurredAtTS
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(bookID uuid.UUID, readerID uuid.UUID, occurredAt time.Time) Command {
	return Command{
		BookID:     bookID,
		ReaderID:   readerID,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
