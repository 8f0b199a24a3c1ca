package core

import (
	"time"

	"github.com/google/uuid"
)

// Event type identifiers of the book copy stream.
const (
	BookCopyAddedToCirculationEventType = "BookCopyAddedToCirculation"
	BookCopyLentToReaderEventType       = "BookCopyLentToReader"
	BookCopyReturnedByReaderEventType   = "BookCopyReturnedByReader"
	LendingBookToReaderFailedEventType  = "LendingBookToReaderFailed"
)

// BookCopyAddedToCirculation represents when a book copy is added to library circulation.
type BookCopyAddedToCirculation struct {
	BookID     BookIDString
	Title      string
	Authors    string
	OccurredAt OccurredAtTS
}

// BuildBookCopyAddedToCirculation creates a new BookCopyAddedToCirculation event.
func BuildBookCopyAddedToCirculation(
	bookID uuid.UUID,
	title string,
	authors string,
	occurredAt time.Time,
) BookCopyAddedToCirculation {

	return BookCopyAddedToCirculation{
		BookID:     bookID.String(),
		Title:      title,
		Authors:    authors,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

func (e BookCopyAddedToCirculation) EventType() string        { return BookCopyAddedToCirculationEventType }
func (e BookCopyAddedToCirculation) HasOccurredAt() time.Time { return e.OccurredAt }
func (e BookCopyAddedToCirculation) BookCopyID() BookIDString { return e.BookID }

// BookCopyLentToReader represents when a book copy is lent to a reader.
type BookCopyLentToReader struct {
	BookID     BookIDString
	ReaderID   ReaderIDString
	OccurredAt OccurredAtTS
}

// BuildBookCopyLentToReader creates a new BookCopyLentToReader event.
func BuildBookCopyLentToReader(bookID uuid.UUID, readerID uuid.UUID, occurredAt time.Time) BookCopyLentToReader {
	return BookCopyLentToReader{
		BookID:     bookID.String(),
		ReaderID:   readerID.String(),
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

func (e BookCopyLentToReader) EventType() string        { return BookCopyLentToReaderEventType }
func (e BookCopyLentToReader) HasOccurredAt() time.Time { return e.OccurredAt }
func (e BookCopyLentToReader) BookCopyID() BookIDString { return e.BookID }

// BookCopyReturnedByReader represents when a reader returns a book copy.
type BookCopyReturnedByReader struct {
	BookID     BookIDString
	ReaderID   ReaderIDString
	OccurredAt OccurredAtTS
}

// BuildBookCopyReturnedByReader creates a new BookCopyReturnedByReader event.
func BuildBookCopyReturnedByReader(bookID uuid.UUID, readerID uuid.UUID, occurredAt time.Time) BookCopyReturnedByReader {
	return BookCopyReturnedByReader{
		BookID:     bookID.String(),
		ReaderID:   readerID.String(),
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

func (e BookCopyReturnedByReader) EventType() string        { return BookCopyReturnedByReaderEventType }
func (e BookCopyReturnedByReader) HasOccurredAt() time.Time { return e.OccurredAt }
func (e BookCopyReturnedByReader) BookCopyID() BookIDString { return e.BookID }

// LendingBookToReaderFailed records a rejected lending attempt.
type LendingBookToReaderFailed struct {
	BookID     BookIDString
	ReaderID   ReaderIDString
	Reason     string
	OccurredAt OccurredAtTS
}

// BuildLendingBookToReaderFailed creates a new LendingBookToReaderFailed event.
func BuildLendingBookToReaderFailed(
	bookID uuid.UUID,
	readerID uuid.UUID,
	reason string,
	occurredAt time.Time,
) LendingBookToReaderFailed {

	return LendingBookToReaderFailed{
		BookID:     bookID.String(),
		ReaderID:   readerID.String(),
		Reason:     reason,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

func (e LendingBookToReaderFailed) EventType() string        { return LendingBookToReaderFailedEventType }
func (e LendingBookToReaderFailed) HasOccurredAt() time.Time { return e.OccurredAt }
func (e LendingBookToReaderFailed) BookCopyID() BookIDString { return e.BookID }
