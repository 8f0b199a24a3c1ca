package lendbookcopy

import (
	"errors"

	"github.com/AntonStoeckl/stream-tables-eventstore-go/example/core"
)

const (
	failureReasonBookNotInCirculation = "book is not in circulation"
	failureReasonBookAlreadyLent      = "book is already lent"
)

// ErrLendingFailed wraps the business rule violations of this use case.
var ErrLendingFailed = errors.New(core.LendingBookToReaderFailedEventType)

type state struct {
	bookIsInCirculation       bool
	bookIsLentToThisReader    bool
	bookIsLentToAnotherReader bool
}

// Decide determines whether the book copy can be lent to the reader.
//
//	GIVEN: the history of one book copy
//	WHEN: Command is received
//	THEN: BookCopyLentToReader
//	ERROR: "book is not in circulation" if the book copy was never added
//	ERROR: "book is already lent" if another reader has it
//	IDEMPOTENCY: no event if the book copy is already lent to this reader
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	s := project(history, command.ReaderID.String())

	if s.bookIsLentToThisReader {
		return core.IdempotentDecision()
	}

	if !s.bookIsInCirculation {
		return failed(command, failureReasonBookNotInCirculation)
	}

	if s.bookIsLentToAnotherReader {
		return failed(command, failureReasonBookAlreadyLent)
	}

	return core.SuccessDecision(core.BuildBookCopyLentToReader(command.BookID, command.ReaderID, command.OccurredAt))
}

func failed(command Command, reason string) core.DecisionResult {
	event := core.BuildLendingBookToReaderFailed(command.BookID, command.ReaderID, reason, command.OccurredAt)

	return core.ErrorDecision(event, errors.Join(ErrLendingFailed, errors.New(reason)))
}

func project(history core.DomainEvents, readerID string) state {
	s := state{}

	for _, event := range history {
		switch e := event.(type) {
		case core.BookCopyAddedToCirculation:
			s.bookIsInCirculation = true

		case core.BookCopyLentToReader:
			s.bookIsLentToThisReader = e.ReaderID == readerID
			s.bookIsLentToAnotherReader = e.ReaderID != readerID

		case core.BookCopyReturnedByReader:
			s.bookIsLentToThisReader = false
			s.bookIsLentToAnotherReader = false
		}
	}

	return s
}
