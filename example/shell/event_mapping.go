package shell

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/stream-tables-eventstore-go/eventstore"
	"github.com/AntonStoeckl/stream-tables-eventstore-go/example/core"
)

var (
	// ErrMappingToEventFailed is returned when a domain event can not be turned into a stream store event.
	ErrMappingToEventFailed = errors.New("mapping to event failed for domain event")

	// ErrMappingToDomainEventFailed is returned when a stored payload is not a known domain event.
	ErrMappingToDomainEventFailed = errors.New("mapping to domain event failed")
)

// PayloadRegistry returns a registry that decodes all book copy events into their domain types.
func PayloadRegistry() (*eventstore.PayloadRegistry, error) {
	registry := eventstore.NewPayloadRegistry()

	err := errors.Join(
		eventstore.RegisterPayload[core.BookCopyAddedToCirculation](registry, core.BookCopyAddedToCirculationEventType),
		eventstore.RegisterPayload[core.BookCopyLentToReader](registry, core.BookCopyLentToReaderEventType),
		eventstore.RegisterPayload[core.BookCopyReturnedByReader](registry, core.BookCopyReturnedByReaderEventType),
		eventstore.RegisterPayload[core.LendingBookToReaderFailed](registry, core.LendingBookToReaderFailedEventType),
	)
	if err != nil {
		return nil, err
	}

	return registry, nil
}

// EventFrom converts a DomainEvent into the stream store event with the given version.
func EventFrom(event core.DomainEvent, version eventstore.Version, metadata EventMetadata) (eventstore.Event, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return eventstore.Event{}, errors.Join(ErrMappingToEventFailed, err)
	}

	storeEvent, err := eventstore.BuildEventWithID(
		id.String(),
		event.EventType(),
		version,
		event.HasOccurredAt(),
		event,
		metadata.ToMetadata(event.BookCopyID()),
	)
	if err != nil {
		return eventstore.Event{}, errors.Join(ErrMappingToEventFailed, err)
	}

	return storeEvent, nil
}

// DomainEventsFrom converts loaded stream store events into DomainEvents.
func DomainEventsFrom(events []eventstore.Event) (core.DomainEvents, error) {
	domainEvents := make(core.DomainEvents, 0, len(events))

	for _, event := range events {
		domainEvent, ok := event.Payload.(core.DomainEvent)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMappingToDomainEventFailed, event.Name)
		}

		domainEvents = append(domainEvents, domainEvent)
	}

	return domainEvents, nil
}
