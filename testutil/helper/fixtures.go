package helper

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/stream-tables-eventstore-go/eventstore"
)

const (
	UserCreatedEventName     = "UserCreated"
	UsernameChangedEventName = "UsernameChanged"
)

// UserCreated is the payload of the UserCreated fixture event.
type UserCreated struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// UsernameChanged is the payload of the UsernameChanged fixture event.
type UsernameChanged struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// FixturePayloadRegistry returns a registry that decodes the fixture payloads into their struct types.
func FixturePayloadRegistry(t testing.TB) *eventstore.PayloadRegistry {
	registry := eventstore.NewPayloadRegistry()
	require.NoError(t, eventstore.RegisterPayload[UserCreated](registry, UserCreatedEventName))
	require.NoError(t, eventstore.RegisterPayload[UsernameChanged](registry, UsernameChangedEventName))

	return registry
}

func FixtureUserCreated(
	t testing.TB,
	userID uuid.UUID,
	version eventstore.Version,
	occurredAt time.Time,
	metadata eventstore.Metadata,
) eventstore.Event {

	payload := UserCreated{
		UserID:   userID.String(),
		Username: "jdoe",
		Email:    "jdoe@example.com",
	}

	event, err := eventstore.BuildEventWithID(
		GivenUniqueID(t).String(),
		UserCreatedEventName,
		version,
		occurredAt,
		payload,
		metadata,
	)
	require.NoError(t, err, "error in arranging test data")

	return event
}

func FixtureUsernameChanged(
	t testing.TB,
	userID uuid.UUID,
	username string,
	version eventstore.Version,
	occurredAt time.Time,
	metadata eventstore.Metadata,
) eventstore.Event {

	payload := UsernameChanged{
		UserID:   userID.String(),
		Username: username,
	}

	event, err := eventstore.BuildEventWithID(
		GivenUniqueID(t).String(),
		UsernameChangedEventName,
		version,
		occurredAt,
		payload,
		metadata,
	)
	require.NoError(t, err, "error in arranging test data")

	return event
}

// FixtureUserMetadata is the metadata sample most tests create their stream tables from.
func FixtureUserMetadata(tag string, email string) eventstore.Metadata {
	return eventstore.BuildMetadata(
		eventstore.KV("tag", tag),
		eventstore.KV("email", email),
	)
}
