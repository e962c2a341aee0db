package events

import (
	"fmt"

	"github.com/google/uuid"
)

// DestinationKind discriminates the two fan-out targets: a chat room and a
// single user's personal channel.
type DestinationKind int

const (
	DestinationRoom DestinationKind = iota
	DestinationUser
)

// Destination is a typed fan-out target. Tokens from the wire ("general",
// raw room ids) are resolved into one of these exactly once, at the
// pipeline boundary; nothing downstream parses strings.
type Destination struct {
	Kind DestinationKind
	ID   uuid.UUID
}

// RoomDestination addresses every connection joined to a room.
func RoomDestination(roomID uuid.UUID) Destination {
	return Destination{Kind: DestinationRoom, ID: roomID}
}

// UserDestination addresses every connection a user currently holds.
func UserDestination(userID uuid.UUID) Destination {
	return Destination{Kind: DestinationUser, ID: userID}
}

func (d Destination) String() string {
	switch d.Kind {
	case DestinationRoom:
		return fmt.Sprintf("room:%s", d.ID)
	case DestinationUser:
		return fmt.Sprintf("user:%s", d.ID)
	}
	return fmt.Sprintf("unknown:%s", d.ID)
}

// Broadcaster is the single dispatch point for fan-out. The hub implements
// it; the message pipeline produces event values and hands them here.
type Broadcaster interface {
	// Broadcast delivers the envelope to every connection subscribed to the
	// destination. Delivery is independent per connection: a slow or vanished
	// subscriber never blocks or fails delivery to the others.
	Broadcast(dest Destination, env Envelope)
	// BroadcastExcept behaves like Broadcast but skips the connection with
	// the given client id (used for typing indicators).
	BroadcastExcept(dest Destination, env Envelope, exceptClientID string)
	// BroadcastGlobal delivers the envelope to every live connection.
	BroadcastGlobal(env Envelope)
}
