package realtime

import (
	"strings"

	"github.com/google/uuid"
)

type Event string

const (
	EventNotification Event = "notification"
	EventJoined       Event = "joined"
	EventLeft         Event = "left"
	EventError        Event = "error"
)

type Op string

const (
	OpCreated Op = "created"
	OpUpdated Op = "updated"
	OpDeleted Op = "deleted"
)

// EntityEvent builds "<entity>:<op>", e.g. "task:created".
func EntityEvent(entity string, op Op) Event {
	return Event(entity + ":" + string(op))
}

// relayOps maps the imperative verbs clients send onto the past-tense events peers receive.
var relayOps = map[string]Op{
	"create": OpCreated,
	"update": OpUpdated,
	"delete": OpDeleted,
}

var relayEntities = map[string]bool{
	"task":    true,
	"goal":    true,
	"habit":   true,
	"routine": true,
	"journal": true,
}

// RelayEvent translates an inbound "task:create" into "task:created". ok is false
// for anything that is not a known entity mutation.
func RelayEvent(inbound string) (Event, bool) {
	entity, verb, found := strings.Cut(strings.TrimSpace(inbound), ":")
	if !found || !relayEntities[entity] {
		return "", false
	}
	op, ok := relayOps[verb]
	if !ok {
		return "", false
	}
	return EntityEvent(entity, op), true
}

// Message is routed to every client in Room except ExcludeClientID.
type Message struct {
	Room            string `json:"room"`
	Event           Event  `json:"event"`
	Data            any    `json:"data,omitempty"`
	ExcludeClientID string `json:"excludeClientId,omitempty"`
}

// Frame is what clients receive.
type Frame struct {
	Event Event `json:"event"`
	Data  any   `json:"data,omitempty"`
}

func (m Message) Frame() Frame { return Frame{Event: m.Event, Data: m.Data} }

func UserRoom(userID uuid.UUID) string { return "user:" + userID.String() }
