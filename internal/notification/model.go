package notification

import "time"

// Notification is a persisted operation outcome addressed to one operator
type Notification struct {
	ID                int64     `json:"id"`
	RecipientID       int64     `json:"recipient_id"`
	Message           string    `json:"message"`
	Success           bool      `json:"success"`
	IsRead            bool      `json:"is_read"`
	RelatedEntityType *string   `json:"related_entity_type,omitempty"` // group, member or contribution
	RelatedEntityID   *int64    `json:"related_entity_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// Entity names the store an event came from
type Entity string

const (
	EntityGroup        Entity = "group"
	EntityMember       Entity = "member"
	EntityContribution Entity = "contribution"
)

// Action names the mutation that produced an event
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Event is the outcome signal emitted after every mutating store operation
type Event struct {
	Entity   Entity `json:"entity"`
	Action   Action `json:"action"`
	EntityID int64  `json:"entity_id,omitempty"`
	Success  bool   `json:"success"`
	Message  string `json:"message"`

	// Set by the Dispatcher
	RecipientID int64     `json:"recipient_id,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// RoutingKey returns "<entity>.<action>", e.g. "member.create"
func (e Event) RoutingKey() string {
	return string(e.Entity) + "." + string(e.Action)
}

// Succeeded builds the event for a completed operation
func Succeeded(entity Entity, action Action, id int64, message string) Event {
	return Event{Entity: entity, Action: action, EntityID: id, Success: true, Message: message}
}

// Failed builds the event for an operation that returned err
func Failed(entity Entity, action Action, id int64, err error) Event {
	return Event{
		Entity:   entity,
		Action:   action,
		EntityID: id,
		Message:  "Error " + action.gerund() + " " + string(entity) + ": " + err.Error(),
	}
}

func (a Action) gerund() string {
	switch a {
	case ActionCreate:
		return "creating"
	case ActionUpdate:
		return "updating"
	case ActionDelete:
		return "deleting"
	default:
		return string(a)
	}
}

func (e Event) toNotification() *Notification {
	n := &Notification{
		RecipientID: e.RecipientID,
		Message:     e.Message,
		Success:     e.Success,
	}
	entityType := string(e.Entity)
	n.RelatedEntityType = &entityType
	if e.EntityID != 0 {
		id := e.EntityID
		n.RelatedEntityID = &id
	}
	return n
}
