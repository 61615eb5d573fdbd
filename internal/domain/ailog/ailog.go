package ailog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Action string

const (
	ActionCreate     Action = "create"
	ActionUpdate     Action = "update"
	ActionDelete     Action = "delete"
	ActionApprove    Action = "approve"
	ActionReject     Action = "reject"
	ActionChat       Action = "chat"
	ActionOnboarding Action = "onboarding"
)

// Entity types beyond the suggestible kinds.
const (
	EntityConversation = "conversation"
	EntityUser         = "user"
)

// AILog is an append-only audit record of assistant activity. It is never
// updated or deleted.
type AILog struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID      `gorm:"type:uuid;index;not null" json:"userId"`
	Action     Action         `gorm:"not null;index" json:"action"`
	EntityType string         `gorm:"not null;column:entity_type" json:"entityType"`
	EntityID   *uuid.UUID     `gorm:"type:uuid;column:entity_id" json:"entityId"`
	Details    datatypes.JSON `json:"details"`
	Approved   *bool          `json:"approved"`
	CreatedAt  time.Time      `gorm:"not null;index" json:"createdAt"`
}

func (AILog) TableName() string { return "ai_log" }

func (l *AILog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
