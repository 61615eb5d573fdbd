package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Email      string         `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password   string         `gorm:"not null;column:password" json:"-"`
	Name       string         `gorm:"column:name" json:"name"`
	AISettings datatypes.JSON `gorm:"column:ai_settings" json:"aiSettings,omitempty"`
	Onboarded  bool           `gorm:"not null;default:false;column:onboarded" json:"onboarded"`

	CreatedAt time.Time      `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"not null" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "user" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
