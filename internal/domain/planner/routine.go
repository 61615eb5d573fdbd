package planner

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TimeOfDay string

const (
	TimeOfDayMorning   TimeOfDay = "morning"
	TimeOfDayAfternoon TimeOfDay = "afternoon"
	TimeOfDayEvening   TimeOfDay = "evening"
)

func (t TimeOfDay) Valid() bool {
	return t == TimeOfDayMorning || t == TimeOfDayAfternoon || t == TimeOfDayEvening
}

// Weekdays lists the accepted day names in calendar order.
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

type RoutineStep struct {
	Order    int    `json:"order"`
	Task     string `json:"task"`
	Duration *int   `json:"duration,omitempty"`
}

type Routine struct {
	ID           uuid.UUID                        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID                        `gorm:"type:uuid;index;not null" json:"userId"`
	Name         string                           `gorm:"not null" json:"name"`
	Description  string                           `json:"description"`
	Time         *string                          `gorm:"column:time" json:"time"`
	DaysOfWeek   datatypes.JSONSlice[string]      `gorm:"column:days_of_week" json:"daysOfWeek"`
	IsActive     bool                             `gorm:"not null" json:"isActive"`
	Duration     *int                             `json:"duration"`
	Reminder     bool                             `gorm:"not null;default:false" json:"reminder"`
	ReminderTime *int                             `json:"reminderTime"`
	TimeOfDay    *TimeOfDay                       `json:"timeOfDay"`
	Steps        datatypes.JSONSlice[RoutineStep] `json:"steps"`
	Habits       []*Habit                         `gorm:"many2many:routine_habits;constraint:OnDelete:CASCADE" json:"habits"`
	Tasks        []*Task                          `gorm:"many2many:routine_tasks;constraint:OnDelete:CASCADE" json:"tasks"`
	Provenance
	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Routine) TableName() string { return "routine" }

func (r *Routine) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.DaysOfWeek == nil {
		r.DaysOfWeek = datatypes.JSONSlice[string]{}
	}
	if r.Steps == nil {
		r.Steps = datatypes.JSONSlice[RoutineStep]{}
	}
	return nil
}
