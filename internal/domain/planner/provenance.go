package planner

// Provenance tracks whether a record came from the assistant and where it sits in
// the approval lifecycle. AIApproved nil means pending.
type Provenance struct {
	AISuggested bool  `gorm:"not null;default:false;index;column:ai_suggested" json:"aiSuggested"`
	AIApproved  *bool `gorm:"column:ai_approved" json:"aiApproved"`
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (p Provenance) Status() Status {
	switch {
	case p.AIApproved == nil:
		return StatusPending
	case *p.AIApproved:
		return StatusApproved
	default:
		return StatusRejected
	}
}

// Rejected reports an explicit rejection. Pending and approved rows both count toward user stats.
func (p Provenance) Rejected() bool {
	return p.AIApproved != nil && !*p.AIApproved
}

// Kind names a suggestible entity type. Values double as AILog entity types and
// realtime event prefixes.
type Kind string

const (
	KindTask    Kind = "task"
	KindGoal    Kind = "goal"
	KindHabit   Kind = "habit"
	KindRoutine Kind = "routine"
	KindJournal Kind = "journal"
)

// SuggestibleKinds is the fixed probe order used by approval.
var SuggestibleKinds = []Kind{KindTask, KindGoal, KindHabit, KindRoutine, KindJournal}

func (k Kind) Valid() bool {
	for _, s := range SuggestibleKinds {
		if s == k {
			return true
		}
	}
	return false
}
