package services

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	types "github.com/yungbote/lifepilot-backend/internal/domain"
	"github.com/yungbote/lifepilot-backend/internal/domain/planner"
	"github.com/yungbote/lifepilot-backend/internal/pkg/pointers"
)

const (
	maxRoutineNameLength = 100
	maxRoutineDuration   = 480
	maxReminderLead      = 60
	maxGoalProgress      = 100
)

var clockTime = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

func has(in map[string]any, key string) bool {
	_, ok := in[key]
	return ok
}

func isNull(in map[string]any, key string) bool {
	v, ok := in[key]
	return ok && v == nil
}

// provenanceFrom reads client-supplied aiSuggested/aiApproved.
func provenanceFrom(in map[string]any) (types.Provenance, error) {
	var p types.Provenance
	suggested, _, err := argBool(in, "aiSuggested")
	if err != nil {
		return p, err
	}
	p.AISuggested = suggested
	approved, ok, err := argBool(in, "aiApproved")
	if err != nil {
		return p, err
	}
	if ok {
		p.AIApproved = pointers.Bool(approved)
	}
	return p, nil
}

func optionalText(in map[string]any, key string) string {
	s, _ := argString(in, key)
	return s
}

func parsePriority(in map[string]any) (*planner.Priority, error) {
	s, ok := argString(in, "priority")
	if !ok {
		return nil, nil
	}
	p := planner.Priority(strings.ToLower(s))
	if !p.Valid() {
		return nil, invalid("priority", "must be low, medium or high")
	}
	return &p, nil
}

func parseProgress(in map[string]any) (int, bool, error) {
	v, ok, err := argInt(in, "progress")
	if err != nil || !ok {
		return 0, ok, err
	}
	if v < 0 || v > maxGoalProgress {
		return 0, false, invalid("progress", "must be between 0 and %d", maxGoalProgress)
	}
	return v, true, nil
}

func parseFrequency(in map[string]any) (planner.Frequency, bool, error) {
	s, ok := argString(in, "frequency")
	if !ok {
		return "", false, nil
	}
	f := planner.Frequency(strings.ToLower(s))
	if !f.Valid() {
		return "", false, invalid("frequency", "must be daily, weekly or monthly")
	}
	return f, true, nil
}

func argIDs(in map[string]any, key string) ([]uuid.UUID, error) {
	if !has(in, key) {
		return nil, nil
	}
	raw, err := argStrings(in, key)
	if err != nil {
		return nil, err
	}
	out := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, invalid(key, "invalid id %q", s)
		}
		out = append(out, id)
	}
	return out, nil
}

// textPatch copies string fields that are present. Nullable columns accept null.
func textPatch(in map[string]any, fields map[string]any, key, column string, required, nullable bool) error {
	if !has(in, key) {
		return nil
	}
	if isNull(in, key) {
		if !nullable {
			return invalid(key, "cannot be null")
		}
		fields[column] = nil
		return nil
	}
	v, isStr := in[key].(string)
	if !isStr {
		return invalid(key, "must be a string")
	}
	v = strings.TrimSpace(v)
	if required && v == "" {
		return invalid(key, "cannot be empty")
	}
	fields[column] = v
	return nil
}

func boolPatch(in map[string]any, fields map[string]any, key, column string) error {
	v, ok, err := argBool(in, key)
	if err != nil {
		return err
	}
	if ok {
		fields[column] = v
	}
	return nil
}

func datePatch(in map[string]any, fields map[string]any, key, column string) error {
	if isNull(in, key) {
		fields[column] = nil
		return nil
	}
	t, err := argDate(in, key)
	if err != nil {
		return err
	}
	if t != nil {
		fields[column] = *t
	}
	return nil
}

// ---- task ----

func buildTask(userID uuid.UUID, in map[string]any) (*types.Task, error) {
	title, err := requireTitle(in)
	if err != nil {
		return nil, err
	}
	prov, err := provenanceFrom(in)
	if err != nil {
		return nil, err
	}
	t := &types.Task{UserID: userID, Title: title, Description: optionalText(in, "description"), Provenance: prov}
	if t.Priority, err = parsePriority(in); err != nil {
		return nil, err
	}
	if t.DueDate, err = argDate(in, "dueDate"); err != nil {
		return nil, err
	}
	if t.Completed, _, err = argBool(in, "completed"); err != nil {
		return nil, err
	}
	return t, nil
}

func patchTask(in map[string]any) (map[string]any, error) {
	fields := map[string]any{}
	if err := textPatch(in, fields, "title", "title", true, false); err != nil {
		return nil, err
	}
	if err := textPatch(in, fields, "description", "description", false, false); err != nil {
		return nil, err
	}
	if err := datePatch(in, fields, "dueDate", "due_date"); err != nil {
		return nil, err
	}
	if isNull(in, "priority") {
		fields["priority"] = nil
	} else if p, err := parsePriority(in); err != nil {
		return nil, err
	} else if p != nil {
		fields["priority"] = string(*p)
	}
	if err := boolPatch(in, fields, "completed", "completed"); err != nil {
		return nil, err
	}
	return fields, nil
}

// ---- goal ----

func buildGoal(userID uuid.UUID, in map[string]any) (*types.Goal, error) {
	title, err := requireTitle(in)
	if err != nil {
		return nil, err
	}
	prov, err := provenanceFrom(in)
	if err != nil {
		return nil, err
	}
	g := &types.Goal{UserID: userID, Title: title, Description: optionalText(in, "description"), Provenance: prov}
	if g.TargetDate, err = argDate(in, "targetDate"); err != nil {
		return nil, err
	}
	if g.Progress, _, err = parseProgress(in); err != nil {
		return nil, err
	}
	if g.Completed, _, err = argBool(in, "completed"); err != nil {
		return nil, err
	}
	return g, nil
}

func patchGoal(in map[string]any) (map[string]any, error) {
	fields := map[string]any{}
	if err := textPatch(in, fields, "title", "title", true, false); err != nil {
		return nil, err
	}
	if err := textPatch(in, fields, "description", "description", false, false); err != nil {
		return nil, err
	}
	if err := datePatch(in, fields, "targetDate", "target_date"); err != nil {
		return nil, err
	}
	if v, ok, err := parseProgress(in); err != nil {
		return nil, err
	} else if ok {
		fields["progress"] = v
	}
	if err := boolPatch(in, fields, "completed", "completed"); err != nil {
		return nil, err
	}
	return fields, nil
}

// ---- habit ----

func buildHabit(userID uuid.UUID, in map[string]any) (*types.Habit, error) {
	title, err := requireTitle(in)
	if err != nil {
		return nil, err
	}
	prov, err := provenanceFrom(in)
	if err != nil {
		return nil, err
	}
	h := &types.Habit{
		UserID:      userID,
		Title:       title,
		Description: optionalText(in, "description"),
		Frequency:   planner.FrequencyDaily,
		Active:      true,
		Provenance:  prov,
	}
	if f, ok, err := parseFrequency(in); err != nil {
		return nil, err
	} else if ok {
		h.Frequency = f
	}
	if streak, ok, err := argInt(in, "streak"); err != nil {
		return nil, err
	} else if ok {
		if streak < 0 {
			return nil, invalid("streak", "cannot be negative")
		}
		h.Streak = streak
	}
	if active, ok, err := argBool(in, "active"); err != nil {
		return nil, err
	} else if ok {
		h.Active = active
	}
	return h, nil
}

func patchHabit(in map[string]any) (map[string]any, error) {
	fields := map[string]any{}
	if err := textPatch(in, fields, "title", "title", true, false); err != nil {
		return nil, err
	}
	if err := textPatch(in, fields, "description", "description", false, false); err != nil {
		return nil, err
	}
	if f, ok, err := parseFrequency(in); err != nil {
		return nil, err
	} else if ok {
		fields["frequency"] = string(f)
	}
	if streak, ok, err := argInt(in, "streak"); err != nil {
		return nil, err
	} else if ok {
		if streak < 0 {
			return nil, invalid("streak", "cannot be negative")
		}
		fields["streak"] = streak
	}
	if err := boolPatch(in, fields, "active", "active"); err != nil {
		return nil, err
	}
	return fields, nil
}

// ---- journal ----

func buildJournal(userID uuid.UUID, in map[string]any) (*types.Journal, error) {
	title, err := requireTitle(in)
	if err != nil {
		return nil, err
	}
	prov, err := provenanceFrom(in)
	if err != nil {
		return nil, err
	}
	tags, err := argStrings(in, "tags")
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []string{}
	}
	j := &types.Journal{
		UserID:     userID,
		Title:      title,
		Content:    optionalText(in, "content"),
		Tags:       datatypes.JSONSlice[string](tags),
		Provenance: prov,
	}
	if mood, ok := argString(in, "mood"); ok {
		j.Mood = pointers.String(mood)
	}
	return j, nil
}

func patchJournal(in map[string]any) (map[string]any, error) {
	fields := map[string]any{}
	if err := textPatch(in, fields, "title", "title", true, false); err != nil {
		return nil, err
	}
	if err := textPatch(in, fields, "content", "content", false, false); err != nil {
		return nil, err
	}
	if err := textPatch(in, fields, "mood", "mood", false, true); err != nil {
		return nil, err
	}
	if has(in, "tags") {
		tags, err := argStrings(in, "tags")
		if err != nil {
			return nil, err
		}
		if tags == nil {
			tags = []string{}
		}
		fields["tags"] = datatypes.JSONSlice[string](tags)
	}
	return fields, nil
}

// ---- routine ----

func routineName(in map[string]any) (string, bool) {
	if s, ok := argString(in, "name"); ok {
		return s, true
	}
	return argString(in, "title")
}

func validateRoutineName(name string) error {
	if name == "" || len([]rune(name)) > maxRoutineNameLength {
		return invalid("name", "must be 1-%d characters", maxRoutineNameLength)
	}
	return nil
}

func parseClock(in map[string]any) (*string, error) {
	s, ok := argString(in, "time")
	if !ok {
		return nil, nil
	}
	if !clockTime.MatchString(s) {
		return nil, invalid("time", "must be HH:MM")
	}
	return &s, nil
}

// parseDays lowercases, validates and orders day names Monday first, dropping duplicates.
func parseDays(in map[string]any) ([]string, error) {
	raw, err := argStrings(in, "daysOfWeek")
	if err != nil || raw == nil {
		return raw, err
	}
	seen := map[string]bool{}
	for _, d := range raw {
		d = strings.ToLower(d)
		valid := false
		for _, w := range planner.Weekdays {
			if w == d {
				valid = true
				break
			}
		}
		if !valid {
			return nil, invalid("daysOfWeek", "unknown day %q", d)
		}
		seen[d] = true
	}
	out := make([]string, 0, len(seen))
	for _, w := range planner.Weekdays {
		if seen[w] {
			out = append(out, w)
		}
	}
	return out, nil
}

func parseBoundedInt(in map[string]any, key string, min, max int) (*int, error) {
	v, ok, err := argInt(in, key)
	if err != nil || !ok {
		return nil, err
	}
	if v < min || v > max {
		return nil, invalid(key, "must be between %d and %d", min, max)
	}
	return &v, nil
}

func parseTimeOfDay(in map[string]any) (*planner.TimeOfDay, error) {
	s, ok := argString(in, "timeOfDay")
	if !ok {
		return nil, nil
	}
	t := planner.TimeOfDay(strings.ToLower(s))
	if !t.Valid() {
		return nil, invalid("timeOfDay", "must be morning, afternoon or evening")
	}
	return &t, nil
}

func buildRoutine(userID uuid.UUID, in map[string]any) (*types.Routine, error) {
	name, _ := routineName(in)
	if err := validateRoutineName(name); err != nil {
		return nil, err
	}
	prov, err := provenanceFrom(in)
	if err != nil {
		return nil, err
	}
	r := &types.Routine{
		UserID:      userID,
		Name:        name,
		Description: optionalText(in, "description"),
		IsActive:    true,
		Provenance:  prov,
	}
	if r.Time, err = parseClock(in); err != nil {
		return nil, err
	}
	days, err := parseDays(in)
	if err != nil {
		return nil, err
	}
	r.DaysOfWeek = datatypes.JSONSlice[string](days)
	if active, ok, err := argBool(in, "isActive"); err != nil {
		return nil, err
	} else if ok {
		r.IsActive = active
	}
	if r.Duration, err = parseBoundedInt(in, "duration", 1, maxRoutineDuration); err != nil {
		return nil, err
	}
	if r.Reminder, _, err = argBool(in, "reminder"); err != nil {
		return nil, err
	}
	if r.ReminderTime, err = parseBoundedInt(in, "reminderTime", 0, maxReminderLead); err != nil {
		return nil, err
	}
	if r.TimeOfDay, err = parseTimeOfDay(in); err != nil {
		return nil, err
	}
	steps, err := normalizeSteps(in["steps"])
	if err != nil {
		return nil, err
	}
	r.Steps = datatypes.JSONSlice[types.RoutineStep](steps)
	return r, nil
}

func patchRoutine(in map[string]any) (map[string]any, error) {
	fields := map[string]any{}
	if has(in, "name") || has(in, "title") {
		name, _ := routineName(in)
		if err := validateRoutineName(name); err != nil {
			return nil, err
		}
		fields["name"] = name
	}
	if err := textPatch(in, fields, "description", "description", false, false); err != nil {
		return nil, err
	}
	if isNull(in, "time") {
		fields["time"] = nil
	} else if t, err := parseClock(in); err != nil {
		return nil, err
	} else if t != nil {
		fields["time"] = *t
	}
	if has(in, "daysOfWeek") {
		days, err := parseDays(in)
		if err != nil {
			return nil, err
		}
		if days == nil {
			days = []string{}
		}
		fields["days_of_week"] = datatypes.JSONSlice[string](days)
	}
	if err := boolPatch(in, fields, "isActive", "is_active"); err != nil {
		return nil, err
	}
	if err := boundedPatch(in, fields, "duration", "duration", 1, maxRoutineDuration); err != nil {
		return nil, err
	}
	if err := boolPatch(in, fields, "reminder", "reminder"); err != nil {
		return nil, err
	}
	if err := boundedPatch(in, fields, "reminderTime", "reminder_time", 0, maxReminderLead); err != nil {
		return nil, err
	}
	if isNull(in, "timeOfDay") {
		fields["time_of_day"] = nil
	} else if t, err := parseTimeOfDay(in); err != nil {
		return nil, err
	} else if t != nil {
		fields["time_of_day"] = string(*t)
	}
	if has(in, "steps") {
		steps, err := normalizeSteps(in["steps"])
		if err != nil {
			return nil, err
		}
		fields["steps"] = datatypes.JSONSlice[types.RoutineStep](steps)
	}
	return fields, nil
}

func boundedPatch(in map[string]any, fields map[string]any, key, column string, min, max int) error {
	if isNull(in, key) {
		fields[column] = nil
		return nil
	}
	v, err := parseBoundedInt(in, key, min, max)
	if err != nil {
		return err
	}
	if v != nil {
		fields[column] = *v
	}
	return nil
}

// startOfDay truncates t to local midnight.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
