package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/lifepilot-backend/internal/data/repos"
	types "github.com/yungbote/lifepilot-backend/internal/domain"
	"github.com/yungbote/lifepilot-backend/internal/domain/ailog"
	"github.com/yungbote/lifepilot-backend/internal/domain/planner"
	"github.com/yungbote/lifepilot-backend/internal/pkg/dbctx"
	"github.com/yungbote/lifepilot-backend/internal/pkg/pointers"
	"github.com/yungbote/lifepilot-backend/internal/platform/llm"
	"github.com/yungbote/lifepilot-backend/internal/platform/logger"
	"github.com/yungbote/lifepilot-backend/internal/realtime"
)

const listTasksLimit = 10

type FunctionStatus string

const (
	FunctionSuccess FunctionStatus = "success"
	FunctionError   FunctionStatus = "error"
)

type FunctionResult struct {
	Name   string         `json:"name"`
	Status FunctionStatus `json:"status"`
	Result any            `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// FunctionExecutor runs assistant function calls against the user's data.
type FunctionExecutor interface {
	// Execute runs calls in order. Each call succeeds or fails on its own; a
	// failure never undoes or skips its siblings.
	Execute(ctx context.Context, userID uuid.UUID, calls []llm.FunctionCall) []FunctionResult
}

type functionHandler func(ctx context.Context, userID uuid.UUID, args map[string]any) (any, error)

type PlannerRepos struct {
	Tasks    repos.TaskRepo
	Goals    repos.GoalRepo
	Habits   repos.HabitRepo
	Routines repos.RoutineRepo
	Journals repos.JournalRepo
}

type functionExecutor struct {
	log      *logger.Logger
	repos    PlannerRepos
	recorder AILogRecorder
	emit     Emitter
	handlers map[string]functionHandler
}

func NewFunctionExecutor(log *logger.Logger, r PlannerRepos, recorder AILogRecorder, emit Emitter) FunctionExecutor {
	fe := &functionExecutor{
		log:      log.With("service", "FunctionExecutor"),
		repos:    r,
		recorder: recorder,
		emit:     emit,
	}
	fe.handlers = map[string]functionHandler{
		"create_task":          fe.createTask,
		"create_goal":          fe.createGoal,
		"create_habit":         fe.createHabit,
		"create_routine":       fe.createRoutine,
		"create_journal_entry": fe.createJournal,
		"list_tasks":           fe.listTasks,
		"update_task_status":   fe.updateTaskStatus,
	}
	return fe
}

func (fe *functionExecutor) Execute(ctx context.Context, userID uuid.UUID, calls []llm.FunctionCall) []FunctionResult {
	results := make([]FunctionResult, 0, len(calls))
	for _, call := range calls {
		out, err := fe.run(ctx, userID, call)
		if err != nil {
			fe.log.Warn("function call failed", "function", call.Name, "error", err)
			results = append(results, FunctionResult{Name: call.Name, Status: FunctionError, Error: err.Error()})
			continue
		}
		results = append(results, FunctionResult{Name: call.Name, Status: FunctionSuccess, Result: out})
	}
	return results
}

func (fe *functionExecutor) run(ctx context.Context, userID uuid.UUID, call llm.FunctionCall) (any, error) {
	h, ok := fe.handlers[call.Name]
	if !ok {
		return nil, fmt.Errorf("unknown function: %s", call.Name)
	}
	args := call.Arguments
	if args == nil {
		args = map[string]any{}
	}
	return h(ctx, userID, args)
}

// pending marks a row as an unresolved assistant suggestion.
func pending() types.Provenance {
	return types.Provenance{AISuggested: true}
}

func requireTitle(args map[string]any) (string, error) {
	title, ok := argString(args, "title")
	if !ok {
		return "", invalid("title", "required")
	}
	return title, nil
}

// created logs and broadcasts one assistant-created row.
func (fe *functionExecutor) created(ctx context.Context, userID uuid.UUID, kind types.Kind, id uuid.UUID, args map[string]any, row any) {
	fe.recorder.Record(ctx, AILogEntry{
		UserID:     userID,
		Action:     ailog.ActionCreate,
		EntityType: string(kind),
		EntityID:   &id,
		Details:    args,
	})
	emitEntity(ctx, fe.emit, userID, string(kind), realtime.OpCreated, row)
}

func (fe *functionExecutor) createTask(ctx context.Context, userID uuid.UUID, args map[string]any) (any, error) {
	title, err := requireTitle(args)
	if err != nil {
		return nil, err
	}
	task := &types.Task{UserID: userID, Title: title, Provenance: pending()}
	task.Description, _ = argString(args, "description")
	if p, ok := argString(args, "priority"); ok {
		pr := planner.Priority(strings.ToLower(p))
		if !pr.Valid() {
			return nil, invalid("priority", "must be low, medium or high")
		}
		task.Priority = &pr
	}
	if task.DueDate, err = argDate(args, "dueDate"); err != nil {
		return nil, err
	}
	if _, err := fe.repos.Tasks.Create(dbctx.Context{Ctx: ctx}, []*types.Task{task}); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	fe.created(ctx, userID, types.KindTask, task.ID, args, task)
	return task, nil
}

func (fe *functionExecutor) createGoal(ctx context.Context, userID uuid.UUID, args map[string]any) (any, error) {
	title, err := requireTitle(args)
	if err != nil {
		return nil, err
	}
	goal := &types.Goal{UserID: userID, Title: title, Progress: 0, Provenance: pending()}
	goal.Description, _ = argString(args, "description")
	if goal.TargetDate, err = argDate(args, "targetDate"); err != nil {
		return nil, err
	}
	if _, err := fe.repos.Goals.Create(dbctx.Context{Ctx: ctx}, []*types.Goal{goal}); err != nil {
		return nil, fmt.Errorf("create goal: %w", err)
	}
	fe.created(ctx, userID, types.KindGoal, goal.ID, args, goal)
	return goal, nil
}

func (fe *functionExecutor) createHabit(ctx context.Context, userID uuid.UUID, args map[string]any) (any, error) {
	title, err := requireTitle(args)
	if err != nil {
		return nil, err
	}
	habit := &types.Habit{
		UserID:     userID,
		Title:      title,
		Frequency:  planner.FrequencyDaily,
		Streak:     0,
		Active:     true,
		Provenance: pending(),
	}
	habit.Description, _ = argString(args, "description")
	if f, ok := argString(args, "frequency"); ok {
		freq := planner.Frequency(strings.ToLower(f))
		if !freq.Valid() {
			return nil, invalid("frequency", "must be daily, weekly or monthly")
		}
		habit.Frequency = freq
	}
	if _, err := fe.repos.Habits.Create(dbctx.Context{Ctx: ctx}, []*types.Habit{habit}); err != nil {
		return nil, fmt.Errorf("create habit: %w", err)
	}
	fe.created(ctx, userID, types.KindHabit, habit.ID, args, habit)
	return habit, nil
}

func (fe *functionExecutor) createRoutine(ctx context.Context, userID uuid.UUID, args map[string]any) (any, error) {
	title, err := requireTitle(args)
	if err != nil {
		return nil, err
	}
	tod := planner.TimeOfDayMorning
	if s, ok := argString(args, "timeOfDay"); ok {
		tod = planner.TimeOfDay(strings.ToLower(s))
		if !tod.Valid() {
			return nil, invalid("timeOfDay", "must be morning, afternoon or evening")
		}
	}
	steps, err := normalizeSteps(args["steps"])
	if err != nil {
		return nil, err
	}
	routine := &types.Routine{
		UserID:     userID,
		Name:       title,
		IsActive:   true,
		TimeOfDay:  &tod,
		Steps:      datatypes.JSONSlice[types.RoutineStep](steps),
		Provenance: pending(),
	}
	routine.Description, _ = argString(args, "description")
	if _, err := fe.repos.Routines.Create(dbctx.Context{Ctx: ctx}, []*types.Routine{routine}); err != nil {
		return nil, fmt.Errorf("create routine: %w", err)
	}
	fe.created(ctx, userID, types.KindRoutine, routine.ID, args, routine)
	return routine, nil
}

// normalizeSteps turns free-form steps into ordered {order, task, duration}.
// A step may be a bare string or an object naming "task" or "title".
func normalizeSteps(raw any) ([]types.RoutineStep, error) {
	if raw == nil {
		return []types.RoutineStep{}, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, invalid("steps", "must be a list")
	}
	out := make([]types.RoutineStep, 0, len(items))
	for i, item := range items {
		step := types.RoutineStep{Order: i + 1}
		switch t := item.(type) {
		case string:
			step.Task = strings.TrimSpace(t)
		case map[string]any:
			if s, ok := argString(t, "task"); ok {
				step.Task = s
			} else if s, ok := argString(t, "title"); ok {
				step.Task = s
			}
			d, ok, err := argInt(t, "duration")
			if err != nil {
				return nil, invalid(fmt.Sprintf("steps[%d].duration", i), "must be a whole number of minutes")
			}
			if ok {
				if d <= 0 {
					return nil, invalid(fmt.Sprintf("steps[%d].duration", i), "must be positive")
				}
				step.Duration = pointers.Int(d)
			}
		default:
			return nil, invalid(fmt.Sprintf("steps[%d]", i), "must be a string or object")
		}
		if step.Task == "" {
			return nil, invalid(fmt.Sprintf("steps[%d]", i), "task is required")
		}
		out = append(out, step)
	}
	return out, nil
}

// JournalAnalysis is the canned analysis stored on assistant-created entries.
func JournalAnalysis(mood string, tags []string) string {
	if mood == "" {
		mood = "neutral"
	}
	topics := "general topics"
	if len(tags) > 0 {
		topics = strings.Join(tags, ", ")
	}
	return fmt.Sprintf("Mood detected: %s. This entry reflects thoughts about %s.", mood, topics)
}

func (fe *functionExecutor) createJournal(ctx context.Context, userID uuid.UUID, args map[string]any) (any, error) {
	title, err := requireTitle(args)
	if err != nil {
		return nil, err
	}
	tags, err := argStrings(args, "tags")
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []string{}
	}
	entry := &types.Journal{UserID: userID, Title: title, Tags: datatypes.JSONSlice[string](tags), Provenance: pending()}
	entry.Content, _ = argString(args, "content")
	mood, hasMood := argString(args, "mood")
	if hasMood {
		entry.Mood = pointers.String(mood)
	}
	entry.AIAnalysis = JournalAnalysis(mood, tags)
	if _, err := fe.repos.Journals.Create(dbctx.Context{Ctx: ctx}, []*types.Journal{entry}); err != nil {
		return nil, fmt.Errorf("create journal entry: %w", err)
	}
	fe.created(ctx, userID, types.KindJournal, entry.ID, args, entry)
	return entry, nil
}

func (fe *functionExecutor) listTasks(ctx context.Context, userID uuid.UUID, args map[string]any) (any, error) {
	var scopes []repos.Scope
	completed, ok, err := argBool(args, "completed")
	if err != nil {
		return nil, err
	}
	if ok {
		scopes = append(scopes, func(q *gorm.DB) *gorm.DB { return q.Where("completed = ?", completed) })
	}
	if p, ok := argString(args, "priority"); ok {
		pr := planner.Priority(strings.ToLower(p))
		if !pr.Valid() {
			return nil, invalid("priority", "must be low, medium or high")
		}
		scopes = append(scopes, func(q *gorm.DB) *gorm.DB { return q.Where("priority = ?", string(pr)) })
	}
	return fe.repos.Tasks.List(dbctx.Context{Ctx: ctx}, userID, repos.ListOptions{Scopes: scopes, Limit: listTasksLimit})
}

func (fe *functionExecutor) updateTaskStatus(ctx context.Context, userID uuid.UUID, args map[string]any) (any, error) {
	raw, ok := argString(args, "taskId")
	if !ok {
		return nil, invalid("taskId", "required")
	}
	taskID, err := uuid.Parse(raw)
	if err != nil {
		return nil, invalid("taskId", "not a valid id")
	}
	completed, _, err := argBool(args, "completed")
	if err != nil {
		return nil, err
	}
	task, err := fe.repos.Tasks.Update(dbctx.Context{Ctx: ctx}, userID, taskID, map[string]any{"completed": completed})
	if err != nil {
		return nil, fmt.Errorf("update task %s: %w", taskID, err)
	}
	fe.recorder.Record(ctx, AILogEntry{
		UserID:     userID,
		Action:     ailog.ActionUpdate,
		EntityType: string(types.KindTask),
		EntityID:   &task.ID,
		Details:    args,
	})
	emitEntity(ctx, fe.emit, userID, string(types.KindTask), realtime.OpUpdated, task)
	return task, nil
}
