package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lifepilot-backend/internal/data/repos"
	types "github.com/yungbote/lifepilot-backend/internal/domain"
	"github.com/yungbote/lifepilot-backend/internal/domain/ailog"
	"github.com/yungbote/lifepilot-backend/internal/domain/planner"
	"github.com/yungbote/lifepilot-backend/internal/pkg/dbctx"
	"github.com/yungbote/lifepilot-backend/internal/pkg/pointers"
	"github.com/yungbote/lifepilot-backend/internal/platform/llm"
	"github.com/yungbote/lifepilot-backend/internal/platform/logger"
)

// ProactiveMode is the onboarding answer that auto-approves the starter items.
const ProactiveMode = "Be proactive - suggest and create tasks for me"

type OnboardingInput struct {
	Name           string   `json:"name"`
	Goals          []string `json:"goals"`
	Challenge      string   `json:"challenge"`
	ProductiveTime string   `json:"productiveTime"`
	AIMode         string   `json:"aiMode"`
}

type OnboardingResult struct {
	Success       bool   `json:"success"`
	TasksCreated  int    `json:"tasksCreated"`
	GoalsCreated  int    `json:"goalsCreated"`
	HabitsCreated int    `json:"habitsCreated"`
	Message       string `json:"message"`
}

type OnboardingService interface {
	Complete(ctx context.Context, userID uuid.UUID, in OnboardingInput) (*OnboardingResult, error)
}

type onboardingService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repos.UserRepo
	repos    PlannerRepos
	manager  AIManager
	recorder AILogRecorder
	catalog  *llm.Catalog
	now      func() time.Time
}

func NewOnboardingService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, r PlannerRepos, manager AIManager, recorder AILogRecorder, catalog *llm.Catalog) OnboardingService {
	if catalog == nil {
		catalog = llm.DefaultCatalog()
	}
	return &onboardingService{
		db:       db,
		log:      log.With("service", "OnboardingService"),
		userRepo: userRepo,
		repos:    r,
		manager:  manager,
		recorder: recorder,
		catalog:  catalog,
		now:      time.Now,
	}
}

func (s *onboardingService) Complete(ctx context.Context, userID uuid.UUID, in OnboardingInput) (*OnboardingResult, error) {
	if _, err := s.userRepo.GetByID(dbctx.Context{Ctx: ctx}, userID); err != nil {
		return nil, err
	}

	s.askForSuggestions(ctx, userID, in)

	now := s.now()
	tasks := starterTasks(userID, in, now)
	goals := starterGoals(userID, in, now)
	habits := starterHabits(userID, in)
	prov := types.Provenance{AISuggested: true}
	if in.AIMode == ProactiveMode {
		prov.AIApproved = pointers.Bool(true)
	}
	for _, t := range tasks {
		t.Provenance = prov
	}
	for _, g := range goals {
		g.Provenance = prov
	}
	for _, h := range habits {
		h.Provenance = prov
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if name := strings.TrimSpace(in.Name); name != "" {
			if err := s.userRepo.UpdateName(dbc, userID, name); err != nil {
				return err
			}
		}
		if _, err := s.repos.Tasks.Create(dbc, tasks); err != nil {
			return err
		}
		if _, err := s.repos.Goals.Create(dbc, goals); err != nil {
			return err
		}
		if _, err := s.repos.Habits.Create(dbc, habits); err != nil {
			return err
		}
		return s.userRepo.MarkOnboarded(dbc, userID)
	})
	if err != nil {
		return nil, fmt.Errorf("complete onboarding: %w", err)
	}

	res := &OnboardingResult{
		Success:       true,
		TasksCreated:  len(tasks),
		GoalsCreated:  len(goals),
		HabitsCreated: len(habits),
		Message:       "Onboarding completed successfully",
	}
	s.recorder.Record(ctx, AILogEntry{
		UserID:     userID,
		Action:     ailog.ActionOnboarding,
		EntityType: ailog.EntityUser,
		Details: map[string]any{
			"responses":     in,
			"tasksCreated":  res.TasksCreated,
			"goalsCreated":  res.GoalsCreated,
			"habitsCreated": res.HabitsCreated,
		},
	})
	return res, nil
}

// askForSuggestions primes the assistant with the user's answers. The starter
// items do not depend on the reply, so a failure is only logged.
func (s *onboardingService) askForSuggestions(ctx context.Context, userID uuid.UUID, in OnboardingInput) {
	if s.manager == nil || len(s.manager.Providers()) == 0 {
		return
	}
	prompt := fmt.Sprintf("Based on the user's goals: %s, main challenge: %s, and productive time: %s, "+
		"create 3-5 specific, actionable tasks to help them get started. "+
		"Return as JSON array with title, description, priority, and dueDate fields.",
		strings.Join(in.Goals, ", "), in.Challenge, in.ProductiveTime)
	_, err := s.manager.Chat(ctx, ChatRequest{
		UserID: userID,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: s.catalog.SystemPrompt},
			{Role: llm.RoleUser, Content: prompt},
		},
	})
	if err != nil {
		s.log.Warn("onboarding suggestions unavailable", "error", err)
	}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func starterTasks(userID uuid.UUID, in OnboardingInput, now time.Time) []*types.Task {
	var out []*types.Task
	add := func(title, desc string, p planner.Priority, days int) {
		due := now.AddDate(0, 0, days)
		out = append(out, &types.Task{UserID: userID, Title: title, Description: desc, Priority: &p, DueDate: &due})
	}
	if slices.Contains(in.Goals, "Productivity") {
		add("Set up daily planning routine", "Create a 15-minute morning planning session", planner.PriorityHigh, 1)
	}
	if slices.Contains(in.Goals, "Health & Fitness") {
		add("Schedule workout sessions", "Plan 3 workout sessions for this week", planner.PriorityMedium, 3)
	}
	if c := strings.TrimSpace(in.Challenge); c != "" {
		add("Address: "+truncateRunes(c, 50)+"...", "Break down your main challenge into actionable steps", planner.PriorityHigh, 7)
	}
	return out
}

func starterGoals(userID uuid.UUID, in OnboardingInput, now time.Time) []*types.Goal {
	var out []*types.Goal
	add := func(title, desc string, months int) {
		target := now.AddDate(0, months, 0)
		out = append(out, &types.Goal{UserID: userID, Title: title, Description: desc, TargetDate: &target})
	}
	if slices.Contains(in.Goals, "Personal Growth") {
		add("Develop a growth mindset", "Read 2 personal development books per month", 3)
	}
	if slices.Contains(in.Goals, "Work-Life Balance") {
		add("Achieve better work-life balance", "Establish clear boundaries and dedicated personal time", 1)
	}
	return out
}

func starterHabits(userID uuid.UUID, in OnboardingInput) []*types.Habit {
	var out []*types.Habit
	add := func(title, desc string) {
		out = append(out, &types.Habit{UserID: userID, Title: title, Description: desc, Frequency: planner.FrequencyDaily, Active: true})
	}
	if strings.Contains(in.ProductiveTime, "Morning") {
		add("Morning routine", "Start each day with intention")
	}
	if slices.Contains(in.Goals, "Health & Fitness") {
		add("Daily exercise", "30 minutes of physical activity")
	}
	if slices.Contains(in.Goals, "Learning") {
		add("Learn something new", "Dedicate 30 minutes to learning")
	}
	return out
}
