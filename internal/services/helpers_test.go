package services

import (
	"context"
	"sync"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/lifepilot-backend/internal/data/repos"
	"github.com/yungbote/lifepilot-backend/internal/data/repos/testutil"
	types "github.com/yungbote/lifepilot-backend/internal/domain"
	"github.com/yungbote/lifepilot-backend/internal/domain/ailog"
	"github.com/yungbote/lifepilot-backend/internal/platform/llm"
	"github.com/yungbote/lifepilot-backend/internal/platform/logger"
	"github.com/yungbote/lifepilot-backend/internal/realtime"
)

type fakeProvider struct {
	name      string
	available bool
	remaining int
	usageErr  error
	resp      *llm.Response
	err       error

	mu    sync.Mutex
	calls int
	last  []llm.Message
}

func (f *fakeProvider) Name() string      { return f.name }
func (f *fakeProvider) IsAvailable() bool { return f.available }

func (f *fakeProvider) Usage(context.Context) (llm.Usage, error) {
	if f.usageErr != nil {
		return llm.Usage{}, f.usageErr
	}
	return llm.Usage{Limit: 100, Remaining: f.remaining, Used: 100 - f.remaining}, nil
}

func (f *fakeProvider) Chat(_ context.Context, msgs []llm.Message, _ llm.Options) (*llm.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.last = msgs
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func okProvider(name, content string, calls ...llm.FunctionCall) *fakeProvider {
	return &fakeProvider{
		name:      name,
		available: true,
		remaining: 10,
		resp:      &llm.Response{Content: content, Functions: calls},
	}
}

type captureEmitter struct {
	mu   sync.Mutex
	msgs []realtime.Message
}

func (c *captureEmitter) Emit(_ context.Context, m realtime.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, m)
}

func (c *captureEmitter) events() []realtime.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]realtime.Event, 0, len(c.msgs))
	for _, m := range c.msgs {
		out = append(out, m.Event)
	}
	return out
}

type memoryRecorder struct {
	mu      sync.Mutex
	entries []AILogEntry
}

func (m *memoryRecorder) Record(_ context.Context, e AILogEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
}

type testEnv struct {
	ctx      context.Context
	db       *gorm.DB
	log      *logger.Logger
	users    repos.UserRepo
	tokens   repos.UserTokenRepo
	aiLogs   repos.AILogRepo
	planner  PlannerRepos
	recorder AILogRecorder
	emit     *captureEmitter
	user     *types.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()
	aiLogs := repos.NewAILogRepo(db, log)
	return &testEnv{
		ctx:    ctx,
		db:     db,
		log:    log,
		users:  repos.NewUserRepo(db, log),
		tokens: repos.NewUserTokenRepo(db, log),
		aiLogs: aiLogs,
		planner: PlannerRepos{
			Tasks:    repos.NewTaskRepo(db, log),
			Goals:    repos.NewGoalRepo(db, log),
			Habits:   repos.NewHabitRepo(db, log),
			Routines: repos.NewRoutineRepo(db, log),
			Journals: repos.NewJournalRepo(db, log),
		},
		recorder: NewAILogRecorder(log, aiLogs),
		emit:     &captureEmitter{},
		user:     testutil.SeedUser(t, ctx, db, "pilot@example.com"),
	}
}

func (e *testEnv) logsWithAction(t *testing.T, action ailog.Action) []*types.AILog {
	t.Helper()
	var rows []*types.AILog
	if err := e.db.Where("user_id = ? AND action = ?", e.user.ID, action).Order("created_at ASC").Find(&rows).Error; err != nil {
		t.Fatalf("load ai logs: %v", err)
	}
	return rows
}
