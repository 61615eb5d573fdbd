package notify

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/lifepilot-backend/internal/data/repos/testutil"
	types "github.com/yungbote/lifepilot-backend/internal/domain"
	"github.com/yungbote/lifepilot-backend/internal/domain/planner"
	"github.com/yungbote/lifepilot-backend/internal/pkg/pointers"
	"github.com/yungbote/lifepilot-backend/internal/realtime"
)

type staticSource []Notification

func (s staticSource) Due(context.Context, time.Time) ([]Notification, error) {
	return append([]Notification(nil), s...), nil
}

type recordingPublisher struct{ got []Notification }

func (r *recordingPublisher) Publish(_ context.Context, n Notification) { r.got = append(r.got, n) }

func TestTickPublishesHighPriorityFirst(t *testing.T) {
	pub := &recordingPublisher{}
	p := &Poller{
		Source: staticSource{
			{Title: "a", Priority: PriorityNormal},
			{Title: "b", Priority: PriorityHigh},
			{Title: "c", Priority: PriorityNormal},
			{Title: "d", Priority: PriorityHigh},
		},
		Publisher: pub,
	}
	n, err := p.Tick(context.Background())
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if n != 4 {
		t.Fatalf("published %d want 4", n)
	}
	var order string
	for _, got := range pub.got {
		order += got.Title
	}
	if order != "bdac" {
		t.Fatalf("publish order %q want bdac", order)
	}
}

type switchSource struct{ batches [][]Notification }

func (s *switchSource) Due(context.Context, time.Time) ([]Notification, error) {
	next := s.batches[0]
	if len(s.batches) > 1 {
		s.batches = s.batches[1:]
	}
	return next, nil
}

func TestTickPublishesEachDueTaskOnce(t *testing.T) {
	a := Notification{Type: "task_due", Title: "a", EntityID: uuid.New()}
	b := Notification{Type: "task_due", Title: "b", EntityID: uuid.New()}
	pub := &recordingPublisher{}
	p := &Poller{
		Source:    &switchSource{batches: [][]Notification{{a}, {a, b}, {a, b}, {b}, {a, b}}},
		Publisher: pub,
	}

	want := []int{1, 1, 0, 0, 1}
	for i, w := range want {
		n, err := p.Tick(context.Background())
		if err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
		if n != w {
			t.Fatalf("tick %d published %d want %d", i, n, w)
		}
	}
	var order string
	for _, got := range pub.got {
		order += got.Title
	}
	if order != "aba" {
		t.Fatalf("publish order %q want aba", order)
	}
}

func TestDueTaskSource(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	user := testutil.SeedUser(t, ctx, db, "due@example.com")
	now := time.Now()
	soon := now.Add(2 * time.Hour)
	later := now.Add(72 * time.Hour)
	high := planner.PriorityHigh

	seed := func(title string, due *time.Time, completed bool, approved *bool) {
		testutil.SeedTask(t, ctx, db, &types.Task{
			UserID:     user.ID,
			Title:      title,
			DueDate:    due,
			Priority:   &high,
			Completed:  completed,
			Provenance: types.Provenance{AISuggested: approved != nil, AIApproved: approved},
		})
	}
	seed("due soon", &soon, false, nil)
	seed("due later", &later, false, nil)
	seed("done", &soon, true, nil)
	seed("rejected", &soon, false, pointers.Bool(false))
	seed("approved", &soon, false, pointers.Bool(true))
	seed("no date", nil, false, nil)

	got, err := (&DueTaskSource{DB: db}).Due(ctx, now)
	if err != nil {
		t.Fatalf("Due: %v", err)
	}
	titles := map[string]bool{}
	for _, n := range got {
		task := n.Data["task"].(*types.Task)
		titles[task.Title] = true
		if n.UserID != user.ID || n.Priority != PriorityHigh {
			t.Fatalf("unexpected notification %+v", n)
		}
	}
	if len(got) != 2 || !titles["due soon"] || !titles["approved"] {
		t.Fatalf("due titles=%v", titles)
	}
}

type captureEmitter struct{ msgs []realtime.Message }

func (c *captureEmitter) Emit(_ context.Context, m realtime.Message) { c.msgs = append(c.msgs, m) }

func TestRealtimePublisherTargetsOwnerRoom(t *testing.T) {
	em := &captureEmitter{}
	uid := uuid.New()
	(&RealtimePublisher{Emitter: em}).Publish(context.Background(), Notification{UserID: uid, Title: "x"})
	if len(em.msgs) != 1 || em.msgs[0].Room != realtime.UserRoom(uid) || em.msgs[0].Event != realtime.EventNotification {
		t.Fatalf("unexpected messages %+v", em.msgs)
	}
}
