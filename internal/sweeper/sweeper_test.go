package sweeper

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/smartserve-ai/smartserve/internal/model"
	"github.com/smartserve-ai/smartserve/internal/store/memory"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type failingStore struct {
	calls atomic.Int32
}

func (f *failingStore) DeleteOrphanApplications(context.Context) (int64, error) {
	f.calls.Add(1)
	return 0, errors.New("database is down")
}

func TestRunOnceRemovesOrphans(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	if _, err := s.CreateNeed(ctx, model.Need{ID: "live"}); err != nil {
		t.Fatalf("create need: %v", err)
	}
	for _, app := range []model.Application{
		{ID: "a1", NeedID: "live", VolunteerID: "u1"},
		{ID: "a2", NeedID: "deleted", VolunteerID: "u1"},
		{ID: "a3", NeedID: "deleted", VolunteerID: "u2"},
	} {
		if _, err := s.CreateApplication(ctx, app); err != nil {
			t.Fatalf("create application: %v", err)
		}
	}

	core, observed := observer.New(zapcore.InfoLevel)
	sw := New(s, DefaultSchedule, zap.New(core))

	if got := sw.RunOnce(ctx); got != 2 {
		t.Fatalf("expected 2 removed, got %d", got)
	}
	if observed.FilterMessage("orphan applications removed").Len() != 1 {
		t.Fatalf("expected removal to be logged")
	}
	if got := sw.RunOnce(ctx); got != 0 {
		t.Fatalf("expected nothing left to remove, got %d", got)
	}
}

func TestRunOnceLogsErrors(t *testing.T) {
	core, observed := observer.New(zapcore.ErrorLevel)
	sw := New(&failingStore{}, DefaultSchedule, zap.New(core))

	if got := sw.RunOnce(context.Background()); got != 0 {
		t.Fatalf("expected 0 on error, got %d", got)
	}
	if observed.FilterMessage("orphan sweep failed").Len() != 1 {
		t.Fatalf("expected failure to be logged")
	}
}

func TestStartRejectsBadSchedule(t *testing.T) {
	sw := New(&failingStore{}, "every now and then", zap.NewNop())
	if err := sw.Start(context.Background()); err == nil {
		t.Fatal("expected schedule parse error")
	}
	sw.Stop()
}

func TestDisabledSweeper(t *testing.T) {
	store := &failingStore{}
	sw := New(store, "  ", zap.NewNop())
	if err := sw.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sw.Stop()
	if store.calls.Load() != 0 {
		t.Fatalf("disabled sweeper must not run")
	}
}

func TestStartStop(t *testing.T) {
	sw := New(&failingStore{}, "@every 1h", zap.NewNop())
	if err := sw.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sw.Stop()
	sw.Stop()
}
