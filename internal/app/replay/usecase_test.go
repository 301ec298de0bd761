package replay

import (
	"context"
	"errors"
	"testing"
	"time"

	"curefront/internal/adapter/repo/memory"
	"curefront/internal/app/ports"
	"curefront/internal/domain/outbreak"
)

func seedEvents(t *testing.T, store *memory.Store, sessionID string, events ...outbreak.Event) {
	t.Helper()
	if err := memory.NewEventRepo(store).Append(context.Background(), sessionID, events); err != nil {
		t.Fatalf("seed events: %v", err)
	}
}

func TestExecute_NewestFirstWithLimitAndType(t *testing.T) {
	store := memory.NewStore()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	seedEvents(t, store, "s1",
		outbreak.Event{Type: outbreak.EventProvinceChanged, OccurredAt: base},
		outbreak.Event{Type: outbreak.EventGlobalChanged, OccurredAt: base.Add(time.Minute)},
		outbreak.Event{Type: outbreak.EventProvinceChanged, OccurredAt: base.Add(2 * time.Minute)},
	)

	uc := UseCase{Events: memory.NewEventRepo(store)}
	resp, err := uc.Execute(context.Background(), Request{
		SessionID: "s1",
		EventType: outbreak.EventProvinceChanged,
		Limit:     1,
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(resp.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(resp.Events))
	}
	if !resp.Events[0].OccurredAt.Equal(base.Add(2 * time.Minute)) {
		t.Fatalf("expected newest event first, got %v", resp.Events[0].OccurredAt)
	}
}

func TestExecute_TimeWindow(t *testing.T) {
	store := memory.NewStore()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	seedEvents(t, store, "s1",
		outbreak.Event{Type: outbreak.EventGlobalChanged, OccurredAt: base},
		outbreak.Event{Type: outbreak.EventGlobalChanged, OccurredAt: base.Add(time.Hour)},
	)

	uc := UseCase{Events: memory.NewEventRepo(store)}
	resp, err := uc.Execute(context.Background(), Request{
		SessionID:    "s1",
		OccurredFrom: base.Add(30 * time.Minute).Unix(),
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(resp.Events) != 1 || !resp.Events[0].OccurredAt.Equal(base.Add(time.Hour)) {
		t.Fatalf("time window filter failed: %+v", resp.Events)
	}
}

func TestExecute_Validation(t *testing.T) {
	uc := UseCase{Events: memory.NewEventRepo(memory.NewStore())}
	if _, err := uc.Execute(context.Background(), Request{SessionID: "  "}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if _, err := uc.Execute(context.Background(), Request{SessionID: "missing"}); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
