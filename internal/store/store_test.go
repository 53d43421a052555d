package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"fmn/internal/task"
)

func openTest(t *testing.T, dir string) *Store {
	t.Helper()
	s, err := Open(filepath.Join(dir, "tasks.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAddListRemove(t *testing.T) {
	t.Parallel()
	s := openTest(t, t.TempDir())
	ctx := context.Background()

	a := task.New("water the plants", task.Period(time.Hour), "/img/plant.png", "")
	b := task.New("standup", task.OncePerDay(9, 30), "", "/snd/ding.ogg")
	if err := s.Add(ctx, a); err != nil {
		t.Fatalf("Add a: %v", err)
	}
	if err := s.Add(ctx, b); err != nil {
		t.Fatalf("Add b: %v", err)
	}

	tasks, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("List returned %d tasks, want 2", len(tasks))
	}
	byID := map[task.ID]task.Task{}
	for _, tk := range tasks {
		byID[tk.ID] = tk
	}
	got := byID[a.ID]
	if got.Description != a.Description || got.Clock.Kind != task.ClockPeriod ||
		got.Clock.Every != time.Hour || got.Image != a.Image {
		t.Fatalf("round-tripped task = %+v, want %+v", got, a)
	}
	got = byID[b.ID]
	if got.Clock.Kind != task.ClockOncePerDay || got.Clock.Hour != 9 || got.Clock.Minute != 30 ||
		got.Sound != b.Sound {
		t.Fatalf("round-tripped task = %+v, want %+v", got, b)
	}

	removed, err := s.Remove(ctx, a.ID)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if !removed {
		t.Fatal("Remove existing task reported false")
	}
	removed, err = s.Remove(ctx, "unknown-id")
	if err != nil {
		t.Fatalf("Remove unknown: %v", err)
	}
	if removed {
		t.Fatal("Remove unknown task reported true")
	}

	tasks, err = s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != b.ID {
		t.Fatalf("List after remove = %v, want only %s", tasks, b.ID)
	}
}

func TestOnceFireTimeRoundTrip(t *testing.T) {
	t.Parallel()
	s := openTest(t, t.TempDir())
	ctx := context.Background()

	at := time.Date(2026, 9, 1, 18, 30, 0, 0, time.UTC)
	tk := task.New("dentist", task.Once(at), "", "")
	if err := s.Add(ctx, tk); err != nil {
		t.Fatalf("Add: %v", err)
	}
	tasks, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(tasks) != 1 || !tasks[0].Clock.At.Equal(at) {
		t.Fatalf("fire time = %v, want %v", tasks[0].Clock.At, at)
	}
}

func TestReopenDropsStaleRows(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	s := openTest(t, dir)
	if err := s.Add(context.Background(), task.New("orphan", task.Period(time.Hour), "", "")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Timers do not survive a restart; neither may their registry rows.
	s2 := openTest(t, dir)
	tasks, err := s2.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("List after reopen = %d tasks, want 0", len(tasks))
	}
}
