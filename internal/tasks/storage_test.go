package tasks

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/saaga0h/daybreak/pkg/config"
	"github.com/saaga0h/daybreak/pkg/postgres"
)

// setupTestStorage creates a task storage over a test database.
// These are integration tests that require a running PostgreSQL instance.
func setupTestStorage(t *testing.T) (*Storage, func()) {
	t.Skip("Integration test - requires PostgreSQL")

	cfg := config.NewConfig()
	cfg.PostgresDB = "daybreak_test"
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	db := postgres.NewClient(cfg, logger)
	ctx := context.Background()
	if err := db.Connect(ctx); err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	storage := NewStorage(db, logger)
	if err := storage.EnsureSchema(ctx); err != nil {
		t.Fatalf("Failed to ensure schema: %v", err)
	}

	// Clean slate for each test
	if _, err := db.Exec(ctx, "DELETE FROM tasks"); err != nil {
		t.Fatalf("Failed to clean tasks table: %v", err)
	}

	cleanup := func() {
		db.Exec(ctx, "DELETE FROM tasks")
		db.Disconnect()
	}

	return storage, cleanup
}

func TestStorage_CreateAssignsNextPosition(t *testing.T) {
	storage, cleanup := setupTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	first, err := storage.Create(ctx, "First task", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if first.Position != 0 {
		t.Errorf("first task position = %d, want 0", first.Position)
	}

	second, err := storage.Create(ctx, "Second task", "some notes")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if second.Position != 1 {
		t.Errorf("second task position = %d, want 1", second.Position)
	}
	if second.Notes != "some notes" {
		t.Errorf("notes = %q, want %q", second.Notes, "some notes")
	}
}

func TestStorage_GetRoundTrip(t *testing.T) {
	storage, cleanup := setupTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	created, err := storage.Create(ctx, "Buy groceries", "milk, eggs")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := storage.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != created.ID || got.Title != "Buy groceries" || got.Notes != "milk, eggs" {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.Done {
		t.Error("new task must not be done")
	}
}

func TestStorage_GetMissing(t *testing.T) {
	storage, cleanup := setupTestStorage(t)
	defer cleanup()

	if _, err := storage.Get(context.Background(), uuid.New()); err == nil {
		t.Error("expected error for missing task")
	}
}

func TestStorage_ListFilters(t *testing.T) {
	storage, cleanup := setupTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	open, _ := storage.Create(ctx, "Open task", "")
	done, _ := storage.Create(ctx, "Done task", "")

	doneFlag := true
	if _, err := storage.Update(ctx, done.ID, UpdateParams{Done: &doneFlag}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	all, err := storage.List(ctx, FilterAll)
	if err != nil {
		t.Fatalf("List(all): %v", err)
	}
	if len(all) != 2 {
		t.Errorf("List(all) returned %d tasks, want 2", len(all))
	}

	openList, err := storage.List(ctx, FilterOpen)
	if err != nil {
		t.Fatalf("List(open): %v", err)
	}
	if len(openList) != 1 || openList[0].ID != open.ID {
		t.Errorf("List(open) = %+v, want only the open task", openList)
	}

	doneList, err := storage.List(ctx, FilterDone)
	if err != nil {
		t.Fatalf("List(done): %v", err)
	}
	if len(doneList) != 1 || doneList[0].ID != done.ID {
		t.Errorf("List(done) = %+v, want only the done task", doneList)
	}
}

func TestStorage_UpdatePartialFields(t *testing.T) {
	storage, cleanup := setupTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	created, _ := storage.Create(ctx, "Original title", "original notes")

	newTitle := "New title"
	updated, err := storage.Update(ctx, created.ID, UpdateParams{Title: &newTitle})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "New title" {
		t.Errorf("title = %q, want %q", updated.Title, "New title")
	}
	if updated.Notes != "original notes" {
		t.Errorf("nil notes param must leave notes unchanged, got %q", updated.Notes)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Error("update must advance updated_at")
	}
}

func TestStorage_MoveKeepsPositionsDense(t *testing.T) {
	storage, cleanup := setupTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	var ids []uuid.UUID
	for _, title := range []string{"a", "b", "c", "d"} {
		task, err := storage.Create(ctx, title, "")
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		ids = append(ids, task.ID)
	}

	// Move "d" (position 3) to the front
	if err := storage.Move(ctx, ids[3], 0); err != nil {
		t.Fatalf("Move: %v", err)
	}

	list, err := storage.List(ctx, FilterAll)
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	wantOrder := []string{"d", "a", "b", "c"}
	for i, task := range list {
		if task.Title != wantOrder[i] {
			t.Errorf("position %d holds %q, want %q", i, task.Title, wantOrder[i])
		}
		if task.Position != i {
			t.Errorf("task %q has position %d, want %d", task.Title, task.Position, i)
		}
	}

	// A target past the end clamps to the last slot instead of leaving
	// a gap in the positions
	if err := storage.Move(ctx, ids[3], 10); err != nil {
		t.Fatalf("Move out of range: %v", err)
	}

	list, err = storage.List(ctx, FilterAll)
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	wantOrder = []string{"a", "b", "c", "d"}
	for i, task := range list {
		if task.Title != wantOrder[i] {
			t.Errorf("after clamped move, position %d holds %q, want %q", i, task.Title, wantOrder[i])
		}
		if task.Position != i {
			t.Errorf("after clamped move, task %q has position %d, want %d", task.Title, task.Position, i)
		}
	}
}

func TestStorage_DeleteClosesGap(t *testing.T) {
	storage, cleanup := setupTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	var ids []uuid.UUID
	for _, title := range []string{"a", "b", "c"} {
		task, err := storage.Create(ctx, title, "")
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		ids = append(ids, task.ID)
	}

	// Delete the middle task
	if err := storage.Delete(ctx, ids[1]); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	list, err := storage.List(ctx, FilterAll)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 remaining tasks, got %d", len(list))
	}
	if list[0].Title != "a" || list[0].Position != 0 {
		t.Errorf("first remaining task: %+v", list[0])
	}
	if list[1].Title != "c" || list[1].Position != 1 {
		t.Errorf("deleted task's gap must close: %+v", list[1])
	}
}

func TestStorage_DeleteMissing(t *testing.T) {
	storage, cleanup := setupTestStorage(t)
	defer cleanup()

	if err := storage.Delete(context.Background(), uuid.New()); err == nil {
		t.Error("expected error for missing task")
	}
}
