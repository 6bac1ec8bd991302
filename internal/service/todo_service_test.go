package service

import (
	"errors"
	"testing"
	"time"

	"github.com/larsvasseldonk/calmly-list/internal/domain"
	"github.com/larsvasseldonk/calmly-list/internal/repository"
)

func newTodoService() *TodoService {
	return NewTodoService(repository.NewMemoryTodoRepository(), nil)
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func prioPtr(p domain.Priority) *domain.Priority { return &p }

func TestCreateTodo(t *testing.T) {
	svc := newTodoService()

	before := time.Now().UnixMilli()
	todo, err := svc.Create("", CreateTodoInput{Text: "buy milk"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	after := time.Now().UnixMilli()

	if todo.ID == "" {
		t.Error("expected a generated id")
	}
	if todo.Completed {
		t.Error("new todo should not be completed")
	}
	if todo.CreatedAt < before || todo.CreatedAt > after {
		t.Errorf("createdAt %d outside [%d, %d]", todo.CreatedAt, before, after)
	}
	if todo.DueDate != nil || todo.Priority != nil || todo.Category != nil {
		t.Error("optional fields should stay unset when not supplied")
	}
}

func TestCreateTodoAssignsDistinctIDs(t *testing.T) {
	svc := newTodoService()

	first, err := svc.Create("", CreateTodoInput{Text: "one"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	second, err := svc.Create("", CreateTodoInput{Text: "two"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if first.ID == second.ID {
		t.Errorf("expected distinct ids, both were %s", first.ID)
	}
}

func TestCreateTodoValidation(t *testing.T) {
	svc := newTodoService()

	if _, err := svc.Create("", CreateTodoInput{Text: "   "}); !errors.Is(err, ErrTextRequired) {
		t.Errorf("expected ErrTextRequired for blank text, got %v", err)
	}

	bad := domain.Priority("urgent")
	if _, err := svc.Create("", CreateTodoInput{Text: "x", Priority: &bad}); !errors.Is(err, ErrInvalidPriority) {
		t.Errorf("expected ErrInvalidPriority, got %v", err)
	}
}

func TestCreateTodoWithOptionalFields(t *testing.T) {
	svc := newTodoService()

	due := time.Now().Add(24 * time.Hour).UnixMilli()
	todo, err := svc.Create("", CreateTodoInput{
		Text:     "file taxes",
		DueDate:  &due,
		Priority: prioPtr(domain.PriorityHigh),
		Category: strPtr("finance"),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if todo.DueDate == nil || *todo.DueDate != due {
		t.Error("due date not stored")
	}
	if todo.Priority == nil || *todo.Priority != domain.PriorityHigh {
		t.Error("priority not stored")
	}
	if todo.Category == nil || *todo.Category != "finance" {
		t.Error("category not stored")
	}
}

func TestListReturnsCreationOrder(t *testing.T) {
	svc := newTodoService()

	texts := []string{"first", "second", "third"}
	for _, text := range texts {
		if _, err := svc.Create("", CreateTodoInput{Text: text}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	todos, err := svc.List("")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(todos) != len(texts) {
		t.Fatalf("expected %d todos, got %d", len(texts), len(todos))
	}
	for i, text := range texts {
		if todos[i].Text != text {
			t.Errorf("position %d: expected %q, got %q", i, text, todos[i].Text)
		}
	}
}

func TestUpdateMergesOnlySuppliedFields(t *testing.T) {
	svc := newTodoService()

	due := int64(1700000000000)
	todo, err := svc.Create("", CreateTodoInput{
		Text:     "walk dog",
		DueDate:  &due,
		Priority: prioPtr(domain.PriorityLow),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	updated, err := svc.Update(todo.ID, "", domain.TodoPatch{Completed: boolPtr(true)})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if !updated.Completed {
		t.Error("completed should be true")
	}
	if updated.Text != "walk dog" {
		t.Errorf("text changed unexpectedly: %q", updated.Text)
	}
	if updated.DueDate == nil || *updated.DueDate != due {
		t.Error("due date changed unexpectedly")
	}
	if updated.Priority == nil || *updated.Priority != domain.PriorityLow {
		t.Error("priority changed unexpectedly")
	}
	if updated.ID != todo.ID || updated.CreatedAt != todo.CreatedAt {
		t.Error("id and createdAt must never change on update")
	}
}

func TestUpdateValidation(t *testing.T) {
	svc := newTodoService()

	todo, err := svc.Create("", CreateTodoInput{Text: "x"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := svc.Update(todo.ID, "", domain.TodoPatch{Text: strPtr("  ")}); !errors.Is(err, ErrTextRequired) {
		t.Errorf("expected ErrTextRequired, got %v", err)
	}
	if _, err := svc.Update(todo.ID, "", domain.TodoPatch{Priority: prioPtr("asap")}); !errors.Is(err, ErrInvalidPriority) {
		t.Errorf("expected ErrInvalidPriority, got %v", err)
	}
}

func TestUpdateMissingTodo(t *testing.T) {
	svc := newTodoService()

	if _, err := svc.Update("no-such-id", "", domain.TodoPatch{Completed: boolPtr(true)}); !errors.Is(err, domain.ErrTodoNotFound) {
		t.Errorf("expected ErrTodoNotFound, got %v", err)
	}
}

func TestDeleteTodo(t *testing.T) {
	svc := newTodoService()

	todo, err := svc.Create("", CreateTodoInput{Text: "x"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := svc.Delete(todo.ID, ""); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := svc.Delete(todo.ID, ""); !errors.Is(err, domain.ErrTodoNotFound) {
		t.Errorf("second delete should be ErrTodoNotFound, got %v", err)
	}
}

func TestDeleteCompleted(t *testing.T) {
	svc := newTodoService()

	keep, _ := svc.Create("", CreateTodoInput{Text: "keep"})
	doneA, _ := svc.Create("", CreateTodoInput{Text: "done a"})
	doneB, _ := svc.Create("", CreateTodoInput{Text: "done b"})
	for _, id := range []string{doneA.ID, doneB.ID} {
		if _, err := svc.Update(id, "", domain.TodoPatch{Completed: boolPtr(true)}); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
	}

	count, err := svc.DeleteCompleted("")
	if err != nil {
		t.Fatalf("DeleteCompleted failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 removed, got %d", count)
	}

	todos, err := svc.List("")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(todos) != 1 || todos[0].ID != keep.ID {
		t.Errorf("expected only %s to remain, got %d todos", keep.ID, len(todos))
	}

	// A second clear on an already-clean list is a normal zero
	count, err = svc.DeleteCompleted("")
	if err != nil {
		t.Fatalf("DeleteCompleted failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 removed, got %d", count)
	}
}

func TestOwnerIsolation(t *testing.T) {
	svc := newTodoService()

	alice, err := svc.Create("user-alice", CreateTodoInput{Text: "alice's"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.Create("user-bob", CreateTodoInput{Text: "bob's"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	todos, err := svc.List("user-alice")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(todos) != 1 || todos[0].Text != "alice's" {
		t.Fatalf("expected alice to see only her todo, got %d", len(todos))
	}

	// Bob touching alice's todo looks exactly like a miss
	if _, err := svc.Update(alice.ID, "user-bob", domain.TodoPatch{Completed: boolPtr(true)}); !errors.Is(err, domain.ErrTodoNotFound) {
		t.Errorf("cross-owner update should be ErrTodoNotFound, got %v", err)
	}
	if err := svc.Delete(alice.ID, "user-bob"); !errors.Is(err, domain.ErrTodoNotFound) {
		t.Errorf("cross-owner delete should be ErrTodoNotFound, got %v", err)
	}

	// DeleteCompleted only touches the caller's rows
	if _, err := svc.Update(alice.ID, "user-alice", domain.TodoPatch{Completed: boolPtr(true)}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	count, err := svc.DeleteCompleted("user-bob")
	if err != nil {
		t.Fatalf("DeleteCompleted failed: %v", err)
	}
	if count != 0 {
		t.Errorf("bob should not clear alice's completed todo, removed %d", count)
	}
}
