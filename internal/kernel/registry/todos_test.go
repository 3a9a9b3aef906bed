package registry

import (
	"context"
	"testing"

	"github.com/agentmesh/swarmkernel/internal/kernel/kerrors"
	"github.com/agentmesh/swarmkernel/internal/kernel/model"
)

func TestAddTodoAppendsPending(t *testing.T) {
	r, _ := newTestRegistry()
	a := r.Create(context.Background(), model.Agent{Name: "QA"})

	todo, err := r.AddTodo(context.Background(), a.ID, "write tests")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if todo.Done {
		t.Fatal("expected new todo to be pending")
	}

	got, _ := r.Raw(a.ID)
	if len(got.Todos) != 1 || got.Todos[0].ID != todo.ID {
		t.Fatalf("expected todo stored, got %#v", got.Todos)
	}
}

func TestToggleTodoTwiceIsIdentity(t *testing.T) {
	r, _ := newTestRegistry()
	a := r.Create(context.Background(), model.Agent{Name: "QA"})
	todo, _ := r.AddTodo(context.Background(), a.ID, "write tests")

	if err := r.ToggleTodo(context.Background(), a.ID, todo.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.ToggleTodo(context.Background(), a.ID, todo.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := r.Raw(a.ID)
	if got.Todos[0].Done {
		t.Fatal("expected toggle composed with itself to return to pending")
	}
}

func TestCompleteTodoSetsDoneRegardlessOfCurrentState(t *testing.T) {
	r, _ := newTestRegistry()
	a := r.Create(context.Background(), model.Agent{Name: "QA"})
	todo, _ := r.AddTodo(context.Background(), a.ID, "write tests")

	if err := r.CompleteTodo(context.Background(), a.ID, todo.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := r.Raw(a.ID)
	if !got.Todos[0].Done || got.Todos[0].CompletedAt == nil {
		t.Fatalf("expected todo completed with timestamp, got %#v", got.Todos[0])
	}
}

func TestDeleteTodoRemovesByID(t *testing.T) {
	r, _ := newTestRegistry()
	a := r.Create(context.Background(), model.Agent{Name: "QA"})
	todo, _ := r.AddTodo(context.Background(), a.ID, "write tests")

	if err := r.DeleteTodo(context.Background(), a.ID, todo.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := r.Raw(a.ID)
	if len(got.Todos) != 0 {
		t.Fatalf("expected todo removed, got %#v", got.Todos)
	}
}

func TestToggleTodoUnknownIDReturnsNotFound(t *testing.T) {
	r, _ := newTestRegistry()
	a := r.Create(context.Background(), model.Agent{Name: "QA"})

	if err := r.ToggleTodo(context.Background(), a.ID, "missing"); err != kerrors.ErrTodoNotFound {
		t.Fatalf("expected ErrTodoNotFound, got %v", err)
	}
}
