package dag

import (
	"errors"
	"testing"
)

func TestSessionRegistersIntoInnermostScope(t *testing.T) {
	s := NewSession()
	outer := mustDAG(t, "outer")
	inner := mustDAG(t, "inner")

	if s.Register(&stubUnit{name: "orphan"}) {
		t.Fatal("Register outside a scope should be a no-op")
	}

	_, err := s.Scope(outer, func(o *DAG) error {
		s.Register(&stubUnit{name: "first"})
		if _, err := s.Scope(inner, func(*DAG) error {
			if s.Current() != inner {
				t.Fatalf("current = %v, want inner", s.Current())
			}
			s.Register(&stubUnit{name: "nested"})
			return nil
		}); err != nil {
			return err
		}
		s.Register(&stubUnit{name: "second"})
		return nil
	})
	if err != nil {
		t.Fatalf("Scope: %v", err)
	}

	if got := len(outer.Tasks()); got != 2 {
		t.Fatalf("outer tasks = %d, want 2", got)
	}
	if outer.Tasks()[1].Name() != "second" {
		t.Fatalf("outer second task = %q", outer.Tasks()[1].Name())
	}
	if got := len(inner.Tasks()); got != 1 || inner.Tasks()[0].Name() != "nested" {
		t.Fatalf("inner tasks = %+v", inner.Tasks())
	}
	if s.Depth() != 0 || s.Current() != nil {
		t.Fatalf("stack not empty after scopes: depth=%d", s.Depth())
	}
}

func TestSessionInContext(t *testing.T) {
	s := NewSession()
	d := mustDAG(t, "main")
	if d.InContext() {
		t.Fatal("fresh dag should not be in context")
	}
	s.Enter(d)
	if !d.InContext() {
		t.Fatal("entered dag should be in context")
	}
	got, err := s.Exit()
	if err != nil || got != d {
		t.Fatalf("Exit = %v, %v", got, err)
	}
	if d.InContext() {
		t.Fatal("exited dag should not be in context")
	}
}

func TestSessionExitEmpty(t *testing.T) {
	if _, err := NewSession().Exit(); !errors.Is(err, ErrNoScope) {
		t.Fatalf("err = %v, want ErrNoScope", err)
	}
}

func TestSessionScopePopsOnPanic(t *testing.T) {
	s := NewSession()
	d := mustDAG(t, "main")
	func() {
		defer func() { _ = recover() }()
		_, _ = s.Scope(d, func(*DAG) error { panic("boom") })
	}()
	if s.Depth() != 0 || d.InContext() {
		t.Fatalf("scope leaked after panic: depth=%d", s.Depth())
	}
}

func TestSessionScopeError(t *testing.T) {
	s := NewSession()
	want := errors.New("stop")
	got, err := s.Scope(mustDAG(t, "main"), func(*DAG) error { return want })
	if !errors.Is(err, want) || got != nil {
		t.Fatalf("Scope = %v, %v", got, err)
	}
	if s.Depth() != 0 {
		t.Fatalf("depth = %d, want 0", s.Depth())
	}
}

func TestNilSessionNeverRegisters(t *testing.T) {
	var s *Session
	if s.Register(&stubUnit{name: "x"}) {
		t.Fatal("nil session should not register")
	}
}
