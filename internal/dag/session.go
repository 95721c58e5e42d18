package dag

import "errors"

// ErrNoScope is returned by Exit when no DAG is open.
var ErrNoScope = errors.New("no open dag")

// Session is an authoring session: a stack of open DAGs that newly created
// units register into. Not safe for concurrent use.
type Session struct {
	stack []*DAG
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{}
}

// Enter opens d, making it the registration target until Exit.
func (s *Session) Enter(d *DAG) *DAG {
	s.stack = append(s.stack, d)
	d.open++
	return d
}

// Exit closes the innermost open DAG and returns it.
func (s *Session) Exit() (*DAG, error) {
	if len(s.stack) == 0 {
		return nil, ErrNoScope
	}
	top := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	top.open--
	return top, nil
}

// Scope runs fn with d open. d is closed again even if fn panics.
func (s *Session) Scope(d *DAG, fn func(*DAG) error) (*DAG, error) {
	s.Enter(d)
	defer func() { _, _ = s.Exit() }()
	if err := fn(d); err != nil {
		return nil, err
	}
	return d, nil
}

// Current returns the innermost open DAG, or nil.
func (s *Session) Current() *DAG {
	if s == nil || len(s.stack) == 0 {
		return nil
	}
	return s.stack[len(s.stack)-1]
}

// Depth is the number of open DAGs.
func (s *Session) Depth() int {
	if s == nil {
		return 0
	}
	return len(s.stack)
}

// Register appends u to the innermost open DAG. It reports whether a DAG
// was open; a nil session never registers.
func (s *Session) Register(u Unit) bool {
	cur := s.Current()
	if cur == nil {
		return false
	}
	cur.AddTask(u)
	return true
}
