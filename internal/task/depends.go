package task

import (
	"fmt"
	"slices"
	"strings"

	"github.com/mattjoyce/dagspec/internal/model"
	"github.com/mattjoyce/dagspec/internal/value"
)

// Operator joins terms of depends and when expressions.
type Operator string

const (
	And          Operator = "&&"
	Or           Operator = "||"
	Equals       Operator = "=="
	NotEquals    Operator = "!="
	Greater      Operator = ">"
	Less         Operator = "<"
	GreaterEqual Operator = ">="
	LessEqual    Operator = "<="
	Not          Operator = "!"
	Matches      Operator = "=~"
)

var operators = []Operator{And, Or, Equals, NotEquals, Greater, Less, GreaterEqual, LessEqual, Not, Matches}

// Result is a task outcome usable in a depends expression.
type Result string

const (
	Succeeded    Result = "Succeeded"
	Failed       Result = "Failed"
	Errored      Result = "Errored"
	Skipped      Result = "Skipped"
	Omitted      Result = "Omitted"
	Daemoned     Result = "Daemoned"
	AnySucceeded Result = "AnySucceeded"
	AllFailed    Result = "AllFailed"
)

// DependencyTasks returns the task names referenced by the depends
// expression, without operators or result suffixes.
func (t *Task) DependencyTasks() []string {
	if t.depends == "" {
		return nil
	}
	var out []string
	for _, tok := range strings.Fields(t.depends) {
		if slices.Contains(operators, Operator(tok)) {
			continue
		}
		tok = strings.Trim(tok, "()")
		tok = strings.TrimPrefix(tok, string(Not))
		if name, _, _ := strings.Cut(tok, "."); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// Next makes other depend on t, joined to other's existing depends with op
// and optionally qualified by a result. It returns other so calls chain.
func (t *Task) Next(other *Task, op Operator, on Result) (*Task, error) {
	term := t.name
	if on != "" {
		term += "." + string(on)
	}
	if other.depends == "" {
		other.depends = term
		return other, nil
	}
	if slices.Contains(other.DependencyTasks(), t.name) {
		return nil, fmt.Errorf("%s already in %s's depends %q: %w", t.name, other.name, other.depends, ErrDependency)
	}
	if op == "" {
		op = And
	}
	other.depends += fmt.Sprintf(" %s %s", op, term)
	return other, nil
}

// Then makes every task in others depend on t.
func (t *Task) Then(others ...*Task) error {
	for _, o := range others {
		if _, err := t.Next(o, And, ""); err != nil {
			return err
		}
	}
	return nil
}

// After makes t depend on every task in upstream.
func (t *Task) After(upstream ...*Task) error {
	for _, u := range upstream {
		if _, err := u.Next(t, And, ""); err != nil {
			return err
		}
	}
	return nil
}

// OnSuccess runs other when t succeeds.
func (t *Task) OnSuccess(other *Task) (*Task, error) {
	return t.Next(other, And, Succeeded)
}

// OnFailure runs other when t fails.
func (t *Task) OnFailure(other *Task) (*Task, error) {
	return t.Next(other, And, Failed)
}

// OnError runs other when t errors.
func (t *Task) OnError(other *Task) (*Task, error) {
	return t.Next(other, And, Errored)
}

// OnOtherResult runs t after other, only when other's result compares to
// val with op.
func (t *Task) OnOtherResult(other *Task, val string, op Operator) (*Task, error) {
	if op == "" {
		op = Equals
	}
	t.addWhen(fmt.Sprintf("'%s' %s %s", other.Result(), op, val))
	if _, err := other.Next(t, And, ""); err != nil {
		return nil, err
	}
	return t, nil
}

// WhenAnySucceeded runs other when any iteration of the looped task t succeeds.
func (t *Task) WhenAnySucceeded(other *Task) (*Task, error) {
	if t.withParam == "" && t.withSequence == nil {
		return nil, fmt.Errorf("%s: %w", t.name, ErrNotLooped)
	}
	return t.Next(other, And, AnySucceeded)
}

// WhenAllFailed runs other when every iteration of the looped task t fails.
func (t *Task) WhenAllFailed(other *Task) (*Task, error) {
	if t.withParam == "" && t.withSequence == nil {
		return nil, fmt.Errorf("%s: %w", t.name, ErrNotLooped)
	}
	return t.Next(other, And, AllFailed)
}

// OnWorkflowStatus gates t on the workflow's status.
func (t *Task) OnWorkflowStatus(status model.Phase, op Operator) *Task {
	if op == "" {
		op = Equals
	}
	t.addWhen(fmt.Sprintf("{{workflow.status}} %s %s", op, status))
	return t
}

func (t *Task) addWhen(expr string) {
	if t.when == "" {
		t.when = expr
		return
	}
	t.when += fmt.Sprintf(" %s %s", And, expr)
}

// ID is the runtime node id of the task.
func (t *Task) ID() string { return t.ref("id") }

// IP is the pod IP of a daemoned task.
func (t *Task) IP() string { return t.ref("ip") }

// Status is the task's phase.
func (t *Task) Status() string { return t.ref("status") }

func (t *Task) ExitCode() string   { return t.ref("exitCode") }
func (t *Task) StartedAt() string  { return t.ref("startedAt") }
func (t *Task) FinishedAt() string { return t.ref("finishedAt") }

// Result is the captured stdout of the task.
func (t *Task) Result() string { return t.ref("outputs.result") }

func (t *Task) ref(field string) string {
	return fmt.Sprintf("{{tasks.%s.%s}}", t.name, field)
}

// GetParameter returns an argument bound to one of t's declared output
// parameters.
func (t *Task) GetParameter(name string) (value.Parameter, error) {
	if _, ok := value.FindParameter(t.outputs, name); !ok {
		return value.Parameter{}, fmt.Errorf("task %q has no output parameter %q: %w", t.name, name, value.ErrLookup)
	}
	return value.Parameter{
		Name:  name,
		Value: t.ref("outputs.parameters." + name),
	}, nil
}

// GetArtifact returns an input artifact sourced from one of t's declared
// output artifacts.
func (t *Task) GetArtifact(name string) (value.Artifact, error) {
	for _, v := range t.outputs {
		if a, ok := v.(value.Artifact); ok && a.Name == name {
			return value.Artifact{
				Name: name,
				From: t.ref("outputs.artifacts." + name),
			}, nil
		}
	}
	return value.Artifact{}, fmt.Errorf("task %q has no output artifact %q: %w", t.name, name, value.ErrLookup)
}
