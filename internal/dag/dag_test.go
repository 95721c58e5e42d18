package dag

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mattjoyce/dagspec/internal/model"
	"github.com/mattjoyce/dagspec/internal/naming"
	"github.com/mattjoyce/dagspec/internal/value"
)

type stubUnit struct {
	name    string
	nested  *DAG
	exit    bool
	depends string
	claims  []model.PersistentVolumeClaim
	vols    []model.Volume
}

func (u *stubUnit) Name() string      { return u.name }
func (u *stubUnit) Nested() *DAG      { return u.nested }
func (u *stubUnit) IsExit() bool      { return u.exit }
func (u *stubUnit) SetExit(exit bool) { u.exit = exit }

func (u *stubUnit) BuildTemplate() (*model.Template, error) {
	if u.nested != nil {
		return nil, nil
	}
	return &model.Template{Name: u.name, Container: &model.Container{Image: "alpine"}}, nil
}

func (u *stubUnit) BuildDAGTask() (*model.DAGTask, error) {
	tmpl := u.name
	if u.nested != nil {
		tmpl = u.nested.Name
	}
	return &model.DAGTask{Name: u.name, Template: tmpl, Depends: u.depends}, nil
}

func (u *stubUnit) VolumeClaimTemplates() []model.PersistentVolumeClaim { return u.claims }
func (u *stubUnit) Volumes() []model.Volume                             { return u.vols }

func mustDAG(t *testing.T, name string, opts ...Option) *DAG {
	t.Helper()
	d, err := New(name, opts...)
	if err != nil {
		t.Fatalf("New(%q): %v", name, err)
	}
	return d
}

func claim(name, class string) model.PersistentVolumeClaim {
	return model.PersistentVolumeClaim{
		Metadata: model.ObjectMeta{Name: name},
		Spec:     model.PersistentVolumeClaimSpec{StorageClassName: &class},
	}
}

func templateNames(ts []model.Template) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.Name)
	}
	return out
}

func TestNewRejectsInvalidName(t *testing.T) {
	_, err := New("Not_Valid")
	if !errors.Is(err, naming.ErrInvalidName) {
		t.Fatalf("err = %v, want ErrInvalidName", err)
	}
}

func TestNewNormalizesInputs(t *testing.T) {
	d := mustDAG(t, "main", WithInputs(value.Mapping{"b": 2, "a": "x"}))
	if len(d.Inputs) != 2 || d.Inputs[0].ValueName() != "a" || d.Inputs[1].ValueName() != "b" {
		t.Fatalf("inputs = %+v", d.Inputs)
	}

	_, err := New("main", WithInputs(value.Mixed{42}))
	if !errors.Is(err, value.ErrShape) {
		t.Fatalf("err = %v, want ErrShape", err)
	}
}

func TestFlattenEmptyDAG(t *testing.T) {
	g, err := Flatten(mustDAG(t, "empty"))
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	want := []model.Template{{
		Name: "empty",
		DAG:  &model.DAGTemplate{Tasks: []model.DAGTask{}},
	}}
	if diff := cmp.Diff(want, g.Templates); diff != "" {
		t.Fatalf("templates mismatch (-want +got):\n%s", diff)
	}
	if len(g.VolumeClaimTemplates) != 0 || len(g.Volumes) != 0 {
		t.Fatalf("resources = %+v / %+v, want empty", g.VolumeClaimTemplates, g.Volumes)
	}
	if g.VolumeClaimTemplates == nil || g.Volumes == nil {
		t.Fatal("resource collections should be empty, not nil")
	}
}

func TestFlattenOrderLevelThenUnitsThenChildren(t *testing.T) {
	leafDAG := mustDAG(t, "leaf-dag")
	leafDAG.AddTask(&stubUnit{name: "deep"})

	sub := mustDAG(t, "sub")
	sub.AddTasks(&stubUnit{name: "s1"}, &stubUnit{name: "into-leaf", nested: leafDAG})

	other := mustDAG(t, "other")
	other.AddTask(&stubUnit{name: "o1"})

	root := mustDAG(t, "root")
	root.AddTasks(
		&stubUnit{name: "a"},
		&stubUnit{name: "into-sub", nested: sub, depends: "a"},
		&stubUnit{name: "b"},
		&stubUnit{name: "into-other", nested: other},
	)

	g, err := Flatten(root)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	want := []string{"root", "a", "b", "sub", "s1", "leaf-dag", "deep", "other", "o1"}
	if diff := cmp.Diff(want, templateNames(g.Templates)); diff != "" {
		t.Fatalf("template order mismatch (-want +got):\n%s", diff)
	}

	wantTasks := []model.DAGTask{
		{Name: "a", Template: "a"},
		{Name: "into-sub", Template: "sub", Depends: "a"},
		{Name: "b", Template: "b"},
		{Name: "into-other", Template: "other"},
	}
	if diff := cmp.Diff(wantTasks, g.Templates[0].DAG.Tasks); diff != "" {
		t.Fatalf("root tasks mismatch (-want +got):\n%s", diff)
	}
}

func TestFlattenThreeLevelsOneTemplateEach(t *testing.T) {
	c := mustDAG(t, "c")
	b := mustDAG(t, "b", WithTasks(Wrap("to-c", c)))
	a := mustDAG(t, "a", WithTasks(Wrap("to-b", b)))

	got, err := a.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, templateNames(got)); diff != "" {
		t.Fatalf("templates mismatch (-want +got):\n%s", diff)
	}
}

func TestFlattenClaimsLastVisitedWins(t *testing.T) {
	inner := mustDAG(t, "inner")
	inner.AddTask(&stubUnit{name: "deep", claims: []model.PersistentVolumeClaim{claim("data", "deep")}})

	root := mustDAG(t, "root")
	root.AddTasks(
		&stubUnit{name: "shallow", claims: []model.PersistentVolumeClaim{claim("data", "shallow"), claim("cache", "x")}},
		&stubUnit{name: "nest", nested: inner},
	)

	g, err := Flatten(root)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	want := []model.PersistentVolumeClaim{claim("data", "deep"), claim("cache", "x")}
	if diff := cmp.Diff(want, g.VolumeClaimTemplates); diff != "" {
		t.Fatalf("claims mismatch (-want +got):\n%s", diff)
	}
}

func TestFlattenVolumesDeduplicated(t *testing.T) {
	vol := func(name, claimName string) model.Volume {
		return model.Volume{Name: name, PersistentVolumeClaim: &model.PersistentVolumeClaimVolumeSource{ClaimName: claimName}}
	}
	inner := mustDAG(t, "inner")
	inner.AddTask(&stubUnit{name: "x", vols: []model.Volume{vol("shared", "second")}})
	root := mustDAG(t, "root")
	root.AddTasks(
		&stubUnit{name: "y", vols: []model.Volume{vol("shared", "first")}},
		&stubUnit{name: "z", vols: []model.Volume{vol("shared", "ignored-order"), vol("own", "own")}},
		&stubUnit{name: "n", nested: inner},
	)
	g, err := Flatten(root)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	want := []model.Volume{vol("shared", "second"), vol("own", "own")}
	if diff := cmp.Diff(want, g.Volumes); diff != "" {
		t.Fatalf("volumes mismatch (-want +got):\n%s", diff)
	}
}

func TestFlattenExitUnitOmittedFromTasks(t *testing.T) {
	root := mustDAG(t, "root")
	cleanup := &stubUnit{name: "cleanup"}
	cleanup.SetExit(true)
	root.AddTasks(&stubUnit{name: "work"}, cleanup)

	g, err := Flatten(root)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	tasks := g.Templates[0].DAG.Tasks
	if len(tasks) != 1 || tasks[0].Name != "work" {
		t.Fatalf("tasks = %+v, want only work", tasks)
	}
	if diff := cmp.Diff([]string{"root", "work", "cleanup"}, templateNames(g.Templates)); diff != "" {
		t.Fatalf("exit unit template should still be emitted (-want +got):\n%s", diff)
	}
}

func TestFlattenDetectsCycle(t *testing.T) {
	a := mustDAG(t, "a")
	b := mustDAG(t, "b")
	a.AddTask(Wrap("to-b", b))
	b.AddTask(Wrap("to-a", a))

	_, err := Flatten(a)
	if !errors.Is(err, ErrCycle) {
		t.Fatalf("err = %v, want ErrCycle", err)
	}
	if !strings.Contains(err.Error(), "a -> b -> a") {
		t.Fatalf("err = %q, want cycle path", err)
	}
}

func TestFlattenSelfCycle(t *testing.T) {
	a := mustDAG(t, "a")
	a.AddTask(Wrap("again", a))
	if _, err := Flatten(a); !errors.Is(err, ErrCycle) {
		t.Fatalf("err = %v, want ErrCycle", err)
	}
}

func TestFlattenSharedDAGEmittedOnce(t *testing.T) {
	shared := mustDAG(t, "shared")
	shared.AddTask(&stubUnit{name: "work"})
	root := mustDAG(t, "root")
	root.AddTasks(Wrap("left", shared), Wrap("right", shared))

	g, err := Flatten(root)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if diff := cmp.Diff([]string{"root", "shared", "work"}, templateNames(g.Templates)); diff != "" {
		t.Fatalf("templates mismatch (-want +got):\n%s", diff)
	}
	if len(g.Templates[0].DAG.Tasks) != 2 {
		t.Fatalf("both wrapper tasks should reference shared: %+v", g.Templates[0].DAG.Tasks)
	}
}

func TestFlattenSharedDAGResourcesFollowLastVisit(t *testing.T) {
	shared := mustDAG(t, "shared")
	shared.AddTask(&stubUnit{name: "s-leaf", claims: []model.PersistentVolumeClaim{claim("data", "from-shared")}})
	p := mustDAG(t, "p", WithTasks(Wrap("to-shared", shared)))
	q := mustDAG(t, "q", WithTasks(
		&stubUnit{name: "q-leaf", claims: []model.PersistentVolumeClaim{claim("data", "from-q")}},
		Wrap("to-shared", shared),
	))
	root := mustDAG(t, "root", WithTasks(Wrap("to-p", p), Wrap("to-q", q)))

	g, err := Flatten(root)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if diff := cmp.Diff([]string{"root", "p", "shared", "s-leaf", "q", "q-leaf"}, templateNames(g.Templates)); diff != "" {
		t.Fatalf("templates mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]model.PersistentVolumeClaim{claim("data", "from-shared")}, g.VolumeClaimTemplates); diff != "" {
		t.Fatalf("claims mismatch (-want +got):\n%s", diff)
	}
}

func TestFlattenDuplicateTaskName(t *testing.T) {
	root := mustDAG(t, "root")
	root.AddTasks(&stubUnit{name: "x"}, &stubUnit{name: "x"})
	_, err := Flatten(root)
	if !errors.Is(err, ErrDuplicateTask) {
		t.Fatalf("err = %v, want ErrDuplicateTask", err)
	}
	if !strings.Contains(err.Error(), "tasks[1]") {
		t.Fatalf("err = %q, want index context", err)
	}
}

func TestFlattenDuplicateTemplateAcrossDAGs(t *testing.T) {
	inner := mustDAG(t, "inner")
	inner.AddTask(&stubUnit{name: "step"})
	root := mustDAG(t, "root")
	root.AddTasks(&stubUnit{name: "step"}, Wrap("nest", inner))

	_, err := Flatten(root)
	if !errors.Is(err, ErrDuplicateTemplate) {
		t.Fatalf("err = %v, want ErrDuplicateTemplate", err)
	}
}

func TestFlattenNil(t *testing.T) {
	if _, err := Flatten(nil); err == nil {
		t.Fatal("expected error for nil dag")
	}
}

func TestTemplateCarriesInputsAndOutputs(t *testing.T) {
	d := mustDAG(t, "main",
		WithInputs(value.Mapping{"n": 3}),
		WithOutputs(value.Parameter{Name: "result", ValueFrom: &model.ValueFrom{Parameter: "{{tasks.a.outputs.parameters.r}}"}}),
		WithFailFast(false),
		WithTarget("a"),
	)
	tmpl, err := d.Template()
	if err != nil {
		t.Fatalf("Template: %v", err)
	}
	if tmpl.Inputs == nil || len(tmpl.Inputs.Parameters) != 1 || *tmpl.Inputs.Parameters[0].Value != "3" {
		t.Fatalf("inputs = %+v", tmpl.Inputs)
	}
	if tmpl.Outputs == nil || tmpl.Outputs.Parameters[0].Name != "result" {
		t.Fatalf("outputs = %+v", tmpl.Outputs)
	}
	if tmpl.DAG.Target != "a" || tmpl.DAG.FailFast == nil || *tmpl.DAG.FailFast {
		t.Fatalf("dag settings = %+v", tmpl.DAG)
	}
}

func TestGetParameter(t *testing.T) {
	d := mustDAG(t, "main", WithOutputs(value.Parameter{Name: "result"}))

	p, err := d.GetParameter("result")
	if err != nil {
		t.Fatalf("GetParameter: %v", err)
	}
	if p.Name != "result" || p.Value != "{{inputs.parameters.result}}" {
		t.Fatalf("param = %+v", p)
	}

	if _, err := d.GetParameter("missing"); !errors.Is(err, value.ErrLookup) {
		t.Fatalf("err = %v, want ErrLookup", err)
	}
}

func TestOwns(t *testing.T) {
	d := mustDAG(t, "main")
	u := &stubUnit{name: "a"}
	if d.Owns(u) {
		t.Fatal("unit should not be owned yet")
	}
	d.AddTask(u)
	if !d.Owns(u) {
		t.Fatal("unit should be owned")
	}
}
