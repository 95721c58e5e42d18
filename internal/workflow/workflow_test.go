package workflow

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mattjoyce/dagspec/internal/dag"
	"github.com/mattjoyce/dagspec/internal/model"
	"github.com/mattjoyce/dagspec/internal/naming"
	"github.com/mattjoyce/dagspec/internal/task"
	"github.com/mattjoyce/dagspec/internal/value"
	"github.com/mattjoyce/dagspec/internal/volume"
)

func ptr[T any](v T) *T { return &v }

func templateNames(ts []model.Template) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.Name)
	}
	return out
}

func TestNewNaming(t *testing.T) {
	_, err := New("", "")
	assert.ErrorIs(t, err, naming.ErrInvalidName)

	w, err := New("", "etl-")
	require.NoError(t, err)
	assert.Equal(t, "etl", w.DAG.Name)
	assert.Equal(t, model.DefaultAPIVersion, w.APIVersion)

	w, err = New("etl", "", WithDAGName("main"))
	require.NoError(t, err)
	assert.Equal(t, "main", w.DAG.Name)
}

func TestBuildWithSession(t *testing.T) {
	s := dag.NewSession()
	w, err := New("etl", "", WithInputs(value.Mapping{"date": "2024-01-01", "limit": 10}))
	require.NoError(t, err)

	sub, err := dag.New("sub")
	require.NoError(t, err)

	err = w.Scope(s, func(w *Workflow) error {
		extract, err := task.New(s, "extract",
			task.WithImage("alpine"),
			task.WithVolumes(volume.ClaimTemplate{Name: "data", Size: "1Gi"}),
		)
		if err != nil {
			return err
		}
		load, err := task.New(s, "load", task.WithDAG(sub))
		if err != nil {
			return err
		}
		_, err = s.Scope(sub, func(*dag.DAG) error {
			_, err := task.New(s, "write",
				task.WithImage("alpine"),
				task.WithVolumes(volume.ClaimTemplate{Name: "data", Size: "5Gi"}),
			)
			return err
		})
		if err != nil {
			return err
		}
		return extract.Then(load)
	})
	require.NoError(t, err)
	assert.False(t, w.InContext())

	m, err := w.Build()
	require.NoError(t, err)

	assert.Equal(t, model.KindWorkflow, m.Kind)
	assert.Equal(t, "etl", m.Spec.Entrypoint)
	assert.Equal(t, []string{"etl", "extract", "sub", "write"}, templateNames(m.Spec.Templates))
	require.Len(t, m.Spec.VolumeClaimTemplates, 1)
	assert.Equal(t, "5Gi", m.Spec.VolumeClaimTemplates[0].Spec.Resources.Requests["storage"])

	require.NotNil(t, m.Spec.Arguments)
	require.Len(t, m.Spec.Arguments.Parameters, 2)
	assert.Equal(t, "date", m.Spec.Arguments.Parameters[0].Name)
	assert.Equal(t, "10", *m.Spec.Arguments.Parameters[1].Value)

	root := m.Spec.Templates[0].DAG.Tasks
	assert.Equal(t, []model.DAGTask{
		{Name: "extract", Template: "extract"},
		{Name: "load", Template: "sub", Depends: "extract"},
	}, root)
}

func TestBuildEmptyWorkflow(t *testing.T) {
	w, err := New("empty", "")
	require.NoError(t, err)
	m, err := w.Build()
	require.NoError(t, err)
	require.Len(t, m.Spec.Templates, 1)
	assert.Empty(t, m.Spec.Templates[0].DAG.Tasks)
	assert.Empty(t, m.Spec.VolumeClaimTemplates)
	assert.Empty(t, m.Spec.Volumes)
	assert.Nil(t, m.Spec.Arguments)
}

func TestBuildPropagatesCycle(t *testing.T) {
	w, err := New("loop", "")
	require.NoError(t, err)
	w.AddTask(dag.Wrap("again", w.DAG))
	_, err = w.Build()
	assert.ErrorIs(t, err, dag.ErrCycle)
}

func TestOnExitTask(t *testing.T) {
	w, err := New("etl", "")
	require.NoError(t, err)
	work, err := task.New(nil, "work", task.WithImage("alpine"))
	require.NoError(t, err)
	cleanup, err := task.New(nil, "cleanup", task.WithImage("alpine"))
	require.NoError(t, err)
	w.AddTask(work)

	require.NoError(t, w.OnExit(cleanup))
	assert.True(t, cleanup.IsExit())

	m, err := w.Build()
	require.NoError(t, err)
	assert.Equal(t, "cleanup", m.Spec.OnExit)
	assert.Equal(t, []model.DAGTask{{Name: "work", Template: "work"}}, m.Spec.Templates[0].DAG.Tasks)
	assert.Contains(t, templateNames(m.Spec.Templates), "cleanup")
}

func TestOnExitTaskAlreadyOwnedIsNotAddedTwice(t *testing.T) {
	w, err := New("etl", "")
	require.NoError(t, err)
	cleanup, err := task.New(nil, "cleanup", task.WithImage("alpine"))
	require.NoError(t, err)
	w.AddTask(cleanup)
	w.OnExitTask(cleanup)

	assert.Len(t, w.DAG.Tasks(), 1)
	_, err = w.Build()
	require.NoError(t, err)
}

func TestOnExitDAG(t *testing.T) {
	w, err := New("etl", "")
	require.NoError(t, err)

	exitDAG, err := dag.New("teardown")
	require.NoError(t, err)
	notify, err := task.New(nil, "notify", task.WithImage("curlimages/curl"))
	require.NoError(t, err)
	exitDAG.AddTask(notify)

	require.NoError(t, w.OnExit(exitDAG))
	w.OnExitDAG(exitDAG)

	m, err := w.Build()
	require.NoError(t, err)
	assert.Equal(t, "teardown", m.Spec.OnExit)
	assert.Equal(t, []string{"etl", "teardown", "notify"}, templateNames(m.Spec.Templates))
	assert.Empty(t, m.Spec.Templates[0].DAG.Tasks)
}

func TestOnExitDAGWithCollidingTaskName(t *testing.T) {
	w, err := New("wf", "")
	require.NoError(t, err)
	clash, err := task.New(nil, "exit-cleanup", task.WithImage("alpine"))
	require.NoError(t, err)
	w.AddTask(clash)

	cleanup, err := dag.New("cleanup")
	require.NoError(t, err)
	rm, err := task.New(nil, "rm", task.WithImage("alpine"))
	require.NoError(t, err)
	cleanup.AddTask(rm)

	w.OnExitDAG(cleanup)
	w.OnExitDAG(cleanup)

	m, err := w.Build()
	require.NoError(t, err)
	assert.Equal(t, "cleanup", m.Spec.OnExit)
	assert.Equal(t, []string{"wf", "exit-cleanup", "cleanup", "rm"}, templateNames(m.Spec.Templates))
	require.Len(t, w.DAG.Tasks(), 2)
	assert.Equal(t, "exit-cleanup-2", w.DAG.Tasks()[1].Name())
	require.Len(t, m.Spec.Templates[0].DAG.Tasks, 1)
	assert.Equal(t, "exit-cleanup", m.Spec.Templates[0].DAG.Tasks[0].Name)
}

func TestOnExitRejectsOtherTypes(t *testing.T) {
	w, err := New("etl", "")
	require.NoError(t, err)
	assert.ErrorIs(t, w.OnExit("cleanup"), value.ErrShape)
}

func TestGetParameterAndName(t *testing.T) {
	w, err := New("etl", "", WithInputs(value.Values{value.Parameter{Name: "date"}, value.Artifact{Name: "blob"}}))
	require.NoError(t, err)

	p, err := w.GetParameter("date")
	require.NoError(t, err)
	assert.Equal(t, "{{workflow.parameters.date}}", p.Value)

	_, err = w.GetParameter("blob")
	assert.ErrorIs(t, err, value.ErrLookup)
	_, err = w.GetParameter("nope")
	assert.ErrorIs(t, err, value.ErrLookup)

	assert.Equal(t, "{{workflow.name}}", w.GetName())
}

func TestNormalizeMetrics(t *testing.T) {
	counter := model.Prometheus{Name: "runs", Help: "runs", Counter: &model.Counter{Value: "1"}}
	want := &model.Metrics{Prometheus: []model.Prometheus{counter}}

	for _, in := range []any{counter, &counter, []model.Prometheus{counter}, *want, want} {
		got, err := NormalizeMetrics(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, "input %T", in)
	}

	got, err := NormalizeMetrics(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = NormalizeMetrics("runs")
	assert.ErrorIs(t, err, value.ErrShape)
}

func TestNormalizeVolumeClaimGC(t *testing.T) {
	got, err := NormalizeVolumeClaimGC(OnWorkflowSuccess)
	require.NoError(t, err)
	assert.Equal(t, &model.VolumeClaimGC{Strategy: "OnWorkflowSuccess"}, got)

	got, err = NormalizeVolumeClaimGC(model.VolumeClaimGC{Strategy: "OnWorkflowCompletion"})
	require.NoError(t, err)
	assert.Equal(t, "OnWorkflowCompletion", got.Strategy)

	got, err = NormalizeVolumeClaimGC(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = NormalizeVolumeClaimGC(GCStrategy("Never"))
	assert.ErrorIs(t, err, value.ErrShape)
	_, err = NormalizeVolumeClaimGC(42)
	assert.ErrorIs(t, err, value.ErrShape)
}

func fullySetWorkflow(t *testing.T) *Workflow {
	t.Helper()
	w, err := New("nightly", "",
		WithInputs(value.Mapping{"date": "2024-01-01"}),
		WithMetrics(model.Prometheus{Name: "runs", Help: "runs", Counter: &model.Counter{Value: "1"}}),
		WithVolumeClaimGC(OnWorkflowCompletion),
	)
	require.NoError(t, err)
	w.Labels = map[string]string{"team": "data"}
	w.ActiveDeadlineSeconds = ptr(int64(3600))
	w.Affinity = map[string]any{"nodeAffinity": map[string]any{"x": "y"}}
	w.ArchiveLogs = ptr(true)
	w.ArtifactRepositoryRef = &model.ArtifactRepositoryRef{ConfigMap: "repo", Key: "default"}
	w.AutomountServiceAccountToken = ptr(false)
	w.DNSPolicy = "ClusterFirst"
	w.HostNetwork = ptr(false)
	w.ImagePullSecrets = []string{"regcred"}
	w.NodeSelector = map[string]string{"pool": "batch"}
	w.Parallelism = ptr(int64(4))
	w.PodGC = &model.PodGC{Strategy: "OnPodSuccess"}
	w.PodPriorityClassName = "low"
	w.PodSpecPatch = "{}"
	w.Priority = ptr(int32(5))
	w.RetryStrategy = &model.RetryStrategy{Limit: "3"}
	w.SchedulerName = "volcano"
	w.ServiceAccountName = "argo-runner"
	w.Shutdown = "Stop"
	w.SuspendOnSubmit = ptr(false)
	w.TTLStrategy = &model.TTLStrategy{SecondsAfterCompletion: ptr(int32(60))}

	work, err := task.New(nil, "work", task.WithImage("alpine"))
	require.NoError(t, err)
	cleanup, err := task.New(nil, "cleanup", task.WithImage("alpine"))
	require.NoError(t, err)
	w.AddTask(work)
	w.OnExitTask(cleanup)
	return w
}

func TestRoundTripThroughJSONAndYAML(t *testing.T) {
	w := fullySetWorkflow(t)
	built, err := w.Build()
	require.NoError(t, err)
	assert.Nil(t, built.Spec.VolumeClaimTemplates)
	assert.Nil(t, built.Spec.Volumes)

	decoders := map[string]func() (*model.Workflow, error){
		"json": func() (*model.Workflow, error) {
			b, err := w.ToJSON()
			if err != nil {
				return nil, err
			}
			var m model.Workflow
			return &m, json.Unmarshal(b, &m)
		},
		"yaml": func() (*model.Workflow, error) {
			b, err := w.ToYAML()
			if err != nil {
				return nil, err
			}
			var m model.Workflow
			return &m, yaml.Unmarshal(b, &m)
		},
	}

	for name, decode := range decoders {
		t.Run(name, func(t *testing.T) {
			m, err := decode()
			require.NoError(t, err)
			if diff := cmp.Diff(built, m, cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("decoded workflow differs (-built +decoded):\n%s", diff)
			}

			back, err := FromModel(m)
			require.NoError(t, err)
			assert.Equal(t, "nightly", back.Name)
			assert.Equal(t, "nightly", back.DAG.Name)
			assert.Equal(t, "cleanup", back.OnExitName())
			assert.Equal(t, w.ActiveDeadlineSeconds, back.ActiveDeadlineSeconds)
			assert.Equal(t, w.ArchiveLogs, back.ArchiveLogs)
			assert.Equal(t, w.Affinity, back.Affinity)
			assert.Equal(t, w.ArtifactRepositoryRef, back.ArtifactRepositoryRef)
			assert.Equal(t, w.AutomountServiceAccountToken, back.AutomountServiceAccountToken)
			assert.Equal(t, w.DNSPolicy, back.DNSPolicy)
			assert.Equal(t, w.HostNetwork, back.HostNetwork)
			assert.Equal(t, w.ImagePullSecrets, back.ImagePullSecrets)
			assert.Equal(t, w.Labels, back.Labels)
			assert.Equal(t, w.Metrics, back.Metrics)
			assert.Equal(t, w.NodeSelector, back.NodeSelector)
			assert.Equal(t, w.Parallelism, back.Parallelism)
			assert.Equal(t, w.PodGC, back.PodGC)
			assert.Equal(t, w.PodPriorityClassName, back.PodPriorityClassName)
			assert.Equal(t, w.PodSpecPatch, back.PodSpecPatch)
			assert.Equal(t, w.Priority, back.Priority)
			assert.Equal(t, w.RetryStrategy, back.RetryStrategy)
			assert.Equal(t, w.SchedulerName, back.SchedulerName)
			assert.Equal(t, w.ServiceAccountName, back.ServiceAccountName)
			assert.Equal(t, w.Shutdown, back.Shutdown)
			assert.Equal(t, w.SuspendOnSubmit, back.SuspendOnSubmit)
			assert.Equal(t, w.TTLStrategy, back.TTLStrategy)
			assert.Equal(t, w.VolumeClaimGC, back.VolumeClaimGC)

			p, err := back.GetParameter("date")
			require.NoError(t, err)
			assert.Equal(t, "{{workflow.parameters.date}}", p.Value)
		})
	}
}

func TestToMapOmitsUnsetFields(t *testing.T) {
	w, err := New("etl", "")
	require.NoError(t, err)
	m, err := w.ToMap()
	require.NoError(t, err)

	spec, ok := m["spec"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "etl", spec["entrypoint"])
	assert.NotContains(t, spec, "parallelism")
	assert.NotContains(t, spec, "onExit")
	assert.NotContains(t, m, "status")
}

func TestFingerprintStableAcrossStamp(t *testing.T) {
	m, err := fullySetWorkflow(t).Build()
	require.NoError(t, err)

	fp, err := Fingerprint(m)
	require.NoError(t, err)
	assert.Len(t, fp, 64)

	stamped, err := Stamp(m)
	require.NoError(t, err)
	assert.Equal(t, fp, stamped)
	assert.Equal(t, fp, m.Metadata.Annotations[FingerprintAnnotation])

	again, err := Fingerprint(m)
	require.NoError(t, err)
	assert.Equal(t, fp, again)

	m.Spec.Parallelism = ptr(int64(1))
	changed, err := Fingerprint(m)
	require.NoError(t, err)
	assert.NotEqual(t, fp, changed)
}

func TestDefaultsApply(t *testing.T) {
	w, err := New("etl", "", WithDefaults(Defaults{
		APIVersion:         "argoproj.io/v1beta1",
		Namespace:          "argo",
		ServiceAccountName: "runner",
	}))
	require.NoError(t, err)
	assert.Equal(t, "argoproj.io/v1beta1", w.APIVersion)
	assert.Equal(t, "argo", w.Namespace)
	assert.Equal(t, "runner", w.ServiceAccountName)

	w.ServiceAccountName = "custom"
	Defaults{ServiceAccountName: "runner"}.Apply(w)
	assert.Equal(t, "custom", w.ServiceAccountName)
}
