package dag

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/mattjoyce/dagspec/internal/log"
	"github.com/mattjoyce/dagspec/internal/model"
)

// Graph is the flattened form of a DAG tree.
type Graph struct {
	Templates            []model.Template
	VolumeClaimTemplates []model.PersistentVolumeClaim
	Volumes              []model.Volume
}

// FlattenOptions tunes a Flatten pass.
type FlattenOptions struct {
	Logger *slog.Logger
}

// Flatten walks root depth-first in pre-order and collects, in one pass:
// each DAG's own template followed by its units' templates, then each nested
// DAG in unit order; and the claim templates and volumes declared by every
// unit, deduplicated by name with the last visited value winning.
func Flatten(root *DAG) (*Graph, error) {
	return FlattenWith(root, FlattenOptions{})
}

// FlattenWith is Flatten with explicit options.
func FlattenWith(root *DAG, opts FlattenOptions) (*Graph, error) {
	if root == nil {
		return nil, fmt.Errorf("flatten: nil dag")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.WithComponent("compiler")
	}
	f := &flattener{
		logger:  logger,
		claims:  NewResourceSet[model.PersistentVolumeClaim](),
		volumes: NewResourceSet[model.Volume](),
		owners:  make(map[string]string),
		onPath:  make(map[*DAG]bool),
		done:    make(map[*DAG]bool),
	}
	if err := f.visit(root); err != nil {
		return nil, err
	}
	logger.Debug("flattened dag",
		"root", root.Name,
		"templates", len(f.templates),
		"claims", f.claims.Len(),
		"volumes", f.volumes.Len(),
	)
	return &Graph{
		Templates:            f.templates,
		VolumeClaimTemplates: f.claims.Values(),
		Volumes:              f.volumes.Values(),
	}, nil
}

type flattener struct {
	logger    *slog.Logger
	templates []model.Template
	claims    *ResourceSet[model.PersistentVolumeClaim]
	volumes   *ResourceSet[model.Volume]
	owners    map[string]string
	path      []*DAG
	onPath    map[*DAG]bool
	done      map[*DAG]bool
}

func (f *flattener) visit(d *DAG) error {
	if f.onPath[d] {
		return fmt.Errorf("%w: %s", ErrCycle, f.cyclePath(d))
	}
	// A DAG shared by several units is emitted once, but its resources are
	// collected again so the last visit wins.
	if f.done[d] {
		f.logger.Debug("dag already flattened", "dag", d.Name)
		f.collect(d)
		return nil
	}
	f.onPath[d] = true
	f.path = append(f.path, d)
	defer func() {
		f.path = f.path[:len(f.path)-1]
		delete(f.onPath, d)
	}()

	tmpl, err := d.Template()
	if err != nil {
		return err
	}
	if err := f.addTemplate(d.Name, tmpl); err != nil {
		return err
	}

	for i, u := range d.tasks {
		t, err := u.BuildTemplate()
		if err != nil {
			return fmt.Errorf("dag %q tasks[%d] %q: %w", d.Name, i, u.Name(), err)
		}
		if t != nil {
			if err := f.addTemplate(d.Name, *t); err != nil {
				return err
			}
		}
		f.putResources(u)
	}

	f.logger.Debug("flattened dag level", "dag", d.Name, "depth", len(f.path), "tasks", len(d.tasks))

	for _, u := range d.tasks {
		if n := u.Nested(); n != nil {
			if err := f.visit(n); err != nil {
				return err
			}
		}
	}
	f.done[d] = true
	return nil
}

func (f *flattener) putResources(u Unit) {
	for _, c := range u.VolumeClaimTemplates() {
		f.claims.Put(c.Metadata.Name, c)
	}
	for _, v := range u.Volumes() {
		f.volumes.Put(v.Name, v)
	}
}

// collect re-walks an already flattened DAG for resources only, in the same
// order visit uses.
func (f *flattener) collect(d *DAG) {
	for _, u := range d.tasks {
		f.putResources(u)
	}
	for _, u := range d.tasks {
		if n := u.Nested(); n != nil {
			f.collect(n)
		}
	}
}

func (f *flattener) addTemplate(owner string, t model.Template) error {
	if prev, ok := f.owners[t.Name]; ok {
		return fmt.Errorf("template %q from dag %q already declared by dag %q: %w",
			t.Name, owner, prev, ErrDuplicateTemplate)
	}
	f.owners[t.Name] = owner
	f.templates = append(f.templates, t)
	return nil
}

func (f *flattener) cyclePath(d *DAG) string {
	start := 0
	for i, p := range f.path {
		if p == d {
			start = i
			break
		}
	}
	names := make([]string, 0, len(f.path)-start+1)
	for _, p := range f.path[start:] {
		names = append(names, p.Name)
	}
	names = append(names, d.Name)
	return strings.Join(names, " -> ")
}
