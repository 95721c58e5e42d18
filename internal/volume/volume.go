// Package volume maps task volume declarations onto the three places the
// engine expects them: per-run claim templates and standing volumes at the
// workflow level, and pod-scoped volumes on the task's own template.
package volume

import (
	"fmt"

	"github.com/mattjoyce/dagspec/internal/model"
)

// DefaultAccessMode is used when a claim template declares no access modes.
const DefaultAccessMode = "ReadWriteOnce"

// Volume is a named volume mounted into a task container.
type Volume interface {
	VolumeName() string
	Mount() model.VolumeMount
}

// ClaimTemplate is a persistent volume claim created once per workflow run.
type ClaimTemplate struct {
	Name         string
	MountPath    string
	SubPath      string
	ReadOnly     bool
	Size         string
	StorageClass string
	AccessModes  []string
}

func (c ClaimTemplate) VolumeName() string { return c.Name }

func (c ClaimTemplate) Mount() model.VolumeMount {
	return mount(c.Name, c.MountPath, c.SubPath, c.ReadOnly)
}

// Claim renders the workflow-level claim template.
func (c ClaimTemplate) Claim() model.PersistentVolumeClaim {
	modes := c.AccessModes
	if len(modes) == 0 {
		modes = []string{DefaultAccessMode}
	}
	pvc := model.PersistentVolumeClaim{
		Metadata: model.ObjectMeta{Name: c.Name},
		Spec: model.PersistentVolumeClaimSpec{
			AccessModes: append([]string(nil), modes...),
			Resources: model.ResourceRequirements{
				Requests: map[string]string{"storage": c.Size},
			},
		},
	}
	if c.StorageClass != "" {
		sc := c.StorageClass
		pvc.Spec.StorageClassName = &sc
	}
	return pvc
}

// Existing mounts a claim that already exists in the namespace.
type Existing struct {
	Name      string
	ClaimName string
	MountPath string
	SubPath   string
	ReadOnly  bool
}

func (e Existing) VolumeName() string { return e.Name }

func (e Existing) Mount() model.VolumeMount {
	return mount(e.Name, e.MountPath, e.SubPath, e.ReadOnly)
}

// Volume renders the workflow-level standing volume.
func (e Existing) Volume() model.Volume {
	claim := e.ClaimName
	if claim == "" {
		claim = e.Name
	}
	return model.Volume{
		Name: e.Name,
		PersistentVolumeClaim: &model.PersistentVolumeClaimVolumeSource{
			ClaimName: claim,
			ReadOnly:  e.ReadOnly,
		},
	}
}

// EmptyDir is pod-scoped scratch space.
type EmptyDir struct {
	Name      string
	MountPath string
	Medium    string
	SizeLimit string
}

func (e EmptyDir) VolumeName() string { return e.Name }

func (e EmptyDir) Mount() model.VolumeMount { return mount(e.Name, e.MountPath, "", false) }

func (e EmptyDir) podVolume() model.Volume {
	return model.Volume{Name: e.Name, EmptyDir: &model.EmptyDirVolumeSource{Medium: e.Medium, SizeLimit: e.SizeLimit}}
}

// Secret projects a secret into the pod.
type Secret struct {
	Name       string
	SecretName string
	MountPath  string
	Optional   bool
}

func (s Secret) VolumeName() string { return s.Name }

func (s Secret) Mount() model.VolumeMount { return mount(s.Name, s.MountPath, "", true) }

func (s Secret) podVolume() model.Volume {
	name := s.SecretName
	if name == "" {
		name = s.Name
	}
	return model.Volume{Name: s.Name, Secret: &model.SecretVolumeSource{SecretName: name, Optional: s.Optional}}
}

// ConfigMap projects a config map into the pod.
type ConfigMap struct {
	Name          string
	ConfigMapName string
	MountPath     string
	Optional      bool
}

func (c ConfigMap) VolumeName() string { return c.Name }

func (c ConfigMap) Mount() model.VolumeMount { return mount(c.Name, c.MountPath, "", true) }

func (c ConfigMap) podVolume() model.Volume {
	name := c.ConfigMapName
	if name == "" {
		name = c.Name
	}
	return model.Volume{Name: c.Name, ConfigMap: &model.ConfigMapVolumeSource{Name: name, Optional: c.Optional}}
}

type podScoped interface {
	podVolume() model.Volume
}

func mount(name, path, subPath string, readOnly bool) model.VolumeMount {
	if path == "" {
		path = "/mnt/" + name
	}
	return model.VolumeMount{Name: name, MountPath: path, SubPath: subPath, ReadOnly: readOnly}
}

// Claims returns the claim templates declared in vols, in order.
func Claims(vols []Volume) []model.PersistentVolumeClaim {
	var out []model.PersistentVolumeClaim
	for _, v := range vols {
		if c, ok := v.(ClaimTemplate); ok {
			out = append(out, c.Claim())
		}
	}
	return out
}

// Standing returns the existing-claim volumes declared in vols, in order.
func Standing(vols []Volume) []model.Volume {
	var out []model.Volume
	for _, v := range vols {
		if e, ok := v.(Existing); ok {
			out = append(out, e.Volume())
		}
	}
	return out
}

// PodVolumes returns the pod-scoped volumes declared in vols, in order.
func PodVolumes(vols []Volume) []model.Volume {
	var out []model.Volume
	for _, v := range vols {
		if p, ok := v.(podScoped); ok {
			out = append(out, p.podVolume())
		}
	}
	return out
}

// Mounts returns one mount per volume, in order.
func Mounts(vols []Volume) []model.VolumeMount {
	var out []model.VolumeMount
	for _, v := range vols {
		out = append(out, v.Mount())
	}
	return out
}

// Validate checks that every volume is named and that names are unique.
func Validate(vols []Volume) error {
	seen := make(map[string]struct{}, len(vols))
	for i, v := range vols {
		name := v.VolumeName()
		if name == "" {
			return fmt.Errorf("volumes[%d]: name is required", i)
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("volumes[%d]: duplicate volume name %q", i, name)
		}
		seen[name] = struct{}{}
		if c, ok := v.(ClaimTemplate); ok && c.Size == "" {
			return fmt.Errorf("volumes[%d]: claim template %q requires a size", i, name)
		}
	}
	return nil
}
