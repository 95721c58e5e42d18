package model

// ObjectMeta is the subset of Kubernetes object metadata the engine uses.
type ObjectMeta struct {
	Name              string            `json:"name,omitempty" yaml:"name,omitempty"`
	GenerateName      string            `json:"generateName,omitempty" yaml:"generateName,omitempty"`
	Namespace         string            `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	UID               string            `json:"uid,omitempty" yaml:"uid,omitempty"`
	ResourceVersion   string            `json:"resourceVersion,omitempty" yaml:"resourceVersion,omitempty"`
	CreationTimestamp string            `json:"creationTimestamp,omitempty" yaml:"creationTimestamp,omitempty"`
	Labels            map[string]string `json:"labels,omitempty" yaml:"labels,omitempty"`
	Annotations       map[string]string `json:"annotations,omitempty" yaml:"annotations,omitempty"`
}

// PersistentVolumeClaim is a claim template created once per workflow run.
type PersistentVolumeClaim struct {
	Metadata ObjectMeta                `json:"metadata" yaml:"metadata"`
	Spec     PersistentVolumeClaimSpec `json:"spec" yaml:"spec"`
}

// PersistentVolumeClaimSpec describes the requested storage.
type PersistentVolumeClaimSpec struct {
	AccessModes      []string             `json:"accessModes,omitempty" yaml:"accessModes,omitempty"`
	Resources        ResourceRequirements `json:"resources" yaml:"resources"`
	StorageClassName *string              `json:"storageClassName,omitempty" yaml:"storageClassName,omitempty"`
	VolumeMode       string               `json:"volumeMode,omitempty" yaml:"volumeMode,omitempty"`
}

// Volume is a standing volume mounted into workflow pods.
type Volume struct {
	Name                  string                             `json:"name" yaml:"name"`
	PersistentVolumeClaim *PersistentVolumeClaimVolumeSource `json:"persistentVolumeClaim,omitempty" yaml:"persistentVolumeClaim,omitempty"`
	EmptyDir              *EmptyDirVolumeSource              `json:"emptyDir,omitempty" yaml:"emptyDir,omitempty"`
	ConfigMap             *ConfigMapVolumeSource             `json:"configMap,omitempty" yaml:"configMap,omitempty"`
	Secret                *SecretVolumeSource                `json:"secret,omitempty" yaml:"secret,omitempty"`
}

// PersistentVolumeClaimVolumeSource references an existing claim.
type PersistentVolumeClaimVolumeSource struct {
	ClaimName string `json:"claimName" yaml:"claimName"`
	ReadOnly  bool   `json:"readOnly,omitempty" yaml:"readOnly,omitempty"`
}

// EmptyDirVolumeSource is scratch space that lives as long as the pod.
type EmptyDirVolumeSource struct {
	Medium    string `json:"medium,omitempty" yaml:"medium,omitempty"`
	SizeLimit string `json:"sizeLimit,omitempty" yaml:"sizeLimit,omitempty"`
}

// ConfigMapVolumeSource projects a config map into a volume.
type ConfigMapVolumeSource struct {
	Name     string `json:"name" yaml:"name"`
	Optional bool   `json:"optional,omitempty" yaml:"optional,omitempty"`
}

// SecretVolumeSource projects a secret into a volume.
type SecretVolumeSource struct {
	SecretName string `json:"secretName" yaml:"secretName"`
	Optional   bool   `json:"optional,omitempty" yaml:"optional,omitempty"`
}

// VolumeMount mounts a named volume into a container.
type VolumeMount struct {
	Name      string `json:"name" yaml:"name"`
	MountPath string `json:"mountPath" yaml:"mountPath"`
	ReadOnly  bool   `json:"readOnly,omitempty" yaml:"readOnly,omitempty"`
	SubPath   string `json:"subPath,omitempty" yaml:"subPath,omitempty"`
}

// ResourceRequirements are container or claim resource quantities.
type ResourceRequirements struct {
	Limits   map[string]string `json:"limits,omitempty" yaml:"limits,omitempty"`
	Requests map[string]string `json:"requests,omitempty" yaml:"requests,omitempty"`
}
