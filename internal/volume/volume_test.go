package volume

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionByKind(t *testing.T) {
	vols := []Volume{
		ClaimTemplate{Name: "work", Size: "1Gi", StorageClass: "fast"},
		Existing{Name: "shared", ClaimName: "team-shared", ReadOnly: true},
		EmptyDir{Name: "scratch", Medium: "Memory"},
		Secret{Name: "creds"},
		ConfigMap{Name: "settings", ConfigMapName: "app-settings"},
	}

	claims := Claims(vols)
	require.Len(t, claims, 1)
	assert.Equal(t, "work", claims[0].Metadata.Name)
	assert.Equal(t, []string{DefaultAccessMode}, claims[0].Spec.AccessModes)
	assert.Equal(t, "1Gi", claims[0].Spec.Resources.Requests["storage"])
	require.NotNil(t, claims[0].Spec.StorageClassName)
	assert.Equal(t, "fast", *claims[0].Spec.StorageClassName)

	standing := Standing(vols)
	require.Len(t, standing, 1)
	assert.Equal(t, "team-shared", standing[0].PersistentVolumeClaim.ClaimName)

	pod := PodVolumes(vols)
	require.Len(t, pod, 3)
	assert.Equal(t, "Memory", pod[0].EmptyDir.Medium)
	assert.Equal(t, "creds", pod[1].Secret.SecretName)
	assert.Equal(t, "app-settings", pod[2].ConfigMap.Name)

	mounts := Mounts(vols)
	require.Len(t, mounts, 5)
	assert.Equal(t, "/mnt/work", mounts[0].MountPath)
	assert.True(t, mounts[1].ReadOnly)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate([]Volume{ClaimTemplate{Name: "a", Size: "1Gi"}, EmptyDir{Name: "b"}}))
	assert.ErrorContains(t, Validate([]Volume{EmptyDir{}}), "name is required")
	assert.ErrorContains(t, Validate([]Volume{EmptyDir{Name: "a"}, Secret{Name: "a"}}), "duplicate volume name")
	assert.ErrorContains(t, Validate([]Volume{ClaimTemplate{Name: "a"}}), "requires a size")
}
