package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr error
	}{
		{name: "valid", header: "Bearer abc123", want: "abc123"},
		{name: "padded", header: "Bearer   abc123  ", want: "abc123"},
		{name: "lower case scheme", header: "bearer abc123", want: "abc123"},
		{name: "missing", header: "", wantErr: ErrNoCredentials},
		{name: "basic scheme", header: "Basic abc123", wantErr: ErrScheme},
		{name: "scheme only", header: "Bearer", wantErr: ErrNoCredentials},
		{name: "empty token", header: "Bearer    ", wantErr: ErrNoCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BearerToken(tt.header)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKeyringAuthenticate(t *testing.T) {
	k := NewKeyring([]TokenConfig{
		{Token: "compile-token", Scopes: []string{"compile", " "}},
		{Token: "admin-token", Scopes: []string{ScopeAll}},
		{Token: "", Scopes: []string{ScopeAll}},
	})
	assert.Equal(t, 2, k.Len())

	p, ok := k.Authenticate("compile-token")
	require.True(t, ok)
	assert.True(t, p.Allows("compile"))
	assert.False(t, p.Allows("lint"))
	assert.Len(t, p.Scopes, 1)
	assert.Len(t, p.ID, 8)
	assert.NotContains(t, p.ID, "compile")

	admin, ok := k.Authenticate("admin-token")
	require.True(t, ok)
	assert.True(t, admin.Allows("lint"))
	assert.NotEqual(t, p.ID, admin.ID)

	_, ok = k.Authenticate("compile-tokex")
	assert.False(t, ok)
	_, ok = k.Authenticate("")
	assert.False(t, ok)

	var empty *Keyring
	_, ok = empty.Authenticate("admin-token")
	assert.False(t, ok)
}

func TestPrincipalContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	ctx := NewContext(context.Background(), Principal{ID: "abcd1234"})
	p, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "abcd1234", p.ID)
	assert.True(t, p.Allows())
	assert.False(t, p.Allows("compile"))
}
