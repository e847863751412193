package security

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticVerifier(t *testing.T) {
	v := NewStaticVerifier(map[string]string{
		"analyst": "open-sesame",
		"ops":     "hunter2",
	}, nil)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
		want     bool
	}{
		{name: "valid credentials", username: "analyst", password: "open-sesame", want: true},
		{name: "second valid user", username: "ops", password: "hunter2", want: true},
		{name: "wrong password", username: "analyst", password: "open-sesam", want: false},
		{name: "unknown user", username: "intruder", password: "open-sesame", want: false},
		{name: "empty password", username: "analyst", password: "", want: false},
		{name: "empty username", username: "", password: "open-sesame", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, v.Verify(ctx, tt.username, tt.password))
		})
	}
}

func TestScryptVerifier(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.yml")
	err := WriteCredentialsFile(path, map[string]string{
		"analyst": "open-sesame",
	})
	require.NoError(t, err)

	v, err := NewScryptVerifier(path, nil)
	require.NoError(t, err)
	ctx := context.Background()

	assert.True(t, v.Verify(ctx, "analyst", "open-sesame"))
	assert.False(t, v.Verify(ctx, "analyst", "wrong"))
	assert.False(t, v.Verify(ctx, "nobody", "open-sesame"))
}

func TestNewScryptVerifier_MissingFile(t *testing.T) {
	_, err := NewScryptVerifier(filepath.Join(t.TempDir(), "absent.yml"), nil)
	assert.Error(t, err)
}

func TestNewScryptVerifier_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("users: [not, a, map]"), 0600))

	_, err := NewScryptVerifier(path, nil)
	assert.Error(t, err)
}

func TestHashCredential_UniqueSalts(t *testing.T) {
	salt1, key1, err := HashCredential("same-password")
	require.NoError(t, err)
	salt2, key2, err := HashCredential("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, salt1, salt2)
	assert.NotEqual(t, key1, key2)
}
