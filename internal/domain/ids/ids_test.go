package ids

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewULID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := NewULID()
		require.NoError(t, err)
		require.Len(t, id, 26)
		assert.False(t, seen[id], "duplicate ULID generated: %s", id)
		seen[id] = true
	}
}

func TestIsULID(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{"valid", "01HQZX3Y4K6F7G8H9J0K1M2N3P", true},
		{"lowercase", "01hqzx3y4k6f7g8h9j0k1m2n3p", true},
		{"padded", "  01HQZX3Y4K6F7G8H9J0K1M2N3P ", true},
		{"empty", "", false},
		{"too short", "01HQZX3Y4K", false},
		{"invalid chars", "01HQZX3Y4K6F7G8H9J0K1M2NIL", false},
		{"timestamp id", "1714503812345", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsULID(tt.value))
		})
	}
}

func TestValidateULID(t *testing.T) {
	require.NoError(t, ValidateULID(MustNewULID()))
	assert.ErrorIs(t, ValidateULID("not-a-ulid"), ErrInvalidULID)
}
