package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thenoetrevino/handla/internal/board"
	listservice "github.com/thenoetrevino/handla/internal/services/list"
)

// ============================================================================
// Store Parsing Tests
// ============================================================================

func TestParseStore(t *testing.T) {
	tests := []struct {
		in      string
		want    board.StoreKey
		wantErr bool
	}{
		{"", "", false},
		{"willys", board.StoreWillys, false},
		{" Hemkop ", board.StoreHemkop, false},
		{"ica", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStore(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, listservice.ErrInvalidStore))
				assert.Contains(t, err.Error(), "willys")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// ============================================================================
// Selection Parsing Tests
// ============================================================================

func TestParseSelection(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []int
		wantErr bool
	}{
		{"empty selects all", "", nil, false},
		{"single", "2", []int{1}, false},
		{"list", "1,3", []int{0, 2}, false},
		{"range", "2-4", []int{1, 2, 3}, false},
		{"mixed with spaces", " 1, 3-4 ", []int{0, 2, 3}, false},
		{"zero", "0", nil, true},
		{"negative", "-1", nil, true},
		{"reversed range", "4-2", nil, true},
		{"garbage", "a", nil, true},
		{"only commas", ",,", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSelection(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "abc", ShortID("abc"))
	assert.Equal(t, "12345678", ShortID("123456789abc"))
}
