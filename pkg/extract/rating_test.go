package extract

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRating(t *testing.T) {
	tests := []struct {
		name  string
		style string
		want  int // -1 means nil expected
	}{
		{"empty style", "", -1},
		{"no width", "color: red;", -1},
		{"plain percent full", "width: 100%;", 5},
		{"plain percent four stars", "width: 80%;", 4},
		{"plain percent three stars", "width:60%", 3},
		{"half maps to three", "width: 50%;", 3}, // 2.5 rounds half up
		{"calc form", "width: calc(100% - 2px);", 5},
		{"calc form two stars", "width: calc(40% - 2px);", 2},
		{"fractional percent", "width: 90.5%;", 5},
		{"rounds half up", "width: 70%;", 4}, // 3.5 stars
		{"mixed case", "WIDTH: 20%;", 1},
		{"zero clamps to one", "width: 0%;", 1},
		{"overflow clamps to five", "width: 120%;", 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeRating(tt.style)
			if tt.want < 0 {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestDecodeRating_AlwaysInRange(t *testing.T) {
	for pct := 0; pct <= 100; pct++ {
		got := DecodeRating(fmt.Sprintf("width: calc(%d%% - 2px);", pct))
		require.NotNil(t, got, "pct %d", pct)
		assert.GreaterOrEqual(t, *got, 1, "pct %d", pct)
		assert.LessOrEqual(t, *got, 5, "pct %d", pct)
	}
}

func TestDecodeRatings_PreservesOrderAndGaps(t *testing.T) {
	got := DecodeRatings([]string{"width: 100%;", "", "width: 20%;"})

	require.Len(t, got, 3)
	require.NotNil(t, got[0])
	assert.Equal(t, 5, *got[0])
	assert.Nil(t, got[1])
	require.NotNil(t, got[2])
	assert.Equal(t, 1, *got[2])
}
