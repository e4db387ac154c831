package overpass

import (
	"testing"

	"github.com/couchcryptid/sardis-lake-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pos = domain.Position

func TestStitchRings(t *testing.T) {
	tests := []struct {
		name     string
		segments [][]pos
		want     [][]pos
	}{
		{
			name:     "end to start",
			segments: [][]pos{{{0, 0}, {1, 0}}, {{1, 0}, {1, 1}}},
			want:     [][]pos{{{0, 0}, {1, 0}, {1, 1}}},
		},
		{
			name:     "end to end reverses second",
			segments: [][]pos{{{0, 0}, {1, 0}}, {{1, 1}, {1, 0}}},
			want:     [][]pos{{{0, 0}, {1, 0}, {1, 1}}},
		},
		{
			name:     "start to end prepends second",
			segments: [][]pos{{{1, 0}, {1, 1}}, {{0, 0}, {1, 0}}},
			want:     [][]pos{{{0, 0}, {1, 0}, {1, 1}}},
		},
		{
			name:     "start to start prepends reversed second",
			segments: [][]pos{{{1, 0}, {1, 1}}, {{1, 0}, {0, 0}}},
			want:     [][]pos{{{0, 0}, {1, 0}, {1, 1}}},
		},
		{
			name:     "within tolerance",
			segments: [][]pos{{{0, 0}, {1, 0}}, {{1.00005, 0.00005}, {1, 1}}},
			want:     [][]pos{{{0, 0}, {1, 0}, {1, 1}}},
		},
		{
			name:     "beyond tolerance stays apart",
			segments: [][]pos{{{0, 0}, {1, 0}}, {{1.001, 0}, {1, 1}}},
			want:     [][]pos{{{0, 0}, {1, 0}}, {{1.001, 0}, {1, 1}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StitchRings(tt.segments))
		})
	}
}

func TestStitchRings_OutOfOrderSegmentsCloseRing(t *testing.T) {
	segments := [][]pos{
		{{0, 0}, {1, 0}},
		{{1, 1}, {0, 1}},
		{{0, 1}, {0, 0}},
		{{1, 1}, {1, 0}},
	}

	rings := StitchRings(segments)

	require.Len(t, rings, 1)
	ring := rings[0]
	assert.Len(t, ring, 5)
	assert.True(t, isClosed(ring))
}

func TestStitchRings_TwoIslands(t *testing.T) {
	segments := [][]pos{
		{{0, 0}, {1, 0}, {1, 1}},
		{{5, 5}, {6, 5}},
		{{1, 1}, {0, 0}},
		{{6, 5}, {6, 6}, {5, 5}},
	}

	rings := StitchRings(segments)

	require.Len(t, rings, 2)
	for _, r := range rings {
		assert.True(t, isClosed(r))
	}
}

func TestStitchRings_DoesNotModifyInput(t *testing.T) {
	a := []pos{{0, 0}, {1, 0}}
	b := []pos{{1, 1}, {1, 0}}

	StitchRings([][]pos{a, b})

	assert.Equal(t, []pos{{0, 0}, {1, 0}}, a)
	assert.Equal(t, []pos{{1, 1}, {1, 0}}, b)
}
