package overpass

import (
	"math"
	"slices"

	"github.com/couchcryptid/sardis-lake-service/internal/domain"
)

// Tolerance is the endpoint distance, in degrees, under which two way ends
// are treated as the same node (about 10 m).
const Tolerance = 0.0001

// StitchRings greedily joins way segments whose endpoints meet, trying
// end-to-start, end-to-end, start-to-end and start-to-start in that order,
// and repeats until no pair can be merged. Segments are not modified.
func StitchRings(segments [][]domain.Position) [][]domain.Position {
	work := make([][]domain.Position, 0, len(segments))
	for _, s := range segments {
		if len(s) > 0 {
			work = append(work, slices.Clone(s))
		}
	}

	for merged := true; merged; {
		merged = false
		for i := 0; i < len(work) && !merged; i++ {
			if isClosed(work[i]) {
				continue
			}
			for j := i + 1; j < len(work); j++ {
				if isClosed(work[j]) {
					continue
				}
				if joined, ok := join(work[i], work[j]); ok {
					work[i] = joined
					work = slices.Delete(work, j, j+1)
					merged = true
					break
				}
			}
		}
	}
	return work
}

func join(a, b []domain.Position) ([]domain.Position, bool) {
	aStart, aEnd := a[0], a[len(a)-1]
	bStart, bEnd := b[0], b[len(b)-1]

	switch {
	case samePoint(aEnd, bStart):
		return append(a, b[1:]...), true
	case samePoint(aEnd, bEnd):
		return append(a, reversed(b)[1:]...), true
	case samePoint(aStart, bEnd):
		return append(slices.Clone(b), a[1:]...), true
	case samePoint(aStart, bStart):
		return append(reversed(b), a[1:]...), true
	default:
		return nil, false
	}
}

func reversed(s []domain.Position) []domain.Position {
	out := slices.Clone(s)
	slices.Reverse(out)
	return out
}

func isClosed(s []domain.Position) bool {
	return len(s) >= 4 && samePoint(s[0], s[len(s)-1])
}

func samePoint(a, b domain.Position) bool {
	return math.Abs(a[0]-b[0]) <= Tolerance && math.Abs(a[1]-b[1]) <= Tolerance
}
