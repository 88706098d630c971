package ranker

import (
	"math"

	"github.com/amishk599/jobdigest/internal/model"
)

// Cosine returns the cosine similarity of a and b. Empty vectors, vectors of
// different length and zero vectors score 0.
func Cosine(a, b model.Vector) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
