// Package facematch matches observed face embeddings against the gallery of
// enrolled embedding samples. Candidate lookup goes through an in-memory
// HNSW graph; the reported distance is always recomputed exactly.
package facematch

import (
	"errors"

	"github.com/coder/hnsw"
	"gonum.org/v1/gonum/floats"
)

// DefaultTolerance is the maximum embedding distance for a positive match,
// in normalized embedding space.
const DefaultTolerance = 0.6

// hnswMaxNeighbors is the M parameter of the HNSW graph.
const hnswMaxNeighbors = 16

// searchK is how many nearest candidates to pull from the graph per query.
// Several samples of the same person sit close together, so a handful of
// candidates is enough to find the true minimum.
const searchK = 8

// Match is the result of matching one observed embedding against the gallery.
type Match struct {
	UserID     string
	Name       string
	Distance   float64
	Confidence float64
}

// Confidence converts an embedding distance to the percentage reported to
// the attendance policy. Deliberately not clamped: distances above 1 yield
// negative confidence, matching the historical report format.
func Confidence(distance float64) float64 {
	return (1 - distance) * 100
}

type galleryEntry struct {
	userID    string
	name      string
	embedding []float32
}

// Gallery holds the flattened (owner, embedding) pairs of every enrolled
// sample. It is rebuilt from the enrollment store whenever a verification
// session starts; it is not safe for concurrent mutation.
type Gallery struct {
	tolerance float64
	entries   []galleryEntry
	graph     *hnsw.Graph[int]
}

// NewGallery creates an empty gallery. A non-positive tolerance falls back
// to DefaultTolerance.
func NewGallery(tolerance float64) *Gallery {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	g := hnsw.NewGraph[int]()
	g.M = hnswMaxNeighbors
	g.Ml = 1.0 / float64(hnswMaxNeighbors)
	g.Distance = hnsw.EuclideanDistance
	return &Gallery{
		tolerance: tolerance,
		graph:     g,
	}
}

// Add inserts all embedding samples of one enrolled user.
func (g *Gallery) Add(userID, name string, embeddings [][]float32) {
	for _, emb := range embeddings {
		if len(emb) == 0 {
			continue
		}
		id := len(g.entries)
		g.entries = append(g.entries, galleryEntry{
			userID:    userID,
			name:      name,
			embedding: emb,
		})
		g.graph.Add(hnsw.MakeNode(id, emb))
	}
}

// Size returns the number of embedding samples in the gallery.
func (g *Gallery) Size() int {
	return len(g.entries)
}

// Tolerance returns the configured match tolerance.
func (g *Gallery) Tolerance() float64 {
	return g.tolerance
}

// Match finds the enrolled user whose sample is nearest to the observed
// embedding. It returns nil and an error for an empty gallery, and
// (nil, nil) when the minimum distance exceeds the tolerance (an unknown
// face, not an error).
func (g *Gallery) Match(embedding []float32) (*Match, error) {
	if len(g.entries) == 0 {
		return nil, errors.New("gallery is empty")
	}

	k := searchK
	if k > len(g.entries) {
		k = len(g.entries)
	}
	neighbors := g.graph.Search(embedding, k)
	if len(neighbors) == 0 {
		return nil, nil
	}

	best := -1
	bestDist := 0.0
	for _, n := range neighbors {
		d := euclideanDistance(embedding, g.entries[n.Key].embedding)
		if best < 0 || d < bestDist {
			best = n.Key
			bestDist = d
		}
	}

	if bestDist > g.tolerance {
		return nil, nil
	}
	e := g.entries[best]
	return &Match{
		UserID:     e.userID,
		Name:       e.name,
		Distance:   bestDist,
		Confidence: Confidence(bestDist),
	}, nil
}

// euclideanDistance computes the exact L2 distance between two embeddings.
// The HNSW search is approximate; reported distances come from here.
func euclideanDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 2.0
	}
	av := make([]float64, len(a))
	bv := make([]float64, len(b))
	for i := range a {
		av[i] = float64(a[i])
		bv[i] = float64(b[i])
	}
	return floats.Distance(av, bv, 2)
}
