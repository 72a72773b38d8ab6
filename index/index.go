package index

import (
	"context"
	"hash/fnv"
	"math"
	"sort"

	"github.com/vinayprograms/jobmatch/catalog"
	"github.com/vinayprograms/jobmatch/embedding"
	"github.com/vinayprograms/jobmatch/errors"
)

// Entry is one (job posting, vector) pair.
type Entry struct {
	JobID  string    `json:"job_id"`
	Vector []float32 `json:"vector"`
}

// Hit is a search result: a posting ID with its raw cosine distance.
type Hit struct {
	JobID    string
	Distance float64
}

// SemanticIndex holds the embedded catalog. Immutable after Build or Load.
type SemanticIndex struct {
	entries     []Entry
	dimension   int
	fingerprint uint64
}

// Build embeds every posting's description text and assembles the index.
// Fails with INDEX_BUILD_FAILED if the catalog is empty or any embedding
// call fails; an index with zero entries is never produced.
func Build(ctx context.Context, provider embedding.Provider, cat *catalog.Catalog) (*SemanticIndex, error) {
	if cat == nil || cat.Len() == 0 {
		return nil, errors.IndexBuild("catalog is empty, refusing to build a zero-entry index")
	}

	postings := cat.Postings()
	texts := make([]string, len(postings))
	for i := range postings {
		texts[i] = postings[i].DescriptionText()
	}

	vectors, err := provider.Embed(ctx, texts)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCodeIndexBuild, "failed to embed catalog")
	}
	if err := embedding.ValidateBatch(texts, vectors); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCodeIndexBuild, "embedding output malformed")
	}

	entries := make([]Entry, len(postings))
	for i := range postings {
		entries[i] = Entry{JobID: postings[i].ID, Vector: vectors[i]}
	}

	return &SemanticIndex{
		entries:     entries,
		dimension:   len(vectors[0]),
		fingerprint: Fingerprint(cat),
	}, nil
}

// Len returns the number of indexed postings.
func (idx *SemanticIndex) Len() int {
	return len(idx.entries)
}

// Dimension returns the vector dimension of the index.
func (idx *SemanticIndex) Dimension() int {
	return idx.dimension
}

// Search returns the k entries closest to query by cosine distance,
// ascending (closest first). Distance ties break by ascending job ID so
// results are stable across invocations. If k exceeds the index size, all
// entries are returned.
func (idx *SemanticIndex) Search(query []float32, k int) ([]Hit, error) {
	if len(idx.entries) == 0 {
		return nil, errors.EmptyIndex("search against an index with no entries")
	}
	if k < 1 {
		return nil, errors.InvalidInput("k must be >= 1")
	}
	if len(query) != idx.dimension {
		return nil, errors.Newf(errors.ErrCodeInvalidInput,
			"query vector has dimension %d, index has %d", len(query), idx.dimension)
	}

	hits := make([]Hit, len(idx.entries))
	for i := range idx.entries {
		hits[i] = Hit{
			JobID:    idx.entries[i].JobID,
			Distance: CosineDistance(query, idx.entries[i].Vector),
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].JobID < hits[j].JobID
	})

	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

// CosineDistance computes 1 - cosine_similarity(a, b), in [0, 2].
// Zero-norm vectors are treated as maximally distant.
func CosineDistance(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 1
	}
	return 1 - dot/denom
}

// Fingerprint computes a stable FNV-1a digest of the catalog content the
// index is derived from: posting IDs and their description texts, in
// dataset order. A persisted index is only valid against a catalog with
// the same fingerprint.
func Fingerprint(cat *catalog.Catalog) uint64 {
	h := fnv.New64a()
	for _, p := range cat.Postings() {
		h.Write([]byte(p.ID))
		h.Write([]byte{0})
		h.Write([]byte(p.DescriptionText()))
		h.Write([]byte{0})
	}
	return h.Sum64()
}
