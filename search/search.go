// Package search provides BM25 keyword search over the job catalog. It
// complements the semantic index: where the pipeline ranks a resume
// against every posting, keyword search answers ad-hoc queries like
// "kubernetes berlin" directly.
package search

import (
	"fmt"
	"os"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/vinayprograms/jobmatch/catalog"
	"github.com/vinayprograms/jobmatch/errors"
)

// JobIndex is a full-text index over catalog postings.
type JobIndex struct {
	index bleve.Index
}

// jobDocument is the indexed shape of a posting.
type jobDocument struct {
	Title            string   `json:"title"`
	Location         string   `json:"location"`
	Responsibilities string   `json:"responsibilities"`
	Skills           []string `json:"skills"`
}

// Hit is one keyword search result. Score is the raw BM25 score and is
// only comparable within a single result list.
type Hit struct {
	JobID    string  `json:"job_id"`
	Title    string  `json:"title"`
	Location string  `json:"location"`
	Score    float64 `json:"score"`
}

// NewJobIndex indexes every posting in the catalog. An empty path keeps
// the index in memory; otherwise it is persisted at path.
func NewJobIndex(cat *catalog.Catalog, path string) (*JobIndex, error) {
	if cat == nil || cat.Len() == 0 {
		return nil, errors.InvalidInput("catalog is empty")
	}

	var index bleve.Index
	var err error

	if path == "" {
		index, err = bleve.NewMemOnly(buildIndexMapping())
	} else if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		index, err = bleve.New(path, buildIndexMapping())
	} else {
		index, err = bleve.Open(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open keyword index: %w", err)
	}

	batch := index.NewBatch()
	for _, p := range cat.Postings() {
		doc := jobDocument{
			Title:            p.Title,
			Location:         p.Location,
			Responsibilities: strings.Join(p.Responsibilities, " "),
			Skills:           p.RequiredSkills(),
		}
		if err := batch.Index(p.ID, doc); err != nil {
			index.Close()
			return nil, fmt.Errorf("failed to index posting %s: %w", p.ID, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		index.Close()
		return nil, fmt.Errorf("failed to index catalog: %w", err)
	}

	return &JobIndex{index: index}, nil
}

// buildIndexMapping creates the Bleve index mapping for postings.
func buildIndexMapping() mapping.IndexMapping {
	jobMapping := bleve.NewDocumentMapping()

	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = standard.Name

	keywordFieldMapping := bleve.NewKeywordFieldMapping()

	jobMapping.AddFieldMappingsAt("title", textFieldMapping)
	jobMapping.AddFieldMappingsAt("location", textFieldMapping)
	jobMapping.AddFieldMappingsAt("responsibilities", textFieldMapping)
	jobMapping.AddFieldMappingsAt("skills", keywordFieldMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = jobMapping
	indexMapping.DefaultAnalyzer = standard.Name

	return indexMapping
}

// Search runs a free-text query and returns up to limit hits in
// descending score order.
func (j *JobIndex) Search(queryText string, limit int) ([]Hit, error) {
	queryText = strings.TrimSpace(queryText)
	if queryText == "" {
		return nil, errors.InvalidInput("query is empty")
	}
	if limit <= 0 {
		limit = 10
	}

	// Skills are indexed verbatim, so an exact lowercase term matches
	// them while the match query covers the analyzed text fields.
	matchQuery := bleve.NewMatchQuery(queryText)
	skillQuery := bleve.NewTermQuery(strings.ToLower(queryText))
	skillQuery.SetField("skills")
	searchQuery := bleve.NewDisjunctionQuery(matchQuery, skillQuery)

	searchReq := bleve.NewSearchRequest(searchQuery)
	searchReq.Size = limit
	searchReq.Fields = []string{"title", "location"}

	result, err := j.index.Search(searchReq)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	hits := make([]Hit, 0, len(result.Hits))
	for _, h := range result.Hits {
		hit := Hit{
			JobID: h.ID,
			Score: h.Score,
		}
		if v, ok := h.Fields["title"].(string); ok {
			hit.Title = v
		}
		if v, ok := h.Fields["location"].(string); ok {
			hit.Location = v
		}
		hits = append(hits, hit)
	}

	return hits, nil
}

// Count returns the number of indexed postings.
func (j *JobIndex) Count() (uint64, error) {
	return j.index.DocCount()
}

// Close closes the underlying index.
func (j *JobIndex) Close() error {
	return j.index.Close()
}
