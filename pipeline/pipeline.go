package pipeline

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/vinayprograms/jobmatch/catalog"
	"github.com/vinayprograms/jobmatch/embedding"
	"github.com/vinayprograms/jobmatch/errors"
	"github.com/vinayprograms/jobmatch/index"
	"github.com/vinayprograms/jobmatch/logging"
	"github.com/vinayprograms/jobmatch/scoring"
)

// defaultRetrievalK is the shortlist size when top_n is small. Retrieval
// over-fetches relative to top_n so ranking has room to reorder.
const defaultRetrievalK = 5

// Config configures a Pipeline.
type Config struct {
	// Catalog is the posting set to match against. Required.
	Catalog *catalog.Catalog

	// Provider embeds postings and resumes. Required.
	Provider embedding.Provider

	// Experience overrides the baseline experience signal (optional).
	Experience scoring.ExperienceFunc

	// IndexPath, when set, persists the built index and loads it on
	// later starts instead of re-embedding the catalog.
	IndexPath string

	// Logger defaults to a fresh logging.New().
	Logger *logging.Logger
}

// Pipeline is the matching engine's entry point. Create once, share
// across requests.
type Pipeline struct {
	cat      *catalog.Catalog
	provider embedding.Provider
	engine   *scoring.Engine
	log      *logging.Logger

	indexPath string
	buildOnce sync.Once
	idx       *index.SemanticIndex
	buildErr  error
}

// New creates a pipeline. The index is not built yet; it materializes on
// the first call to Analyze (or an explicit Warm).
func New(cfg Config) (*Pipeline, error) {
	if cfg.Catalog == nil {
		return nil, errors.InvalidInput("catalog is required")
	}
	if cfg.Provider == nil {
		return nil, errors.InvalidInput("embedding provider is required")
	}
	log := cfg.Logger
	if log == nil {
		log = logging.New()
	}
	return &Pipeline{
		cat:       cfg.Catalog,
		provider:  cfg.Provider,
		engine:    scoring.NewEngine(cfg.Catalog, cfg.Experience),
		log:       log.WithComponent("pipeline"),
		indexPath: cfg.IndexPath,
	}, nil
}

// Warm builds or loads the index eagerly so startup can fail fast
// instead of on the first request.
func (p *Pipeline) Warm(ctx context.Context) error {
	return p.ensureIndex(ctx)
}

// ensureIndex builds or loads the index exactly once. Concurrent first
// callers block on the same build; the outcome, success or failure, is
// permanent for the life of the pipeline.
func (p *Pipeline) ensureIndex(ctx context.Context) error {
	p.buildOnce.Do(func() {
		if p.indexPath != "" && index.Exists(p.indexPath) {
			idx, err := index.Load(p.indexPath, p.cat)
			if err != nil {
				p.buildErr = err
				return
			}
			p.idx = idx
			p.log.IndexLoaded(p.indexPath, idx.Len())
			return
		}

		start := time.Now()
		idx, err := index.Build(ctx, p.provider, p.cat)
		if err != nil {
			p.buildErr = err
			return
		}
		if p.indexPath != "" {
			if err := idx.Save(p.indexPath); err != nil {
				p.buildErr = err
				return
			}
		}
		p.idx = idx
		p.log.IndexBuilt(idx.Len(), time.Since(start))
	})
	return p.buildErr
}

// Retrieve embeds resumeText and returns the k nearest postings with raw
// distances. This is the approximate narrowing stage; it performs no
// scoring.
func (p *Pipeline) Retrieve(ctx context.Context, resumeText string, k int) ([]index.Hit, error) {
	if strings.TrimSpace(resumeText) == "" {
		return nil, errors.InvalidInput("resume text is empty")
	}
	if k < 1 {
		return nil, errors.InvalidInput("k must be >= 1")
	}
	if err := p.ensureIndex(ctx); err != nil {
		return nil, err
	}

	vectors, err := p.provider.Embed(ctx, []string{resumeText})
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCodeEmbedding, "failed to embed resume")
	}
	if err := embedding.ValidateBatch([]string{resumeText}, vectors); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCodeEmbedding, "resume embedding malformed")
	}

	return p.idx.Search(vectors[0], k)
}

// Analyze runs the full match: retrieval with k >= topN, then scoring
// and ranking. Identical inputs against an unchanged index produce an
// identical ordered result list.
func (p *Pipeline) Analyze(ctx context.Context, resumeText string, resumeSkills []string, topN int) ([]scoring.MatchResult, error) {
	if topN < 1 {
		return nil, errors.InvalidInput("top_n must be >= 1")
	}
	if strings.TrimSpace(resumeText) == "" {
		return nil, errors.InvalidInput("resume text is empty")
	}
	skills := catalog.NormalizeSkills(resumeSkills)
	if len(skills) == 0 {
		return nil, errors.InvalidInput("resume skills are empty")
	}

	start := time.Now()
	p.log.AnalyzeStart(len(resumeText), len(skills), topN)

	k := defaultRetrievalK
	if topN > k {
		k = topN
	}

	hits, err := p.Retrieve(ctx, resumeText, k)
	if err != nil {
		p.log.AnalyzeFailed(err, time.Since(start))
		return nil, err
	}

	resume := &scoring.ResumeProfile{
		RawText: resumeText,
		Skills:  skills,
	}

	results, err := p.engine.Rank(hits, resume, topN)
	if err != nil {
		p.log.AnalyzeFailed(err, time.Since(start))
		return nil, err
	}

	p.log.AnalyzeComplete(len(results), time.Since(start))
	return results, nil
}

// Catalog returns the catalog the pipeline serves.
func (p *Pipeline) Catalog() *catalog.Catalog {
	return p.cat
}
