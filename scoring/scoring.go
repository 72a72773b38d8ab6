package scoring

import (
	"sort"

	"github.com/vinayprograms/jobmatch/catalog"
	"github.com/vinayprograms/jobmatch/errors"
	"github.com/vinayprograms/jobmatch/index"
)

// Signal weights. They are applied identically to every candidate in a
// ranking call and sum to exactly 1.0.
const (
	WeightSemantic   = 0.5
	WeightSkill      = 0.3
	WeightExperience = 0.2
)

// DefaultExperienceBaseline is the experience score used when no real
// seniority computation is plugged in.
const DefaultExperienceBaseline = 0.8

// emptySkillFallback is the skill match reported for postings that
// declare no required skills. Matches the original system's behavior.
const emptySkillFallback = 0.0

// ResumeProfile is the per-request candidate input: extracted text plus a
// normalized skill set produced by an external extractor.
type ResumeProfile struct {
	RawText string
	Skills  []string
}

// SkillSet returns the profile's skills as a normalized lookup set.
func (r *ResumeProfile) SkillSet() map[string]bool {
	set := make(map[string]bool, len(r.Skills))
	for _, s := range r.Skills {
		tok := catalog.NormalizeSkill(s)
		if tok != "" {
			set[tok] = true
		}
	}
	return set
}

// MatchResult is one ranked job with its component scores, all in [0,1].
type MatchResult struct {
	JobID           string   `json:"job_id"`
	Title           string   `json:"title"`
	Location        string   `json:"location"`
	SemanticScore   float64  `json:"semantic_score"`
	SkillMatch      float64  `json:"skill_match"`
	ExperienceScore float64  `json:"experience_score"`
	TotalScore      float64  `json:"total_score"`
	MissingSkills   []string `json:"missing_skills"`
}

// ExperienceFunc produces a seniority factor in [0,1] for a resume/job
// pair. The default is a constant baseline; swapping in a real
// computation requires no change to the combination logic.
type ExperienceFunc func(resume *ResumeProfile, job *catalog.JobPosting) float64

// BaselineExperience returns an ExperienceFunc that yields a fixed score
// for every pair.
func BaselineExperience(score float64) ExperienceFunc {
	return func(*ResumeProfile, *catalog.JobPosting) float64 {
		return score
	}
}

// Engine scores retrieval candidates against a resume profile.
type Engine struct {
	cat        *catalog.Catalog
	experience ExperienceFunc
}

// NewEngine creates a scoring engine over the catalog. If experience is
// nil the default baseline applies.
func NewEngine(cat *catalog.Catalog, experience ExperienceFunc) *Engine {
	if experience == nil {
		experience = BaselineExperience(DefaultExperienceBaseline)
	}
	return &Engine{cat: cat, experience: experience}
}

// SemanticScore maps a raw cosine distance to [0,1] via 1/(1+d):
// d=0 yields 1.0 and the mapping is strictly decreasing. One fixed
// strategy everywhere keeps scores comparable across requests.
func SemanticScore(distance float64) float64 {
	if distance < 0 {
		distance = 0
	}
	return 1 / (1 + distance)
}

// SkillMatch computes |resume ∩ required| / |required| on normalized
// tokens. Postings with no declared skills get the documented fallback
// instead of a division by zero.
func SkillMatch(resumeSkills map[string]bool, required []string) float64 {
	if len(required) == 0 {
		return emptySkillFallback
	}
	hits := 0
	for _, skill := range required {
		if resumeSkills[skill] {
			hits++
		}
	}
	return float64(hits) / float64(len(required))
}

// MissingSkills returns the required skills absent from the resume,
// preserving the posting's declared order.
func MissingSkills(resumeSkills map[string]bool, required []string) []string {
	missing := make([]string, 0, len(required))
	for _, skill := range required {
		if !resumeSkills[skill] {
			missing = append(missing, skill)
		}
	}
	return missing
}

// Score computes a full MatchResult for one candidate.
func (e *Engine) Score(hit index.Hit, resume *ResumeProfile, resumeSkills map[string]bool) (MatchResult, error) {
	job := e.cat.Get(hit.JobID)
	if job == nil {
		return MatchResult{}, errors.Newf(errors.ErrCodeInternal,
			"index returned job %s which is not in the catalog", hit.JobID)
	}

	required := job.RequiredSkills()

	semantic := SemanticScore(hit.Distance)
	skill := SkillMatch(resumeSkills, required)
	experience := clamp01(e.experience(resume, job))

	return MatchResult{
		JobID:           job.ID,
		Title:           job.Title,
		Location:        job.Location,
		SemanticScore:   semantic,
		SkillMatch:      skill,
		ExperienceScore: experience,
		TotalScore:      WeightSemantic*semantic + WeightSkill*skill + WeightExperience*experience,
		MissingSkills:   MissingSkills(resumeSkills, required),
	}, nil
}

// Rank scores every candidate and returns the top n by total score,
// descending. Total ties break by ascending job ID. Ranking only reorders
// the shortlist; it never expands it, so fewer than n candidates yield
// fewer than n results.
func (e *Engine) Rank(candidates []index.Hit, resume *ResumeProfile, n int) ([]MatchResult, error) {
	if n < 1 {
		return nil, errors.InvalidInput("top_n must be >= 1")
	}

	resumeSkills := resume.SkillSet()
	results := make([]MatchResult, 0, len(candidates))
	for _, hit := range candidates {
		r, err := e.Score(hit, resume, resumeSkills)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].TotalScore != results[j].TotalScore {
			return results[i].TotalScore > results[j].TotalScore
		}
		return results[i].JobID < results[j].JobID
	})

	if n > len(results) {
		n = len(results)
	}
	return results[:n], nil
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
