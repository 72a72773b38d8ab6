package scoring

import (
	"math"
	"testing"

	"github.com/vinayprograms/jobmatch/catalog"
	"github.com/vinayprograms/jobmatch/index"
)

func scenarioCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New([]catalog.JobPosting{
		{ID: "1", Title: "Python Developer", Location: "Remote", Skills: []string{"python", "git"}},
		{ID: "2", Title: "Backend Engineer", Location: "Berlin", Skills: []string{"python", "fastapi", "git", "docker"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	return cat
}

func TestSemanticScore(t *testing.T) {
	if s := SemanticScore(0); s != 1.0 {
		t.Errorf("distance 0 should score 1.0, got %f", s)
	}
	if s := SemanticScore(1); s != 0.5 {
		t.Errorf("distance 1 should score 0.5, got %f", s)
	}
	// Strictly decreasing.
	prev := SemanticScore(0)
	for _, d := range []float64{0.1, 0.5, 1, 1.5, 2} {
		s := SemanticScore(d)
		if s >= prev {
			t.Errorf("semantic score not strictly decreasing at d=%f", d)
		}
		if s < 0 || s > 1 {
			t.Errorf("semantic score out of range at d=%f: %f", d, s)
		}
		prev = s
	}
}

func TestSkillMatchScenario(t *testing.T) {
	// A {python, git} resume against a full-overlap and a half-overlap posting.
	resume := &ResumeProfile{Skills: []string{"Python", "git"}}
	set := resume.SkillSet()

	if m := SkillMatch(set, []string{"python", "git"}); m != 1.0 {
		t.Errorf("job 1 skill_match = %f, want 1.0", m)
	}
	if m := SkillMatch(set, []string{"python", "fastapi", "git", "docker"}); m != 0.5 {
		t.Errorf("job 2 skill_match = %f, want 0.5", m)
	}
}

func TestSkillMatchBounds(t *testing.T) {
	set := map[string]bool{"go": true}

	if m := SkillMatch(set, []string{"rust", "zig"}); m != 0.0 {
		t.Errorf("no overlap should score 0.0, got %f", m)
	}
	if m := SkillMatch(set, []string{"go"}); m != 1.0 {
		t.Errorf("full coverage should score 1.0, got %f", m)
	}
	if m := SkillMatch(set, nil); m != emptySkillFallback {
		t.Errorf("empty required skills should use the fallback, got %f", m)
	}
}

func TestMissingSkillsOrder(t *testing.T) {
	resume := &ResumeProfile{Skills: []string{"python", "git"}}
	missing := MissingSkills(resume.SkillSet(), []string{"python", "fastapi", "git", "docker"})

	if len(missing) != 2 || missing[0] != "fastapi" || missing[1] != "docker" {
		t.Errorf("missing = %v, want [fastapi docker] in declared order", missing)
	}
	for _, s := range missing {
		if resume.SkillSet()[s] {
			t.Errorf("missing skill %s is present in resume", s)
		}
	}
}

func TestScoreWeightedTotal(t *testing.T) {
	cat := scenarioCatalog(t)
	engine := NewEngine(cat, nil)
	resume := &ResumeProfile{Skills: []string{"python", "git"}}

	r, err := engine.Score(index.Hit{JobID: "2", Distance: 0.5}, resume, resume.SkillSet())
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}

	wantSemantic := 1 / 1.5
	wantTotal := 0.5*wantSemantic + 0.3*0.5 + 0.2*DefaultExperienceBaseline

	if math.Abs(r.SemanticScore-wantSemantic) > 1e-12 {
		t.Errorf("semantic = %f, want %f", r.SemanticScore, wantSemantic)
	}
	if math.Abs(r.TotalScore-wantTotal) > 1e-12 {
		t.Errorf("total = %f, want %f", r.TotalScore, wantTotal)
	}
	for _, v := range []float64{r.SemanticScore, r.SkillMatch, r.ExperienceScore, r.TotalScore} {
		if v < 0 || v > 1 {
			t.Errorf("component out of [0,1]: %f", v)
		}
	}
}

func TestCustomExperienceFunc(t *testing.T) {
	cat := scenarioCatalog(t)
	engine := NewEngine(cat, func(resume *ResumeProfile, job *catalog.JobPosting) float64 {
		return 2.5 // must be clamped
	})
	resume := &ResumeProfile{Skills: []string{"python"}}

	r, err := engine.Score(index.Hit{JobID: "1", Distance: 0}, resume, resume.SkillSet())
	if err != nil {
		t.Fatal(err)
	}
	if r.ExperienceScore != 1.0 {
		t.Errorf("experience should be clamped to 1.0, got %f", r.ExperienceScore)
	}
}

func TestRankOrderingAndTies(t *testing.T) {
	cat, err := catalog.New([]catalog.JobPosting{
		{ID: "b", Title: "Same Role", Skills: []string{"go"}},
		{ID: "a", Title: "Same Role", Skills: []string{"go"}},
		{ID: "c", Title: "Worse Role", Skills: []string{"cobol"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	engine := NewEngine(cat, nil)
	resume := &ResumeProfile{Skills: []string{"go"}}

	candidates := []index.Hit{
		{JobID: "b", Distance: 0.2},
		{JobID: "c", Distance: 0.2},
		{JobID: "a", Distance: 0.2},
	}

	results, err := engine.Rank(candidates, resume, 3)
	if err != nil {
		t.Fatalf("rank failed: %v", err)
	}

	// a and b tie on every component; the tie breaks by ascending ID.
	if results[0].JobID != "a" || results[1].JobID != "b" || results[2].JobID != "c" {
		t.Errorf("order = [%s %s %s], want [a b c]",
			results[0].JobID, results[1].JobID, results[2].JobID)
	}
	for i := 1; i < len(results); i++ {
		if results[i].TotalScore > results[i-1].TotalScore {
			t.Error("results must be non-increasing by total score")
		}
	}
}

func TestRankTopNTruncation(t *testing.T) {
	cat := scenarioCatalog(t)
	engine := NewEngine(cat, nil)
	resume := &ResumeProfile{Skills: []string{"python"}}

	candidates := []index.Hit{
		{JobID: "1", Distance: 0.1},
		{JobID: "2", Distance: 0.3},
	}

	// n larger than the shortlist: no padding, no fabricated entries.
	results, err := engine.Rank(candidates, resume, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 results, got %d", len(results))
	}

	results, err = engine.Rank(candidates, resume, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Errorf("expected 1 result, got %d", len(results))
	}
}

func TestRankRejectsBadN(t *testing.T) {
	engine := NewEngine(scenarioCatalog(t), nil)
	if _, err := engine.Rank(nil, &ResumeProfile{}, 0); err == nil {
		t.Error("expected error for n=0")
	}
}

func TestRankUnknownJobFails(t *testing.T) {
	engine := NewEngine(scenarioCatalog(t), nil)
	_, err := engine.Rank([]index.Hit{{JobID: "ghost", Distance: 0.1}}, &ResumeProfile{}, 1)
	if err == nil {
		t.Error("expected error for candidate not in catalog")
	}
}

func TestWeightsSumToOne(t *testing.T) {
	if WeightSemantic+WeightSkill+WeightExperience != 1.0 {
		t.Error("signal weights must sum to exactly 1.0")
	}
}
