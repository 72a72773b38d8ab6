package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vinayprograms/jobmatch/catalog"
	"github.com/vinayprograms/jobmatch/llm"
	"github.com/vinayprograms/jobmatch/pipeline"
	"github.com/vinayprograms/jobmatch/report"
	"github.com/vinayprograms/jobmatch/search"
	"github.com/vinayprograms/jobmatch/skills"
)

type fixedEmbedder struct {
	dim     int
	vectors map[string][]float32
	err     error
}

func (f *fixedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if v, ok := f.vectors[t]; ok {
			out[i] = v
			continue
		}
		v := make([]float32, f.dim)
		v[0] = 1
		out[i] = v
	}
	return out, nil
}

func (f *fixedEmbedder) Dimension() int { return f.dim }

const resumeText = "Python developer comfortable with git workflows."

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New([]catalog.JobPosting{
		{
			ID:               "1",
			Title:            "Backend Engineer",
			Location:         "Remote",
			Responsibilities: []string{"Build services"},
			Skills:           []string{"python", "git"},
		},
		{
			ID:               "2",
			Title:            "Platform Engineer",
			Location:         "Berlin",
			Responsibilities: []string{"Run the platform"},
			Skills:           []string{"python", "fastapi", "git", "docker"},
		},
	})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return cat
}

func testPipeline(t *testing.T, cat *catalog.Catalog) *pipeline.Pipeline {
	t.Helper()
	embedder := &fixedEmbedder{dim: 4, vectors: map[string][]float32{}}
	postings := cat.Postings()
	embedder.vectors[postings[0].DescriptionText()] = []float32{1, 0, 0, 0}
	embedder.vectors[postings[1].DescriptionText()] = []float32{0.5, 0.5, 0, 0}
	embedder.vectors[resumeText] = []float32{1, 0.1, 0, 0}

	p, err := pipeline.New(pipeline.Config{Catalog: cat, Provider: embedder})
	if err != nil {
		t.Fatalf("pipeline: %v", err)
	}
	return p
}

func newTestServer(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("server: %v", err)
	}
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func postAnalyze(t *testing.T, srv *httptest.Server, body string) (*http.Response, analyzeResponse) {
	t.Helper()
	resp, err := http.Post(srv.URL+"/analyze", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /analyze: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	var parsed analyzeResponse
	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp, parsed
}

func TestAnalyzeEndpoint(t *testing.T) {
	cat := testCatalog(t)
	srv := newTestServer(t, Config{Pipeline: testPipeline(t, cat)})

	body := fmt.Sprintf(`{"resume_text": %q, "resume_skills": ["python", "git"], "top_n": 2}`, resumeText)
	resp, parsed := postAnalyze(t, srv, body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if parsed.RequestID == "" {
		t.Error("missing request_id")
	}
	if len(parsed.Matches) != 2 {
		t.Fatalf("matches = %d, want 2", len(parsed.Matches))
	}
	if parsed.Matches[0].JobID != "1" {
		t.Errorf("top match = %s, want 1", parsed.Matches[0].JobID)
	}

	// Percentage is the total score scaled to [0,100] with one decimal.
	for _, m := range parsed.Matches {
		want := float64(int(m.TotalScore*1000+0.5)) / 10
		if m.MatchPercentage != want {
			t.Errorf("job %s: match_percentage = %v, want %v", m.JobID, m.MatchPercentage, want)
		}
	}
}

func TestAnalyzeExtractsSkillsWhenOmitted(t *testing.T) {
	cat := testCatalog(t)
	extractor := skills.NewExtractor(llm.NewMockProvider(`{"skills": ["python", "git"]}`))
	srv := newTestServer(t, Config{Pipeline: testPipeline(t, cat), Extractor: extractor})

	body := fmt.Sprintf(`{"resume_text": %q, "top_n": 2}`, resumeText)
	resp, parsed := postAnalyze(t, srv, body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if len(parsed.Matches) != 2 {
		t.Fatalf("matches = %d, want 2", len(parsed.Matches))
	}
	if parsed.Matches[0].SkillMatch != 1.0 {
		t.Errorf("skill match = %v, want 1.0", parsed.Matches[0].SkillMatch)
	}
}

func TestAnalyzeBadRequests(t *testing.T) {
	cat := testCatalog(t)
	srv := newTestServer(t, Config{Pipeline: testPipeline(t, cat)})

	cases := []struct {
		name string
		body string
	}{
		{"not json", `resume`},
		{"blank text", `{"resume_text": " ", "resume_skills": ["python"]}`},
		{"no skills and no extractor", fmt.Sprintf(`{"resume_text": %q}`, resumeText)},
		{"negative top_n", fmt.Sprintf(`{"resume_text": %q, "resume_skills": ["python"], "top_n": -1}`, resumeText)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, _ := postAnalyze(t, srv, tc.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestAnalyzeFailedBuildReturns503(t *testing.T) {
	cat := testCatalog(t)
	embedder := &fixedEmbedder{dim: 4, err: fmt.Errorf("embedding service down")}
	p, err := pipeline.New(pipeline.Config{Catalog: cat, Provider: embedder})
	if err != nil {
		t.Fatalf("pipeline: %v", err)
	}
	srv := newTestServer(t, Config{Pipeline: p})

	body := fmt.Sprintf(`{"resume_text": %q, "resume_skills": ["python"]}`, resumeText)
	resp, _ := postAnalyze(t, srv, body)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}

	var errResp errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if errResp.Code != "INDEX_BUILD_FAILED" {
		t.Errorf("code = %s, want INDEX_BUILD_FAILED", errResp.Code)
	}
}

func TestAnalyzeReportFailureDegrades(t *testing.T) {
	cat := testCatalog(t)
	broken := llm.NewMockProvider()
	broken.SetError(fmt.Errorf("groq request failed"))
	srv := newTestServer(t, Config{
		Pipeline: testPipeline(t, cat),
		Reporter: report.NewGenerator(broken),
	})

	body := fmt.Sprintf(`{"resume_text": %q, "resume_skills": ["python", "git"], "top_n": 2}`, resumeText)
	resp, parsed := postAnalyze(t, srv, body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200 despite report failure", resp.StatusCode)
	}
	if len(parsed.Matches) != 2 {
		t.Errorf("matches = %d, want 2", len(parsed.Matches))
	}
	if parsed.Report != "" {
		t.Errorf("report = %q, want empty", parsed.Report)
	}
}

func TestAnalyzeWithReport(t *testing.T) {
	cat := testCatalog(t)
	srv := newTestServer(t, Config{
		Pipeline: testPipeline(t, cat),
		Reporter: report.NewGenerator(llm.NewMockProvider("## Summary\nGood fit.")),
	})

	body := fmt.Sprintf(`{"resume_text": %q, "resume_skills": ["python", "git"], "top_n": 2}`, resumeText)
	resp, parsed := postAnalyze(t, srv, body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(parsed.Report, "Good fit") {
		t.Errorf("report = %q", parsed.Report)
	}
}

func TestSearchEndpoint(t *testing.T) {
	cat := testCatalog(t)
	idx, err := search.NewJobIndex(cat, "")
	if err != nil {
		t.Fatalf("search index: %v", err)
	}
	t.Cleanup(func() { idx.Close() })

	srv := newTestServer(t, Config{Pipeline: testPipeline(t, cat), Keyword: idx})

	resp, err := http.Get(srv.URL + "/jobs/search?q=platform")
	if err != nil {
		t.Fatalf("GET /jobs/search: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(parsed.Hits) == 0 || parsed.Hits[0].JobID != "2" {
		t.Errorf("hits = %+v, want job 2 first", parsed.Hits)
	}

	// Empty query is the caller's fault.
	resp2, err := http.Get(srv.URL + "/jobs/search?q=")
	if err != nil {
		t.Fatalf("GET empty query: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusBadRequest {
		t.Errorf("empty query status = %d, want 400", resp2.StatusCode)
	}
}

func TestSearchDisabled(t *testing.T) {
	cat := testCatalog(t)
	srv := newTestServer(t, Config{Pipeline: testPipeline(t, cat)})

	resp, err := http.Get(srv.URL + "/jobs/search?q=python")
	if err != nil {
		t.Fatalf("GET /jobs/search: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestHealthEndpoint(t *testing.T) {
	cat := testCatalog(t)
	srv := newTestServer(t, Config{Pipeline: testPipeline(t, cat)})

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var parsed healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if parsed.Status != "ok" || parsed.Jobs != 2 {
		t.Errorf("health = %+v", parsed)
	}
}

func TestRequestIDHonored(t *testing.T) {
	cat := testCatalog(t)
	srv := newTestServer(t, Config{Pipeline: testPipeline(t, cat)})

	body := fmt.Sprintf(`{"resume_text": %q, "resume_skills": ["python"], "top_n": 1}`, resumeText)
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/analyze", strings.NewReader(body))
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", "req-42")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	defer resp.Body.Close()

	var parsed analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if parsed.RequestID != "req-42" {
		t.Errorf("request_id = %q, want req-42", parsed.RequestID)
	}
}
