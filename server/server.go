// Package server exposes the matching engine over HTTP. Endpoints are
// JSON in, JSON out; every request carries a request ID that threads
// through the logs.
package server

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/vinayprograms/jobmatch/errors"
	"github.com/vinayprograms/jobmatch/logging"
	"github.com/vinayprograms/jobmatch/pipeline"
	"github.com/vinayprograms/jobmatch/report"
	"github.com/vinayprograms/jobmatch/scoring"
	"github.com/vinayprograms/jobmatch/search"
	"github.com/vinayprograms/jobmatch/skills"
)

const defaultTopN = 5

// Config configures a Server.
type Config struct {
	// Pipeline is the matching engine. Required.
	Pipeline *pipeline.Pipeline

	// Extractor, when set, fills in resume skills for requests that
	// carry only resume text.
	Extractor *skills.Extractor

	// Reporter, when set, attaches a career report to analyze responses.
	Reporter *report.Generator

	// Keyword, when set, serves GET /jobs/search.
	Keyword *search.JobIndex

	// Logger defaults to a fresh logging.New().
	Logger *logging.Logger
}

// Server is the HTTP front end of the matching engine.
type Server struct {
	pipe      *pipeline.Pipeline
	extractor *skills.Extractor
	reporter  *report.Generator
	keyword   *search.JobIndex
	log       *logging.Logger
}

// New creates a server.
func New(cfg Config) (*Server, error) {
	if cfg.Pipeline == nil {
		return nil, errors.InvalidInput("pipeline is required")
	}
	log := cfg.Logger
	if log == nil {
		log = logging.New()
	}
	return &Server{
		pipe:      cfg.Pipeline,
		extractor: cfg.Extractor,
		reporter:  cfg.Reporter,
		keyword:   cfg.Keyword,
		log:       log.WithComponent("server"),
	}, nil
}

// Handler returns the HTTP handler with all routes mounted.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/analyze", s.handleAnalyze)
	mux.HandleFunc("/jobs/search", s.handleSearch)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

// analyzeRequest is the POST /analyze body. ResumeSkills may be omitted
// when a skill extractor is configured.
type analyzeRequest struct {
	ResumeText   string   `json:"resume_text"`
	ResumeSkills []string `json:"resume_skills,omitempty"`
	TopN         int      `json:"top_n,omitempty"`
}

// analyzeMatch is one match in the response. MatchPercentage restates
// the total score as a percentage with one decimal for display.
type analyzeMatch struct {
	scoring.MatchResult
	MatchPercentage float64 `json:"match_percentage"`
}

type analyzeResponse struct {
	RequestID string         `json:"request_id"`
	Matches   []analyzeMatch `json:"matches"`
	Report    string         `json:"report,omitempty"`
}

type errorResponse struct {
	RequestID string `json:"request_id"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	requestID := requestIDFor(r)
	log := s.log.WithRequestID(requestID)

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, requestID, errors.InvalidInput("request body is not valid JSON"))
		return
	}

	topN := req.TopN
	if topN == 0 {
		topN = defaultTopN
	}

	ctx := r.Context()
	resumeSkills := req.ResumeSkills
	if len(resumeSkills) == 0 && s.extractor != nil {
		extracted, err := s.extractor.Extract(ctx, req.ResumeText)
		if err != nil {
			log.Error("skill_extraction_failed", map[string]interface{}{"error": err.Error()})
			s.writeError(w, requestID, err)
			return
		}
		resumeSkills = extracted
	}

	results, err := s.pipe.Analyze(ctx, req.ResumeText, resumeSkills, topN)
	if err != nil {
		s.writeError(w, requestID, err)
		return
	}

	resp := analyzeResponse{
		RequestID: requestID,
		Matches:   make([]analyzeMatch, 0, len(results)),
	}
	for _, m := range results {
		resp.Matches = append(resp.Matches, analyzeMatch{
			MatchResult:     m,
			MatchPercentage: toPercentage(m.TotalScore),
		})
	}

	if s.reporter != nil {
		resp.Report = s.generateReport(ctx, log, req.ResumeText, results)
	}

	writeJSON(w, http.StatusOK, resp)
}

// generateReport is best-effort: a report failure degrades the response
// instead of failing an analysis that already succeeded.
func (s *Server) generateReport(ctx context.Context, log *logging.Logger, resumeText string, results []scoring.MatchResult) string {
	body, err := s.reporter.Generate(ctx, resumeText, results)
	if err != nil {
		log.Warn("report_generation_failed", map[string]interface{}{"error": err.Error()})
		return ""
	}
	return body
}

type searchResponse struct {
	RequestID string       `json:"request_id"`
	Query     string       `json:"query"`
	Hits      []search.Hit `json:"hits"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	requestID := requestIDFor(r)
	if s.keyword == nil {
		s.writeError(w, requestID, errors.New(errors.ErrCodeNotFound, "keyword search is not enabled"))
		return
	}

	q := r.URL.Query().Get("q")
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.writeError(w, requestID, errors.InvalidInput("limit must be a positive integer"))
			return
		}
		limit = n
	}

	start := time.Now()
	hits, err := s.keyword.Search(q, limit)
	if err != nil {
		s.writeError(w, requestID, err)
		return
	}
	s.log.SearchServed(q, len(hits), time.Since(start))

	writeJSON(w, http.StatusOK, searchResponse{
		RequestID: requestID,
		Query:     q,
		Hits:      hits,
	})
}

type healthResponse struct {
	Status string `json:"status"`
	Jobs   int    `json:"jobs"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status: "ok",
		Jobs:   s.pipe.Catalog().Len(),
	})
}

// writeError maps engine error codes onto HTTP statuses: bad input is
// the caller's fault, a broken or unbuildable index means the service
// cannot serve yet, everything else is a plain failure.
func (s *Server) writeError(w http.ResponseWriter, requestID string, err error) {
	status := http.StatusInternalServerError
	code := string(errors.ErrCodeInternal)
	message := "request failed"

	if e := errors.AsMatchError(err); e != nil {
		code = string(e.Code())
		message = e.Error()
		switch e.Code() {
		case errors.ErrCodeInvalidInput:
			status = http.StatusBadRequest
		case errors.ErrCodeNotFound:
			status = http.StatusNotFound
		case errors.ErrCodeIndexBuild, errors.ErrCodeIndexCorrupt, errors.ErrCodeEmptyIndex:
			status = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, status, errorResponse{
		RequestID: requestID,
		Code:      code,
		Message:   message,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// requestIDFor honors an inbound X-Request-ID, minting one otherwise.
func requestIDFor(r *http.Request) string {
	if id := r.Header.Get("X-Request-ID"); id != "" {
		return id
	}
	return uuid.New().String()
}

// toPercentage converts a [0,1] score to a percentage with one decimal.
func toPercentage(score float64) float64 {
	return math.Round(score*1000) / 10
}
