// Package report generates a short career advice report for a candidate
// from their resume and match results. The report is model-generated
// markdown; callers treat it as opaque text.
package report

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/vinayprograms/jobmatch/errors"
	"github.com/vinayprograms/jobmatch/llm"
	"github.com/vinayprograms/jobmatch/scoring"
)

// Caps keep the prompt bounded for large catalogs and long resumes.
const (
	maxResumeChars   = 4000
	maxMissingSkills = 10
)

const systemPrompt = `You are a career advisor. Given a candidate's resume and the jobs they matched against, write a short markdown report with three sections: a summary of the candidate's profile, how well they fit the matched roles, and which missing skills to learn first. Be specific and concise.`

// Generator produces career reports.
type Generator struct {
	provider llm.Provider
}

// NewGenerator creates a report generator backed by the given provider.
func NewGenerator(provider llm.Provider) *Generator {
	return &Generator{provider: provider}
}

// Generate writes a career report for the given resume and matches.
func (g *Generator) Generate(ctx context.Context, resumeText string, matches []scoring.MatchResult) (string, error) {
	text := strings.TrimSpace(resumeText)
	if text == "" {
		return "", errors.InvalidInput("resume text is empty")
	}
	if len(matches) == 0 {
		return "", errors.InvalidInput("no matches to report on")
	}
	if len(text) > maxResumeChars {
		cut := maxResumeChars
		// Never split a multi-byte rune at the cap.
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}

	resp, err := g.provider.Chat(ctx, llm.ChatRequest{
		Messages: []llm.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(text, matches)},
		},
	})
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrCodeReportFailed, "report generation failed")
	}

	body := strings.TrimSpace(resp.Content)
	if body == "" {
		return "", errors.New(errors.ErrCodeReportFailed, "report generation returned no content")
	}
	return body, nil
}

// buildPrompt renders the matches into the user message.
func buildPrompt(resumeText string, matches []scoring.MatchResult) string {
	var b strings.Builder
	b.WriteString("Resume:\n")
	b.WriteString(resumeText)
	b.WriteString("\n\nMatched jobs:\n")

	for _, m := range matches {
		fmt.Fprintf(&b, "- %s (%s): match score %.2f", m.Title, m.Location, m.TotalScore)
		if missing := capSkills(m.MissingSkills); len(missing) > 0 {
			fmt.Fprintf(&b, ", missing skills: %s", strings.Join(missing, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func capSkills(skills []string) []string {
	if len(skills) > maxMissingSkills {
		return skills[:maxMissingSkills]
	}
	return skills
}
