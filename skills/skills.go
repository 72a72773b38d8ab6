// Package skills extracts a skill list from raw resume text using a
// chat-completion provider. Extraction is a convenience for callers that
// have only the resume body; the pipeline itself accepts skills directly.
package skills

import (
	"context"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/vinayprograms/jobmatch/catalog"
	"github.com/vinayprograms/jobmatch/errors"
	"github.com/vinayprograms/jobmatch/llm"
)

// maxResumeChars caps the prompt size. Skills cluster in the first pages
// of a resume, so truncation rarely loses signal.
const maxResumeChars = 4000

const systemPrompt = `You are a resume analysis assistant. Extract the technical and professional skills from the resume text you are given. Respond with JSON only, in the form {"skills": ["skill1", "skill2"]}. Use short lowercase skill names. Do not include any other text.`

// Extractor pulls skills out of resume text via an LLM.
type Extractor struct {
	provider llm.Provider
}

// NewExtractor creates an extractor backed by the given provider.
func NewExtractor(provider llm.Provider) *Extractor {
	return &Extractor{provider: provider}
}

// Extract returns the normalized, deduplicated skills found in resumeText.
// Order follows the model's output.
func (e *Extractor) Extract(ctx context.Context, resumeText string) ([]string, error) {
	text := strings.TrimSpace(resumeText)
	if text == "" {
		return nil, errors.InvalidInput("resume text is empty")
	}
	if len(text) > maxResumeChars {
		cut := maxResumeChars
		// Never split a multi-byte rune at the cap.
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}

	resp, err := e.provider.Chat(ctx, llm.ChatRequest{
		Messages: []llm.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: text},
		},
	})
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCodeExtractionFailed, "skill extraction failed")
	}

	parsed, err := parseSkillsJSON(resp.Content)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCodeExtractionFailed, "skill extraction returned malformed output")
	}

	skills := catalog.NormalizeSkills(parsed)
	if len(skills) == 0 {
		return nil, errors.New(errors.ErrCodeExtractionFailed, "skill extraction found no skills")
	}
	return skills, nil
}

type skillsPayload struct {
	Skills []string `json:"skills"`
}

// parseSkillsJSON decodes the model's reply. Models sometimes wrap JSON
// in a markdown fence or lead with prose, so decoding starts at the
// first brace.
func parseSkillsJSON(content string) ([]string, error) {
	s := strings.TrimSpace(content)
	if i := strings.Index(s, "{"); i > 0 {
		s = s[i:]
	}
	if j := strings.LastIndex(s, "}"); j >= 0 {
		s = s[:j+1]
	}

	var payload skillsPayload
	if err := json.Unmarshal([]byte(s), &payload); err != nil {
		return nil, err
	}
	return payload.Skills, nil
}
