package skills

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/vinayprograms/jobmatch/errors"
	"github.com/vinayprograms/jobmatch/llm"
)

func TestExtractParsesCleanJSON(t *testing.T) {
	mock := llm.NewMockProvider(`{"skills": ["Python", "FastAPI", "docker"]}`)
	e := NewExtractor(mock)

	got, err := e.Extract(context.Background(), "Senior engineer with Python and FastAPI experience.")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := []string{"python", "fastapi", "docker"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("skills = %v, want %v", got, want)
	}
}

func TestExtractToleratesFencedJSON(t *testing.T) {
	mock := llm.NewMockProvider("Here you go:\n```json\n{\"skills\": [\"go\", \"kubernetes\"]}\n```")
	e := NewExtractor(mock)

	got, err := e.Extract(context.Background(), "Platform engineer.")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := []string{"go", "kubernetes"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("skills = %v, want %v", got, want)
	}
}

func TestExtractDeduplicates(t *testing.T) {
	mock := llm.NewMockProvider(`{"skills": ["Git", "git", " GIT ", "python"]}`)
	e := NewExtractor(mock)

	got, err := e.Extract(context.Background(), "resume")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := []string{"git", "python"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("skills = %v, want %v", got, want)
	}
}

func TestExtractRejectsEmptyText(t *testing.T) {
	e := NewExtractor(llm.NewMockProvider(`{"skills": ["go"]}`))
	_, err := e.Extract(context.Background(), "   \n ")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestExtractTruncatesLongResumes(t *testing.T) {
	mock := llm.NewMockProvider(`{"skills": ["go"]}`)
	e := NewExtractor(mock)

	long := strings.Repeat("experience with distributed systems. ", 400)
	if _, err := e.Extract(context.Background(), long); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	req := mock.LastRequest()
	if req == nil {
		t.Fatal("no request recorded")
	}
	sent := req.Messages[len(req.Messages)-1].Content
	if len(sent) > maxResumeChars {
		t.Errorf("prompt carried %d chars, cap is %d", len(sent), maxResumeChars)
	}
}

func TestExtractTruncationKeepsValidUTF8(t *testing.T) {
	mock := llm.NewMockProvider(`{"skills": ["go"]}`)
	e := NewExtractor(mock)

	// Multi-byte runes ensure the cap lands mid-rune somewhere.
	long := strings.Repeat("数据工程与机器学习 ", 300)
	if _, err := e.Extract(context.Background(), long); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	sent := mock.LastRequest().Messages[1].Content
	if !utf8.ValidString(sent) {
		t.Error("truncated prompt is not valid UTF-8")
	}
	if len(sent) > maxResumeChars {
		t.Errorf("prompt carried %d chars, cap is %d", len(sent), maxResumeChars)
	}
}

func TestExtractWrapsProviderFailure(t *testing.T) {
	mock := llm.NewMockProvider()
	mock.SetError(fmt.Errorf("groq request failed: connection refused"))
	e := NewExtractor(mock)

	_, err := e.Extract(context.Background(), "resume")
	if !errors.Is(err, errors.ErrCodeExtractionFailed) {
		t.Fatalf("expected EXTRACTION_FAILED, got %v", err)
	}
}

func TestExtractRejectsMalformedOutput(t *testing.T) {
	cases := []string{
		"I could not find any skills, sorry!",
		`{"skills": "python"}`,
		`{"skills": []}`,
	}
	for _, reply := range cases {
		e := NewExtractor(llm.NewMockProvider(reply))
		if _, err := e.Extract(context.Background(), "resume"); !errors.Is(err, errors.ErrCodeExtractionFailed) {
			t.Errorf("reply %q: expected EXTRACTION_FAILED, got %v", reply, err)
		}
	}
}
