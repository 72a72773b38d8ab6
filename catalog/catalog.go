package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// JobPosting is a single job in the dataset.
type JobPosting struct {
	// ID uniquely and stably identifies the posting.
	ID string `json:"JobID"`

	// Title and Location are display strings.
	Title    string `json:"Title"`
	Location string `json:"Location"`

	// Responsibilities are free-text bullet points.
	Responsibilities []string `json:"Responsibilities"`

	// Skills are the declared required skills, in the order the posting
	// lists them. Matching is done on normalized tokens; this slice keeps
	// the original declaration order for reporting.
	Skills []string `json:"Skills"`
}

// DescriptionText returns the text that gets embedded for this posting.
// It is a pure function of the posting's fields so re-indexing the same
// catalog always embeds the same strings.
func (p *JobPosting) DescriptionText() string {
	var b strings.Builder
	b.WriteString(p.Title)
	b.WriteString(". ")
	b.WriteString(strings.Join(p.Responsibilities, " "))
	b.WriteString(". Skills: ")
	b.WriteString(strings.Join(p.Skills, ", "))
	return b.String()
}

// RequiredSkills returns the posting's skills as normalized tokens,
// preserving declaration order and dropping duplicates and empties.
func (p *JobPosting) RequiredSkills() []string {
	seen := make(map[string]bool, len(p.Skills))
	out := make([]string, 0, len(p.Skills))
	for _, s := range p.Skills {
		tok := NormalizeSkill(s)
		if tok == "" || seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	return out
}

// Validate checks that the posting can participate in matching.
func (p *JobPosting) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("posting has empty JobID")
	}
	if p.Title == "" {
		return fmt.Errorf("posting %s has empty Title", p.ID)
	}
	return nil
}

// NormalizeSkill lower-cases and trims a skill token so "Python" and
// " python " compare equal.
func NormalizeSkill(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeSkills normalizes a skill list into a set, preserving first-seen
// order.
func NormalizeSkills(skills []string) []string {
	seen := make(map[string]bool, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		tok := NormalizeSkill(s)
		if tok == "" || seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	return out
}

// Catalog is an ordered, immutable set of job postings keyed by ID.
type Catalog struct {
	postings []JobPosting
	byID     map[string]*JobPosting
}

// New builds a catalog from postings. Postings are kept in input order;
// duplicate or invalid IDs are rejected.
func New(postings []JobPosting) (*Catalog, error) {
	c := &Catalog{
		postings: postings,
		byID:     make(map[string]*JobPosting, len(postings)),
	}
	for i := range postings {
		p := &c.postings[i]
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate JobID %s in dataset", p.ID)
		}
		c.byID[p.ID] = p
	}
	return c, nil
}

// LoadFile reads a JSON array of postings from path and builds a catalog.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	var postings []JobPosting
	if err := json.Unmarshal(data, &postings); err != nil {
		return nil, fmt.Errorf("failed to parse dataset: %w", err)
	}
	return New(postings)
}

// Len returns the number of postings.
func (c *Catalog) Len() int {
	return len(c.postings)
}

// Postings returns all postings in dataset order. Callers must not mutate
// the returned slice.
func (c *Catalog) Postings() []JobPosting {
	return c.postings
}

// Get returns the posting with the given ID, or nil if absent.
func (c *Catalog) Get(id string) *JobPosting {
	return c.byID[id]
}

// IDs returns all posting IDs in ascending order.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.postings))
	for i := range c.postings {
		ids = append(ids, c.postings[i].ID)
	}
	sort.Strings(ids)
	return ids
}
