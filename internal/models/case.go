package models

import "time"

// Case is one case-study listing recovered from a listing page.
//
// PublishedAt holds a canonical YYYY-MM-DD date, or nil when no date could be
// recovered. It is serialized as JSON null in that case.
type Case struct {
	Title       string  `json:"title" yaml:"title"`
	URL         string  `json:"url" yaml:"url"`
	PublishedAt *string `json:"published_at" yaml:"published_at"`
}

// StoredCase is a Case as archived in the database, with the bookkeeping
// columns that track when it was first and last observed.
type StoredCase struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	PublishedAt *string   `json:"published_at"`
	SourceURL   string    `json:"source_url,omitempty"`
	FirstSeenAt time.Time `json:"first_seen_at"`
	LastSeenAt  time.Time `json:"last_seen_at"`
}

// Run records an audit trail of one extraction run.
type Run struct {
	ID         int64     `json:"id"`
	RunID      string    `json:"run_id"`
	SourceURL  string    `json:"source_url,omitempty"`
	InputPath  string    `json:"input_path,omitempty"`
	BaseURL    string    `json:"base_url"`
	Format     string    `json:"format"`
	CasesFound int       `json:"cases_found"`
	NewCases   int       `json:"new_cases"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// DatePtr returns a pointer to s, or nil when s is empty.
func DatePtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
