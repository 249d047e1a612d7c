package domain

// MergeRequest is a merge request fetched from the source-control host.
// Immutable once fetched.
type MergeRequest struct {
	IID      int    `json:"iid"`
	Title    string `json:"title"`
	WebURL   string `json:"web_url"`
	Assignee string `json:"assignee"`
}

// Commit is a single commit belonging to a merge request.
type Commit struct {
	SHA     string `json:"sha"`
	Message string `json:"message"`
}

// CommitRef records one occurrence of an issue key inside a commit message.
// The same commit appears once per occurrence, so a message mentioning a key
// twice produces two refs.
type CommitRef struct {
	SHA     string `json:"sha"`
	Message string `json:"message"`
}

// Issue is the fetched issue-tracker record for one key. Exactly one of the
// two shapes is populated: field data on success, or Failure when the tracker
// responded with a non-2xx status. A failed fetch is a normal, representable
// outcome, not an error.
type Issue struct {
	Key         string   `json:"key"`
	Summary     string   `json:"summary"`
	Description string   `json:"description"` // already normalized to plain text
	Priority    string   `json:"priority"`
	Labels      []string `json:"labels"`

	Failure *IssueFetchFailure `json:"failure,omitempty"`
}

// Failed reports whether the record represents a fetch failure.
func (i *Issue) Failed() bool {
	return i != nil && i.Failure != nil
}

// IssueFetchFailure captures a non-2xx tracker response for a key.
type IssueFetchFailure struct {
	StatusCode int    `json:"status_code"`
	Body       string `json:"body"`
}

// ScoreResult is the outcome of scoring one issue. Score is nil when no
// score could be computed; the Reason string always explains why, and for a
// computed score reports every intermediate component so the value can be
// reconstructed from the reason alone.
type ScoreResult struct {
	Score     *float64 `json:"score"`
	Reason    string   `json:"reason"`
	Sentiment float64  `json:"sentiment"`
	Priority  string   `json:"priority"`
}

// ResultRow is the terminal, flattened output entity of the pipeline: one
// row per (merge request, issue key) pair, or one placeholder row for a
// merge request whose commits reference no issue at all.
type ResultRow struct {
	Assignee    string   `json:"assignee"`
	MRIID       int      `json:"mr_iid"`
	MRTitle     string   `json:"mr_title"`
	MRURL       string   `json:"mr_url"`
	JiraKey     string   `json:"jira_key,omitempty"`
	JiraSummary string   `json:"jira_summary,omitempty"`
	Score       *float64 `json:"score"`
	Reason      string   `json:"reason"`
}

// Warning describes a recoverable failure that caused one unit of work to be
// skipped without aborting its siblings.
type Warning struct {
	Assignee string `json:"assignee"`
	MRIID    int    `json:"mr_iid,omitempty"`
	Message  string `json:"message"`
}

// ScanReport is the full outcome of one orchestration run: the ordered
// ResultRow table plus every warning recorded along the way.
type ScanReport struct {
	Rows     []ResultRow `json:"rows"`
	Warnings []Warning   `json:"warnings"`
}
