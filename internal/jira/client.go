// package jira fetches issue records from the tracker REST API.
//
// A Fetcher is scoped to one tracker connection and one orchestration run:
// its cache is keyed by the issue key alone, so reusing an instance across
// credentials or base URLs would serve stale records.
package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mkravets/mr-insight-service/internal/domain"
)

// HTTPClient interface for HTTP operations (allows mocking in tests).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher retrieves issue records by key, memoizing results for its own
// lifetime. First result wins; repeated requests for the same key never
// re-issue network calls within a run.
type Fetcher struct {
	baseURL    string
	user       string
	token      string
	httpClient HTTPClient
	log        *slog.Logger

	cache map[string]*domain.Issue
}

// NewFetcher creates a fetcher for one tracker connection with a fresh,
// empty cache.
func NewFetcher(baseURL, user, token string, httpClient HTTPClient, log *slog.Logger) *Fetcher {
	return &Fetcher{
		baseURL:    strings.TrimRight(baseURL, "/"),
		user:       user,
		token:      token,
		httpClient: httpClient,
		log:        log,
		cache:      make(map[string]*domain.Issue),
	}
}

// issueResponse is the relevant subset of the tracker issue payload.
type issueResponse struct {
	Key    string      `json:"key"`
	Fields issueFields `json:"fields"`
}

type issueFields struct {
	Summary string `json:"summary"`
	// Description is either a plain JSON string or an Atlassian Document
	// Format document; it is normalized to text on ingestion.
	Description json.RawMessage `json:"description"`
	Priority    *namedField     `json:"priority"`
	Labels      []string        `json:"labels"`
}

type namedField struct {
	Name string `json:"name"`
}

// FetchIssue returns the issue record for key, or a failure record when the
// tracker responds with a non-2xx status. A non-2xx response is a normal
// outcome, not an error; the returned error covers only transport-level
// problems, which abort the run.
func (f *Fetcher) FetchIssue(ctx context.Context, key string) (*domain.Issue, error) {
	const op = "internal.jira.FetchIssue"

	if issue, ok := f.cache[key]; ok {
		f.log.Debug("issue cache hit", slog.String("key", key))
		return issue, nil
	}

	url := fmt.Sprintf("%s/rest/api/3/issue/%s", f.baseURL, key)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create request: %w", op, err)
	}

	req.SetBasicAuth(f.user, f.token)
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: request failed: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		f.log.Debug("issue fetch failed",
			slog.String("key", key),
			slog.Int("status", resp.StatusCode),
		)

		issue := &domain.Issue{
			Key: key,
			Failure: &domain.IssueFetchFailure{
				StatusCode: resp.StatusCode,
				Body:       string(body),
			},
		}
		f.cache[key] = issue

		return issue, nil
	}

	var ir issueResponse
	if err := json.Unmarshal(body, &ir); err != nil {
		return nil, fmt.Errorf("%s: failed to decode response: %w", op, err)
	}

	issue := &domain.Issue{
		Key:         key,
		Summary:     ir.Fields.Summary,
		Description: normalizeDescription(ir.Fields.Description),
		Labels:      ir.Fields.Labels,
	}
	if ir.Fields.Priority != nil {
		issue.Priority = ir.Fields.Priority.Name
	}

	f.cache[key] = issue
	f.log.Debug("issue fetched", slog.String("key", key), slog.String("priority", issue.Priority))

	return issue, nil
}
