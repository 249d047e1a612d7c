// package gitlab is the source-control host client: it lists merge requests
// assigned to a user and fetches the commits of a merge request.
package gitlab

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/mkravets/mr-insight-service/internal/apperrors"
	"github.com/mkravets/mr-insight-service/internal/domain"
)

// DefaultPageSize is the number of items requested per page.
const DefaultPageSize = 100

// HTTPClient interface for HTTP operations (allows mocking in tests).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the host REST API for a single project. Requests are
// strictly sequential; authentication uses a private-token header.
type Client struct {
	baseURL    string
	project    string // path or numeric id, URL-encoded on use
	token      string
	pageSize   int
	httpClient HTTPClient
	log        *slog.Logger
}

// NewClient creates a client for one project. pageSize <= 0 falls back to
// DefaultPageSize.
func NewClient(baseURL, project, token string, pageSize int, httpClient HTTPClient, log *slog.Logger) *Client {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		project:    project,
		token:      token,
		pageSize:   pageSize,
		httpClient: httpClient,
		log:        log,
	}
}

func (c *Client) projectAPIBase() string {
	return fmt.Sprintf("%s/api/v4/projects/%s", c.baseURL, url.PathEscape(c.project))
}

// ListAssignedMergeRequests returns every merge request assigned to the
// given username, in any state, in listing order.
func (c *Client) ListAssignedMergeRequests(ctx context.Context, assignee string) ([]domain.MergeRequest, error) {
	const op = "internal.gitlab.ListAssignedMergeRequests"

	query := url.Values{}
	query.Set("state", "all")
	query.Set("assignee_username", assignee)

	endpoint := c.projectAPIBase() + "/merge_requests"

	items, err := getPaginated[mergeRequestPayload](ctx, c, op, endpoint, query)
	if err != nil {
		return nil, err
	}

	mrs := make([]domain.MergeRequest, len(items))
	for i, item := range items {
		mrs[i] = domain.MergeRequest{
			IID:    item.IID,
			Title:  item.Title,
			WebURL: item.WebURL,
		}
		if item.Assignee != nil {
			mrs[i].Assignee = item.Assignee.Username
		}
	}

	c.log.Debug("merge requests listed",
		slog.String("assignee", assignee),
		slog.Int("count", len(mrs)),
	)

	return mrs, nil
}

// ListCommits returns the commits of one merge request in retrieval order.
func (c *Client) ListCommits(ctx context.Context, mrIID int) ([]domain.Commit, error) {
	const op = "internal.gitlab.ListCommits"

	endpoint := fmt.Sprintf("%s/merge_requests/%d/commits", c.projectAPIBase(), mrIID)

	var items []commitPayload
	if err := c.doRequest(ctx, op, endpoint, &items); err != nil {
		return nil, err
	}

	commits := make([]domain.Commit, len(items))
	for i, item := range items {
		sha := item.ID
		if sha == "" {
			sha = item.SHA
		}

		commits[i] = domain.Commit{SHA: sha, Message: item.Message}
	}

	return commits, nil
}

// getPaginated aggregates a page-based collection endpoint: page=1..N until
// a page comes back empty or shorter than the requested page size. Pages are
// fetched sequentially; a failure on any page fails the whole call and
// already-fetched pages are discarded.
func getPaginated[T any](ctx context.Context, c *Client, op, endpoint string, query url.Values) ([]T, error) {
	var all []T

	for page := 1; ; page++ {
		q := url.Values{}
		for k, vs := range query {
			q[k] = vs
		}
		q.Set("page", strconv.Itoa(page))
		q.Set("per_page", strconv.Itoa(c.pageSize))

		var items []T
		if err := c.doRequest(ctx, op, endpoint+"?"+q.Encode(), &items); err != nil {
			return nil, err
		}

		if len(items) == 0 {
			break
		}

		all = append(all, items...)

		if len(items) < c.pageSize {
			break
		}
	}

	return all, nil
}

// doRequest performs one GET against the host API and decodes the JSON
// response. Network errors and non-2xx statuses are returned as
// *apperrors.TransportError so the orchestrator can recover per unit.
func (c *Client) doRequest(ctx context.Context, op, rawURL string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("%s: failed to create request: %w", op, err)
	}

	req.Header.Set("PRIVATE-TOKEN", c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &apperrors.TransportError{Op: op, URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &apperrors.TransportError{Op: op, URL: rawURL, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", op, err)
	}

	return nil
}

// Host API response types.
type mergeRequestPayload struct {
	IID      int    `json:"iid"`
	Title    string `json:"title"`
	WebURL   string `json:"web_url"`
	Assignee *struct {
		Username string `json:"username"`
	} `json:"assignee"`
}

type commitPayload struct {
	ID      string `json:"id"`
	SHA     string `json:"sha"`
	Message string `json:"message"`
}
