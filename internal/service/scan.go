// package service drives the correlation pipeline end to end: list merge
// requests per assignee, fetch commits, extract issue keys, fetch and score
// issues, and assemble the flat result table.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mkravets/mr-insight-service/internal/apperrors"
	"github.com/mkravets/mr-insight-service/internal/domain"
	"github.com/mkravets/mr-insight-service/internal/jirakey"
	"github.com/mkravets/mr-insight-service/internal/validation"
	"github.com/mkravets/mr-insight-service/pkg/logger/sl"
)

// ReasonNoIssueKeys is the reason recorded on the placeholder row of a merge
// request whose commits reference no issue key.
const ReasonNoIssueKeys = "no_jira_in_commits"

// HostClient is the source-control host surface the pipeline needs.
type HostClient interface {
	ListAssignedMergeRequests(ctx context.Context, assignee string) ([]domain.MergeRequest, error)
	ListCommits(ctx context.Context, mrIID int) ([]domain.Commit, error)
}

// IssueFetcher retrieves one issue record by key. Implementations memoize
// per run; a non-2xx tracker response comes back as a failure record, not an
// error.
type IssueFetcher interface {
	FetchIssue(ctx context.Context, key string) (*domain.Issue, error)
}

// Scorer maps one issue record to a score breakdown.
type Scorer interface {
	Score(issue *domain.Issue) domain.ScoreResult
}

// Settings are the connection parameters of one run. They are validated
// before any network call; every missing field is reported at once.
type Settings struct {
	GitLabBaseURL string `validate:"required,url"`
	GitLabProject string `validate:"required"`
	GitLabToken   string `validate:"required"`
	JiraBaseURL   string `validate:"required,url"`
	JiraUser      string `validate:"required"`
	JiraToken     string `validate:"required"`

	Assignees []string `validate:"required,min=1,dive,required,username"`
}

// HostFactory builds a host client for one run's connection settings.
type HostFactory func(settings Settings) HostClient

// TrackerFactory builds an issue fetcher for one run. A fresh fetcher per
// run keeps the issue cache scoped to a single orchestration session.
type TrackerFactory func(settings Settings) IssueFetcher

// ScanService owns the accumulation of result rows for a run.
type ScanService struct {
	log        *slog.Logger
	newHost    HostFactory
	newTracker TrackerFactory
	scorer     Scorer
}

// NewScanService constructs the orchestrator.
func NewScanService(log *slog.Logger, newHost HostFactory, newTracker TrackerFactory, scorer Scorer) *ScanService {
	return &ScanService{
		log:        log,
		newHost:    newHost,
		newTracker: newTracker,
		scorer:     scorer,
	}
}

// Scan runs the full pipeline, strictly sequentially, and returns the
// ordered result table plus the warnings recorded for skipped units.
// Row order follows nested iteration order: assignees in input order, merge
// requests in listing order, issue keys in extraction-aggregation order.
//
// A listing failure skips that assignee; a commit-fetch failure downgrades
// that merge request to zero commits. Both are recorded as warnings and
// never abort sibling units. Any other error aborts the run.
func (s *ScanService) Scan(ctx context.Context, settings Settings) (*domain.ScanReport, error) {
	const op = "internal.service.Scan"

	if err := validation.ValidateStruct(settings); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrMissingConfig, err)
	}

	log := s.log.With(slog.String("op", op))

	host := s.newHost(settings)
	tracker := s.newTracker(settings)

	report := &domain.ScanReport{
		Rows:     []domain.ResultRow{},
		Warnings: []domain.Warning{},
	}

	for _, assignee := range settings.Assignees {
		rows, warnings, err := s.scanAssignee(ctx, host, tracker, assignee)
		if err != nil {
			return nil, fmt.Errorf("%s: assignee %s: %w", op, assignee, err)
		}

		report.Rows = append(report.Rows, rows...)
		report.Warnings = append(report.Warnings, warnings...)
	}

	if len(report.Rows) == 0 {
		log.Info("scan finished with no rows")
	} else {
		log.Info("scan finished",
			slog.Int("rows", len(report.Rows)),
			slog.Int("warnings", len(report.Warnings)),
		)
	}

	return report, nil
}

// scanAssignee processes one tracked person. A listing transport failure is
// returned as a warning with zero rows; it never affects other assignees.
func (s *ScanService) scanAssignee(
	ctx context.Context,
	host HostClient,
	tracker IssueFetcher,
	assignee string,
) ([]domain.ResultRow, []domain.Warning, error) {
	log := s.log.With(slog.String("assignee", assignee))

	mrs, err := host.ListAssignedMergeRequests(ctx, assignee)
	if err != nil {
		var transportErr *apperrors.TransportError
		if errors.As(err, &transportErr) {
			log.Warn("failed to list merge requests, skipping assignee", sl.Err(err))

			warning := domain.Warning{
				Assignee: assignee,
				Message:  fmt.Sprintf("failed to list merge requests: %v", err),
			}

			return nil, []domain.Warning{warning}, nil
		}

		return nil, nil, err
	}

	if len(mrs) == 0 {
		log.Info("no merge requests found")
	}

	var (
		rows     []domain.ResultRow
		warnings []domain.Warning
	)

	for _, mr := range mrs {
		mrRows, warning, err := s.scanMergeRequest(ctx, host, tracker, assignee, mr)
		if err != nil {
			return nil, nil, err
		}

		rows = append(rows, mrRows...)
		if warning != nil {
			warnings = append(warnings, *warning)
		}
	}

	return rows, warnings, nil
}

// scanMergeRequest produces the rows of one merge request: one per distinct
// issue key found in its commits, or a single placeholder row when no key
// was found. A commit-fetch transport failure is downgraded to zero commits,
// which lands on the same placeholder path.
func (s *ScanService) scanMergeRequest(
	ctx context.Context,
	host HostClient,
	tracker IssueFetcher,
	assignee string,
	mr domain.MergeRequest,
) ([]domain.ResultRow, *domain.Warning, error) {
	var warning *domain.Warning

	commits, err := host.ListCommits(ctx, mr.IID)
	if err != nil {
		var transportErr *apperrors.TransportError
		if !errors.As(err, &transportErr) {
			return nil, nil, err
		}

		s.log.Warn("failed to fetch commits, treating as empty",
			slog.String("assignee", assignee),
			slog.Int("mr_iid", mr.IID),
			sl.Err(err),
		)

		warning = &domain.Warning{
			Assignee: assignee,
			MRIID:    mr.IID,
			Message:  fmt.Sprintf("failed to fetch commits: %v", err),
		}
		commits = nil
	}

	ix := jirakey.Aggregate(commits)

	if ix.Empty() {
		row := domain.ResultRow{
			Assignee: assignee,
			MRIID:    mr.IID,
			MRTitle:  mr.Title,
			MRURL:    mr.WebURL,
			Reason:   ReasonNoIssueKeys,
		}

		return []domain.ResultRow{row}, warning, nil
	}

	rows := make([]domain.ResultRow, 0, len(ix.Keys()))

	for _, key := range ix.Keys() {
		issue, err := tracker.FetchIssue(ctx, key)
		if err != nil {
			return nil, nil, err
		}

		result := s.scorer.Score(issue)

		row := domain.ResultRow{
			Assignee: assignee,
			MRIID:    mr.IID,
			MRTitle:  mr.Title,
			MRURL:    mr.WebURL,
			JiraKey:  key,
			Score:    result.Score,
			Reason:   result.Reason,
		}
		if !issue.Failed() {
			row.JiraSummary = issue.Summary
		}

		rows = append(rows, row)
	}

	return rows, warning, nil
}
