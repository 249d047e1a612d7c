package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/mkravets/mr-insight-service/internal/apperrors"
	"github.com/mkravets/mr-insight-service/internal/domain"
	"github.com/mkravets/mr-insight-service/internal/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type neutralAnalyzer struct{}

func (neutralAnalyzer) Compound(string) float64 { return 0 }

func newTestService(host HostClient, tracker IssueFetcher) *ScanService {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewScanService(
		log,
		func(Settings) HostClient { return host },
		func(Settings) IssueFetcher { return tracker },
		scoring.NewEngine(neutralAnalyzer{}),
	)
}

func validSettings(assignees ...string) Settings {
	return Settings{
		GitLabBaseURL: "https://gitlab.example.com",
		GitLabProject: "group/project",
		GitLabToken:   "glpat-abc",
		JiraBaseURL:   "https://tracker.example.com",
		JiraUser:      "bot@example.com",
		JiraToken:     "jira-token",
		Assignees:     assignees,
	}
}

func TestScan_FullPipelineOrdering(t *testing.T) {
	ctx := context.Background()

	host := new(HostClientMock)
	tracker := new(IssueFetcherMock)

	host.On("ListAssignedMergeRequests", mock.Anything, "alice").Return([]domain.MergeRequest{
		{IID: 1, Title: "Fix login", WebURL: "https://git/mr/1", Assignee: "alice"},
		{IID: 2, Title: "Chore", WebURL: "https://git/mr/2", Assignee: "alice"},
	}, nil)
	host.On("ListCommits", mock.Anything, 1).Return([]domain.Commit{
		{SHA: "a", Message: "fix ABC-1 and ABC-1 again"},
		{SHA: "b", Message: "see ABC-2"},
	}, nil)
	host.On("ListCommits", mock.Anything, 2).Return([]domain.Commit{
		{SHA: "c", Message: "bump deps"},
	}, nil)

	tracker.On("FetchIssue", mock.Anything, "ABC-1").Return(&domain.Issue{
		Key: "ABC-1", Summary: "login broken", Priority: "High",
	}, nil)
	tracker.On("FetchIssue", mock.Anything, "ABC-2").Return(&domain.Issue{
		Key: "ABC-2", Summary: "follow-up", Priority: "Low",
	}, nil)

	svc := newTestService(host, tracker)

	report, err := svc.Scan(ctx, validSettings("alice"))

	require.NoError(t, err)
	require.Len(t, report.Rows, 3)
	assert.Empty(t, report.Warnings)

	// MR 1 contributes one row per distinct key, in first-seen order.
	assert.Equal(t, "ABC-1", report.Rows[0].JiraKey)
	assert.Equal(t, "login broken", report.Rows[0].JiraSummary)
	require.NotNil(t, report.Rows[0].Score)

	assert.Equal(t, "ABC-2", report.Rows[1].JiraKey)

	// MR 2 has no keys: exactly one placeholder row.
	assert.Equal(t, 2, report.Rows[2].MRIID)
	assert.Empty(t, report.Rows[2].JiraKey)
	assert.Nil(t, report.Rows[2].Score)
	assert.Equal(t, ReasonNoIssueKeys, report.Rows[2].Reason)

	tracker.AssertNumberOfCalls(t, "FetchIssue", 2)
}

func TestScan_ListingFailureSkipsAssigneeOnly(t *testing.T) {
	ctx := context.Background()

	host := new(HostClientMock)
	tracker := new(IssueFetcherMock)

	host.On("ListAssignedMergeRequests", mock.Anything, "alice").Return(
		nil, &apperrors.TransportError{Op: "list", URL: "u", StatusCode: 502},
	)
	host.On("ListAssignedMergeRequests", mock.Anything, "bob").Return([]domain.MergeRequest{
		{IID: 9, Title: "Docs", WebURL: "https://git/mr/9", Assignee: "bob"},
	}, nil)
	host.On("ListCommits", mock.Anything, 9).Return([]domain.Commit{}, nil)

	svc := newTestService(host, tracker)

	report, err := svc.Scan(ctx, validSettings("alice", "bob"))

	require.NoError(t, err)

	// alice contributes zero rows, bob is unaffected.
	require.Len(t, report.Rows, 1)
	assert.Equal(t, "bob", report.Rows[0].Assignee)

	require.Len(t, report.Warnings, 1)
	assert.Equal(t, "alice", report.Warnings[0].Assignee)
	assert.Contains(t, report.Warnings[0].Message, "failed to list merge requests")
}

func TestScan_CommitFetchFailureYieldsPlaceholderRow(t *testing.T) {
	ctx := context.Background()

	host := new(HostClientMock)
	tracker := new(IssueFetcherMock)

	host.On("ListAssignedMergeRequests", mock.Anything, "alice").Return([]domain.MergeRequest{
		{IID: 4, Title: "Flaky", WebURL: "https://git/mr/4", Assignee: "alice"},
	}, nil)
	host.On("ListCommits", mock.Anything, 4).Return(
		nil, &apperrors.TransportError{Op: "commits", URL: "u", Err: errors.New("connection reset")},
	)

	svc := newTestService(host, tracker)

	report, err := svc.Scan(ctx, validSettings("alice"))

	require.NoError(t, err)

	require.Len(t, report.Rows, 1)
	assert.Equal(t, 4, report.Rows[0].MRIID)
	assert.Equal(t, ReasonNoIssueKeys, report.Rows[0].Reason)
	assert.Nil(t, report.Rows[0].Score)

	require.Len(t, report.Warnings, 1)
	assert.Equal(t, 4, report.Warnings[0].MRIID)
	assert.Contains(t, report.Warnings[0].Message, "failed to fetch commits")
}

func TestScan_IssueFetchFailureBecomesAbsentScore(t *testing.T) {
	ctx := context.Background()

	host := new(HostClientMock)
	tracker := new(IssueFetcherMock)

	host.On("ListAssignedMergeRequests", mock.Anything, "alice").Return([]domain.MergeRequest{
		{IID: 5, Title: "Mystery", WebURL: "https://git/mr/5", Assignee: "alice"},
	}, nil)
	host.On("ListCommits", mock.Anything, 5).Return([]domain.Commit{
		{SHA: "d", Message: "ref GONE-1"},
	}, nil)

	tracker.On("FetchIssue", mock.Anything, "GONE-1").Return(&domain.Issue{
		Key:     "GONE-1",
		Failure: &domain.IssueFetchFailure{StatusCode: 404, Body: "not found"},
	}, nil)

	svc := newTestService(host, tracker)

	report, err := svc.Scan(ctx, validSettings("alice"))

	require.NoError(t, err)
	require.Len(t, report.Rows, 1)

	row := report.Rows[0]
	assert.Equal(t, "GONE-1", row.JiraKey)
	assert.Nil(t, row.Score)
	assert.Contains(t, row.Reason, "404")
	assert.Empty(t, row.JiraSummary)
}

func TestScan_MissingSettingsBlockRunBeforeNetwork(t *testing.T) {
	host := new(HostClientMock)
	tracker := new(IssueFetcherMock)

	svc := newTestService(host, tracker)

	_, err := svc.Scan(context.Background(), Settings{})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrMissingConfig)

	// Every missing field surfaces in one error.
	assert.Contains(t, err.Error(), "GitLabBaseURL")
	assert.Contains(t, err.Error(), "JiraToken")
	assert.Contains(t, err.Error(), "Assignees")

	host.AssertNotCalled(t, "ListAssignedMergeRequests")
}

func TestScan_UnexpectedErrorAbortsRun(t *testing.T) {
	ctx := context.Background()

	host := new(HostClientMock)
	tracker := new(IssueFetcherMock)

	host.On("ListAssignedMergeRequests", mock.Anything, "alice").Return([]domain.MergeRequest{
		{IID: 6, Title: "Broken upstream", WebURL: "https://git/mr/6", Assignee: "alice"},
	}, nil)
	host.On("ListCommits", mock.Anything, 6).Return(
		nil, errors.New("unexpected schema from upstream"),
	)

	svc := newTestService(host, tracker)

	_, err := svc.Scan(ctx, validSettings("alice"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected schema")
}
