package service

import (
	"context"

	"github.com/mkravets/mr-insight-service/internal/domain"
	"github.com/stretchr/testify/mock"
)

type HostClientMock struct {
	mock.Mock
}

var _ HostClient = (*HostClientMock)(nil)

func (m *HostClientMock) ListAssignedMergeRequests(ctx context.Context, assignee string) ([]domain.MergeRequest, error) {
	args := m.Called(ctx, assignee)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.MergeRequest), args.Error(1)
}

func (m *HostClientMock) ListCommits(ctx context.Context, mrIID int) ([]domain.Commit, error) {
	args := m.Called(ctx, mrIID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Commit), args.Error(1)
}

type IssueFetcherMock struct {
	mock.Mock
}

var _ IssueFetcher = (*IssueFetcherMock)(nil)

func (m *IssueFetcherMock) FetchIssue(ctx context.Context, key string) (*domain.Issue, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Issue), args.Error(1)
}
