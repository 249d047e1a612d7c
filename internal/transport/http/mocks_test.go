package http

import (
	"context"

	"github.com/mkravets/mr-insight-service/internal/domain"
	"github.com/mkravets/mr-insight-service/internal/service"
	"github.com/stretchr/testify/mock"
)

type ScanRunnerMock struct {
	mock.Mock
}

var _ ScanRunner = (*ScanRunnerMock)(nil)

func (m *ScanRunnerMock) Scan(ctx context.Context, settings service.Settings) (*domain.ScanReport, error) {
	args := m.Called(ctx, settings)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.ScanReport), args.Error(1)
}
