package domain

import (
	"context"
	"errors"
)

// Service exposes tenant dashboard data.
type Service interface {
	GetSummary(ctx context.Context) (Summary, error)
	GetRevenueSeries(ctx context.Context, months int) (RevenueSeriesResponse, error)
	ListActivity(ctx context.Context, limit int) (ActivityResponse, error)
}

var ErrInvalidTenant = errors.New("invalid_tenant")
