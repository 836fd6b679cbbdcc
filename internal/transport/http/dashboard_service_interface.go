package http

import (
	"context"
	"io"

	"fusiondash/internal/exporter"
	"fusiondash/internal/services"
	"fusiondash/pkg/contracts/domain"
)

// DashboardServiceInterface defines the dashboard operations served over HTTP
type DashboardServiceInterface interface {
	DataFile() string
	Dashboard(ctx context.Context, sel domain.Selection, page services.Page) (*domain.DashboardView, error)
	Summary(ctx context.Context) (*domain.DashboardView, error)
	FilterOptions(ctx context.Context) (*domain.FilterOptions, error)
	Refresh(ctx context.Context) (*domain.RefreshResult, error)
	Export(ctx context.Context, sel domain.Selection, format exporter.Format, w io.Writer) error
}
