package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"fusiondash/internal/config"
	"fusiondash/internal/dataprocessing"
	apierrors "fusiondash/internal/errors"
	"fusiondash/internal/exporter"
	"fusiondash/internal/infrastructure"
	"fusiondash/pkg/contracts/domain"
	"fusiondash/pkg/contracts/events"
)

// Fixed page labels.
const (
	DashboardTitle   = "Fusion Finance Recovery Dashboard"
	DashboardCaption = "State | DPD | Connect Based MIS Dashboard"
)

// Notifier pushes events to connected dashboards.
type Notifier interface {
	Broadcast(messageType string, data interface{})
}

// DashboardConfig configures a DashboardService.
type DashboardConfig struct {
	DataFile    string
	PageSize    int
	MaxPageSize int
}

// Page selects a window of filtered rows. Limit 0 means the default page size.
type Page struct {
	Offset int
	Limit  int
}

// DashboardService turns the configured allocation file into dashboard views.
type DashboardService struct {
	cfg      DashboardConfig
	cache    *TableCache
	notifier Notifier
	metrics  *infrastructure.BusinessMetrics
	tracer   trace.Tracer
	logger   *slog.Logger
}

// NewDashboardService creates a dashboard service. notifier and metrics may be nil.
func NewDashboardService(cfg DashboardConfig, cache *TableCache, notifier Notifier, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = infrastructure.NewNoopBusinessMetrics()
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 100
	}
	if cfg.MaxPageSize < cfg.PageSize {
		cfg.MaxPageSize = cfg.PageSize
	}

	logger.Info("DashboardService initialized",
		slog.String("data_file", cfg.DataFile),
		slog.Int("page_size", cfg.PageSize))

	return &DashboardService{
		cfg:      cfg,
		cache:    cache,
		notifier: notifier,
		metrics:  metrics,
		tracer:   otel.Tracer(infrastructure.ServiceName + "/services"),
		logger:   logger.With(slog.String("component", "dashboard_service")),
	}
}

// DataFile returns the path of the allocation file.
func (s *DashboardService) DataFile() string {
	return s.cfg.DataFile
}

// CacheStats returns the table cache counters.
func (s *DashboardService) CacheStats() CacheStats {
	return s.cache.Stats()
}

// dataset loads the table and resolves its role columns.
func (s *DashboardService) dataset(ctx context.Context) (*dataprocessing.Table, domain.Roles, error) {
	if !config.FileExists(s.cfg.DataFile) {
		return nil, domain.Roles{}, fmt.Errorf("%w: %s", ErrFileNotFound, s.cfg.DataFile)
	}

	t, err := s.cache.GetOrLoad(ctx, s.cfg.DataFile)
	if err != nil {
		return nil, domain.Roles{}, err
	}

	roles, err := dataprocessing.ResolveRoles(t)
	if err != nil {
		return nil, domain.Roles{}, err
	}
	return t, roles, nil
}

func (s *DashboardService) compute(ctx context.Context, sel domain.Selection) (*dataprocessing.Result, domain.Roles, error) {
	sel = sel.Normalize()
	if !sel.Connect.Valid() {
		return nil, domain.Roles{}, fmt.Errorf("%w: unknown connect status %q", ErrInvalidSelection, sel.Connect)
	}

	t, roles, err := s.dataset(ctx)
	if err != nil {
		return nil, domain.Roles{}, err
	}

	res, err := dataprocessing.Apply(t, roles, sel)
	if err != nil {
		return nil, domain.Roles{}, err
	}
	return res, roles, nil
}

// Dashboard builds the full view for a selection. Any data error returns no view.
func (s *DashboardService) Dashboard(ctx context.Context, sel domain.Selection, page Page) (*domain.DashboardView, error) {
	ctx, span := s.tracer.Start(ctx, "DashboardService.Dashboard",
		trace.WithAttributes(
			attribute.String("selection.region", sel.Region),
			attribute.String("selection.bucket", sel.Bucket),
			attribute.String("selection.connect", string(sel.Connect)),
		))
	defer span.End()

	sel = sel.Normalize()
	res, roles, err := s.compute(ctx, sel)
	if err != nil {
		s.fail(ctx, span, "dashboard", err)
		return nil, err
	}

	view := s.buildView(sel, roles, res)
	view.Table = s.page(res.Filtered, page)

	s.metrics.DashboardViews.Add(ctx, 1, metric.WithAttributes(attribute.String("connect", string(sel.Connect))))
	s.metrics.RowsServed.Record(ctx, int64(res.Filtered.Len()))
	span.SetAttributes(attribute.Int("rows.filtered", res.Filtered.Len()))

	s.logger.DebugContext(ctx, "Dashboard computed",
		slog.String("region", sel.Region),
		slog.String("bucket", sel.Bucket),
		slog.String("connect", string(sel.Connect)),
		slog.Int("rows", res.Filtered.Len()))
	return view, nil
}

// Summary is the unfiltered view without table rows.
func (s *DashboardService) Summary(ctx context.Context) (*domain.DashboardView, error) {
	sel := domain.AllSelection()
	res, roles, err := s.compute(ctx, sel)
	if err != nil {
		return nil, err
	}
	view := s.buildView(sel, roles, res)
	view.Table = domain.TablePage{Columns: res.Filtered.Columns(), Rows: []map[string]any{}, Total: res.Filtered.Len()}
	return view, nil
}

func (s *DashboardService) buildView(sel domain.Selection, roles domain.Roles, res *dataprocessing.Result) *domain.DashboardView {
	return &domain.DashboardView{
		Title:     DashboardTitle,
		Caption:   DashboardCaption,
		Source:    s.cfg.DataFile,
		Selection: sel,
		Roles:     roles,
		KPIs:      res.KPIs,
		Cards:     res.KPIs.Cards(),
		Regions:   res.Regions,
		Buckets:   res.Buckets,
		Charts: []domain.ChartSpec{
			dataprocessing.RegionChart(res.Regions, roles.Region),
			dataprocessing.BucketChart(res.Buckets, roles.Bucket),
		},
		TotalRecords: res.Filtered.Len(),
	}
}

func (s *DashboardService) page(t *dataprocessing.Table, p Page) domain.TablePage {
	offset, limit := p.Offset, p.Limit
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = s.cfg.PageSize
	}
	if limit > s.cfg.MaxPageSize {
		limit = s.cfg.MaxPageSize
	}

	window := t.Slice(offset, limit)
	rows := make([]map[string]any, window.Len())
	for i := range rows {
		rows[i] = window.Record(i)
	}
	return domain.TablePage{
		Columns: t.Columns(),
		Rows:    rows,
		Offset:  offset,
		Limit:   limit,
		Total:   t.Len(),
	}
}

// FilterOptions lists the choices for each filter control.
func (s *DashboardService) FilterOptions(ctx context.Context) (*domain.FilterOptions, error) {
	t, roles, err := s.dataset(ctx)
	if err != nil {
		return nil, err
	}
	opts := dataprocessing.FilterOptions(t, roles)
	return &opts, nil
}

// Refresh drops the cached table and loads the file again. Connected
// dashboards are told about the outcome either way.
func (s *DashboardService) Refresh(ctx context.Context) (*domain.RefreshResult, error) {
	ctx, span := s.tracer.Start(ctx, "DashboardService.Refresh")
	defer span.End()

	s.cache.Invalidate(s.cfg.DataFile)

	t, _, err := s.dataset(ctx)
	if err != nil {
		s.metrics.DatasetRefreshes.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "failure")))
		s.fail(ctx, span, "refresh", err)
		s.broadcast(string(events.MessageTypeDatasetFailed), events.DatasetFailed{
			Source: s.cfg.DataFile,
			Code:   ErrorCode(err),
			Error:  err.Error(),
		})
		return nil, err
	}

	result := &domain.RefreshResult{
		Source:   s.cfg.DataFile,
		RowCount: t.Len(),
		Columns:  t.NumColumns(),
	}
	s.metrics.DatasetRefreshes.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "success")))
	s.broadcast(string(events.MessageTypeDatasetRefreshed), events.DatasetRefreshed{
		Source:   result.Source,
		RowCount: result.RowCount,
		Columns:  result.Columns,
	})

	s.logger.InfoContext(ctx, "Dataset refreshed",
		slog.String("path", result.Source),
		slog.Int("rows", result.RowCount))
	return result, nil
}

// Export writes the rows matching the selection to w in the given format.
func (s *DashboardService) Export(ctx context.Context, sel domain.Selection, format exporter.Format, w io.Writer) error {
	if format != exporter.FormatCSV && format != exporter.FormatXLSX {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	res, _, err := s.compute(ctx, sel)
	if err != nil {
		return err
	}

	start := time.Now()
	if err := exporter.Write(w, res.Filtered, format); err != nil {
		return apierrors.NewStorageError("export "+string(format), err).WithContext("path", s.cfg.DataFile)
	}

	s.metrics.ExportsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("format", string(format))))
	s.logger.InfoContext(ctx, "Filtered table exported",
		slog.String("format", string(format)),
		slog.Int("rows", res.Filtered.Len()),
		slog.Duration("duration", time.Since(start)))
	return nil
}

func (s *DashboardService) broadcast(messageType string, data interface{}) {
	if s.notifier != nil {
		s.notifier.Broadcast(messageType, data)
	}
}

func (s *DashboardService) fail(ctx context.Context, span trace.Span, action string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.metrics.RecordError(ctx, ErrorCode(err), "dashboard_service")
	s.logger.WarnContext(ctx, "Dashboard data unavailable",
		slog.String("action", action),
		slog.String("error", err.Error()))
}

// ErrorCode maps a service error to its API error code.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrFileNotFound):
		return apierrors.CodeFileNotFound
	case errors.Is(err, ErrSpreadsheetUnparseable):
		return apierrors.CodeSpreadsheetUnparseable
	case errors.Is(err, ErrColumnNotFound):
		return apierrors.CodeColumnNotFound
	case errors.Is(err, ErrInvalidSelection), errors.Is(err, ErrUnsupportedFormat):
		return apierrors.CodeValidationFailed
	}
	return apierrors.CodeInternal
}
