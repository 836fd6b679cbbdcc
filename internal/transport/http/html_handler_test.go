package http

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fusiondash/internal/dataprocessing"
	apierrors "fusiondash/internal/errors"
	appmw "fusiondash/internal/middleware"
	"fusiondash/internal/services"
	"fusiondash/pkg/contracts/domain"
)

func serveDashboardPage(t *testing.T, svc *MockDashboardService, target string) *httptest.ResponseRecorder {
	t.Helper()
	logger := testLogger()
	h := NewHTMLHandler(svc, appmw.NewValidator(), logger, apierrors.NewErrorHandler(logger, false))

	rec := httptest.NewRecorder()
	h.ServeDashboard(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHTMLHandler_ServeDashboard(t *testing.T) {
	svc := new(MockDashboardService)
	sel := domain.Selection{Region: "MH", Bucket: "All", Connect: domain.ConnectConnected}
	svc.On("Dashboard", sel, services.Page{}).Return(sampleView(), nil)
	svc.On("FilterOptions").Return(&domain.FilterOptions{
		Regions: []string{"All", "KA", "MH"},
		Buckets: []string{"All", "0-30"},
		Connect: domain.ConnectStatuses,
	}, nil)

	rec := serveDashboardPage(t, svc, "/?region=MH&connect=Connected")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	page := rec.Body.String()
	for _, want := range []string{
		"Fusion Finance Recovery Dashboard",
		"State | DPD | Connect Based MIS Dashboard",
		"No of Loans", "Collection (Cr)", "Default (Cr)",
		"State-wise Collection vs POS",
		`<option value="MH" selected>MH</option>`,
		`<option value="Connected" selected>Connected</option>`,
		"<td>12345678</td>",
		"Total Records: 1",
		"/api/dashboard/export?",
	} {
		assert.Contains(t, page, want)
	}
	assert.NotContains(t, page, `role="alert"`)
	svc.AssertExpectations(t)
}

func TestHTMLHandler_FatalErrorsShowOnlyTheMessage(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantText   string
	}{
		{
			name:       "missing file",
			err:        fmt.Errorf("%w: %s", services.ErrFileNotFound, testDataFile),
			wantStatus: http.StatusNotFound,
			wantText:   "Excel file not found. Check file name &amp; location.",
		},
		{
			name:       "missing columns",
			err:        &dataprocessing.ColumnNotFoundError{Roles: []string{"State", "DPD"}, Columns: []string{"Area", "Days"}},
			wantStatus: http.StatusUnprocessableEntity,
			wantText:   "State / DPD column not found in Excel",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockDashboardService)
			svc.On("Dashboard", domain.AllSelection(), services.Page{}).Return(nil, tt.err)

			rec := serveDashboardPage(t, svc, "/")

			assert.Equal(t, tt.wantStatus, rec.Code)
			page := rec.Body.String()
			assert.Contains(t, page, tt.wantText)
			assert.Contains(t, page, "Fusion Finance Recovery Dashboard")
			assert.NotContains(t, page, "Total Records")
			assert.NotContains(t, page, "No of Loans")
			svc.AssertNotCalled(t, "FilterOptions")
		})
	}
}

func TestHTMLHandler_InvalidQuery(t *testing.T) {
	svc := new(MockDashboardService)

	rec := serveDashboardPage(t, svc, "/?limit=ten")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `role="alert"`)
	svc.AssertNotCalled(t, "Dashboard")
}

func TestChartViews(t *testing.T) {
	charts := chartViews([]domain.ChartSpec{{
		Title:      "State-wise Collection vs POS",
		Categories: []string{"KA", "MH"},
		Series: []domain.ChartSeries{
			{Name: "Collection Cr", Values: []float64{0.5, 3.23}},
			{Name: "POS Cr", Values: []float64{1.5, 8}},
		},
	}})

	require.Len(t, charts, 1)
	assert.Equal(t, []string{"Collection Cr", "POS Cr"}, charts[0].Series)
	require.Len(t, charts[0].Groups, 2)

	mh := charts[0].Groups[1]
	assert.Equal(t, "MH", mh.Category)
	assert.Equal(t, 100.0, mh.Bars[1].Width)
	assert.InDelta(t, 40.375, mh.Bars[0].Width, 1e-9)
	assert.Equal(t, "3.23", mh.Bars[0].Value)
}

func TestCardViewsAndCells(t *testing.T) {
	cards := cardViews(domain.KPIs{Loans: 20, CollectionCr: 3.7}.Cards())
	assert.Equal(t, cardView{Label: "No of Loans", Value: "20"}, cards[0])
	assert.Equal(t, cardView{Label: "Collection (Cr)", Value: "3.70"}, cards[5])

	assert.Equal(t, "", formatCell(nil))
	assert.Equal(t, "4.5", formatCell(4.5))
	assert.Equal(t, "MH", formatCell("MH"))
}
