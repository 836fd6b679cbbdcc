package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"

	apierrors "fusiondash/internal/errors"
	appmw "fusiondash/internal/middleware"
	"fusiondash/internal/services"
	api "fusiondash/pkg/contracts/api/v1"
	"fusiondash/pkg/contracts/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// pageTemplates is parsed once; a broken template fails at startup.
var pageTemplates = template.Must(template.New("").Funcs(template.FuncMap{
	"cell": formatCell,
}).ParseFS(templateFS, "templates/*.html"))

type pageData struct {
	Title     string
	Caption   string
	Error     string
	Selection domain.Selection
	Options   *domain.FilterOptions
	Cards     []cardView
	Charts    []chartView
	Table     domain.TablePage
	Total     int
	ExportCSV string
	ExportXLS string
}

type cardView struct {
	Label string
	Value string
}

type chartView struct {
	Title  string
	XLabel string
	Series []string
	Groups []barGroup
}

type barGroup struct {
	Category string
	Bars     []bar
}

type bar struct {
	Series int
	Value  string
	Width  float64
}

// HTMLHandler serves the server-rendered dashboard page
type HTMLHandler struct {
	service      DashboardServiceInterface
	validator    *appmw.Validator
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewHTMLHandler creates a new dashboard page handler
func NewHTMLHandler(service DashboardServiceInterface, validator *appmw.Validator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *HTMLHandler {
	return &HTMLHandler{
		service:      service,
		validator:    validator,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("component", "html_handler")),
	}
}

// ServeDashboard handles GET /
func (h *HTMLHandler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	data := pageData{Title: services.DashboardTitle, Caption: services.DashboardCaption}

	var req api.DashboardRequest
	if err := h.validator.BindQuery(r, &req); err != nil {
		h.renderError(w, r, data, err)
		return
	}
	data.Selection = req.Selection()

	view, err := h.service.Dashboard(r.Context(), data.Selection, services.Page{Offset: req.Offset, Limit: req.Limit})
	if err != nil {
		h.renderError(w, r, data, serviceError(err, h.service.DataFile()))
		return
	}
	opts, err := h.service.FilterOptions(r.Context())
	if err != nil {
		h.renderError(w, r, data, serviceError(err, h.service.DataFile()))
		return
	}

	data.Options = opts
	data.Cards = cardViews(view.Cards)
	data.Charts = chartViews(view.Charts)
	data.Table = view.Table
	data.Total = view.TotalRecords
	data.ExportCSV = exportLink(data.Selection, "csv")
	data.ExportXLS = exportLink(data.Selection, "xlsx")

	h.render(w, r, http.StatusOK, data)
}

func (h *HTMLHandler) renderError(w http.ResponseWriter, r *http.Request, data pageData, err error) {
	problem := h.errorHandler.ErrorToProblem(err, r)
	h.logger.WarnContext(r.Context(), "dashboard page unavailable",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.Int("status", problem.Status),
		slog.String("error", err.Error()))

	data.Error = problem.Detail
	h.render(w, r, problem.Status, data)
}

func (h *HTMLHandler) render(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, "dashboard.html", data); err != nil {
		h.logger.ErrorContext(r.Context(), "template execution failed", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func cardViews(cards []domain.KPICard) []cardView {
	out := make([]cardView, len(cards))
	for i, c := range cards {
		value := strconv.FormatFloat(c.Value, 'f', 0, 64)
		if c.Crore {
			value = strconv.FormatFloat(c.Value, 'f', 2, 64)
		}
		out[i] = cardView{Label: c.Label, Value: value}
	}
	return out
}

// chartViews scales every bar against the largest value in its chart.
func chartViews(specs []domain.ChartSpec) []chartView {
	out := make([]chartView, 0, len(specs))
	for _, spec := range specs {
		cv := chartView{Title: spec.Title, XLabel: spec.XLabel}

		var peak float64
		for _, s := range spec.Series {
			cv.Series = append(cv.Series, s.Name)
			for _, v := range s.Values {
				if v > peak {
					peak = v
				}
			}
		}

		for i, category := range spec.Categories {
			g := barGroup{Category: category}
			for si, s := range spec.Series {
				var v float64
				if i < len(s.Values) {
					v = s.Values[i]
				}
				width := 0.0
				if peak > 0 && v > 0 {
					width = v / peak * 100
				}
				g.Bars = append(g.Bars, bar{Series: si, Value: strconv.FormatFloat(v, 'f', 2, 64), Width: width})
			}
			cv.Groups = append(cv.Groups, g)
		}
		out = append(out, cv)
	}
	return out
}

func exportLink(sel domain.Selection, format string) string {
	q := url.Values{}
	q.Set("format", format)
	q.Set("region", sel.Region)
	q.Set("bucket", sel.Bucket)
	q.Set("connect", string(sel.Connect))
	return "/api/dashboard/export?" + q.Encode()
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		return x
	}
	return fmt.Sprint(v)
}
