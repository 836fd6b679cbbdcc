package domain

// SelectAll is the unrestricted value for every filter.
const SelectAll = "All"

// ConnectStatus is the tri-state call-connect filter.
type ConnectStatus string

const (
	ConnectAll          ConnectStatus = "All"
	ConnectConnected    ConnectStatus = "Connected"
	ConnectNotConnected ConnectStatus = "Not Connected"
)

// ConnectStatuses lists the connect options in display order.
var ConnectStatuses = []ConnectStatus{ConnectAll, ConnectConnected, ConnectNotConnected}

// Valid reports whether s is one of the known connect options.
func (s ConnectStatus) Valid() bool {
	switch s {
	case ConnectAll, ConnectConnected, ConnectNotConnected:
		return true
	}
	return false
}

// Selection is the set of filters chosen for one dashboard request.
type Selection struct {
	Region  string        `json:"region"`
	Bucket  string        `json:"bucket"`
	Connect ConnectStatus `json:"connect"`
}

// AllSelection returns the unrestricted selection.
func AllSelection() Selection {
	return Selection{Region: SelectAll, Bucket: SelectAll, Connect: ConnectAll}
}

// Normalize fills empty fields with the unrestricted value.
func (s Selection) Normalize() Selection {
	if s.Region == "" {
		s.Region = SelectAll
	}
	if s.Bucket == "" {
		s.Bucket = SelectAll
	}
	if s.Connect == "" {
		s.Connect = ConnectAll
	}
	return s
}

// Roles holds the column names resolved for the region and bucket roles.
type Roles struct {
	Region string `json:"region_column"`
	Bucket string `json:"bucket_column"`
}

// KPIs are the eight scalar totals over a filtered record set.
// Counts are truncated sums; the Cr values are crore amounts rounded to two places.
type KPIs struct {
	Loans        int64   `json:"no_of_loans"`
	Dialed       int64   `json:"dialed"`
	Connected    int64   `json:"connected"`
	PTP          int64   `json:"ptp"`
	Intensity    int64   `json:"intensity"`
	CollectionCr float64 `json:"collection_cr"`
	POSCr        float64 `json:"pos_cr"`
	DefaultCr    float64 `json:"default_cr"`
}

// KPICard is a labelled KPI value ready for display.
type KPICard struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Crore bool    `json:"crore"`
}

// Cards returns the KPIs in display order with their fixed labels.
func (k KPIs) Cards() []KPICard {
	return []KPICard{
		{Key: "no_of_loans", Label: "No of Loans", Value: float64(k.Loans)},
		{Key: "dialed", Label: "Dialed", Value: float64(k.Dialed)},
		{Key: "connected", Label: "Connected", Value: float64(k.Connected)},
		{Key: "ptp", Label: "PTP", Value: float64(k.PTP)},
		{Key: "intensity", Label: "Intensity", Value: float64(k.Intensity)},
		{Key: "collection_cr", Label: "Collection (Cr)", Value: k.CollectionCr, Crore: true},
		{Key: "pos_cr", Label: "POS (Cr)", Value: k.POSCr, Crore: true},
		{Key: "default_cr", Label: "Default (Cr)", Value: k.DefaultCr, Crore: true},
	}
}

// RegionAggregate is one row of the state-wise summary.
type RegionAggregate struct {
	Region               string  `json:"region"`
	CollectionAmount     float64 `json:"collection_amount"`
	PrincipalOutstanding float64 `json:"principal_outstanding"`
	CollectionCr         float64 `json:"collection_cr"`
	POSCr                float64 `json:"pos_cr"`
}

// BucketAggregate is one row of the DPD bucket summary.
type BucketAggregate struct {
	Bucket           string  `json:"bucket"`
	CollectionAmount float64 `json:"collection_amount"`
	CollectionCr     float64 `json:"collection_cr"`
}

// ChartSeries is one named series of bar values aligned with ChartSpec.Categories.
type ChartSeries struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// ChartSpec describes a bar chart independently of any rendering library.
type ChartSpec struct {
	Title      string        `json:"title"`
	XLabel     string        `json:"x_label"`
	BarMode    string        `json:"bar_mode"`
	Categories []string      `json:"categories"`
	Series     []ChartSeries `json:"series"`
}

// TablePage is a window over the filtered rows.
type TablePage struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
	Offset  int              `json:"offset"`
	Limit   int              `json:"limit"`
	Total   int              `json:"total"`
}

// DashboardView is everything a dashboard page needs for one selection.
type DashboardView struct {
	Title        string            `json:"title"`
	Caption      string            `json:"caption"`
	Source       string            `json:"source"`
	Selection    Selection         `json:"selection"`
	Roles        Roles             `json:"roles"`
	KPIs         KPIs              `json:"kpis"`
	Cards        []KPICard         `json:"cards"`
	Regions      []RegionAggregate `json:"region_summary"`
	Buckets      []BucketAggregate `json:"bucket_summary"`
	Charts       []ChartSpec       `json:"charts"`
	Table        TablePage         `json:"table"`
	TotalRecords int               `json:"total_records"`
}

// FilterOptions are the choices offered by each selection control.
type FilterOptions struct {
	Regions  []string        `json:"regions"`
	Buckets  []string        `json:"buckets"`
	Connect  []ConnectStatus `json:"connect"`
	Roles    Roles           `json:"roles"`
	RowCount int             `json:"row_count"`
}

// RefreshResult reports the outcome of a cache refresh.
type RefreshResult struct {
	Source   string `json:"source"`
	RowCount int    `json:"row_count"`
	Columns  int    `json:"columns"`
}
