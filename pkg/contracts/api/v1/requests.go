// Package api contains API contract definitions for the collections dashboard.
// Version v1 represents the current stable API version.
package api

import (
	"fusiondash/pkg/contracts/domain"
)

// DashboardRequest carries the filter and paging query parameters of a dashboard request.
type DashboardRequest struct {
	Region  string `json:"region" query:"region" validate:"omitempty,max=256"`
	Bucket  string `json:"bucket" query:"bucket" validate:"omitempty,max=256"`
	Connect string `json:"connect" query:"connect" validate:"omitempty,oneof=All Connected 'Not Connected'"`
	Offset  int    `json:"offset" query:"offset" validate:"min=0"`
	Limit   int    `json:"limit" query:"limit" validate:"min=0,max=5000"`
}

// Selection converts the request filters into a domain selection.
func (r DashboardRequest) Selection() domain.Selection {
	return domain.Selection{
		Region:  r.Region,
		Bucket:  r.Bucket,
		Connect: domain.ConnectStatus(r.Connect),
	}.Normalize()
}

// ExportRequest selects the filtered rows to download and the file format.
type ExportRequest struct {
	DashboardRequest
	Format string `json:"format" query:"format" validate:"omitempty,oneof=csv xlsx"`
}

// SuccessResponse is the envelope for successful JSON responses.
type SuccessResponse struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
}
