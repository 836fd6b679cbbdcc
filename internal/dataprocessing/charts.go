package dataprocessing

import (
	"fusiondash/pkg/contracts/domain"
)

// Chart titles and series names shown on the dashboard.
const (
	RegionChartTitle = "State-wise Collection vs POS"
	BucketChartTitle = "DPD Bucket-wise Collection"

	SeriesCollectionCr = "Collection Cr"
	SeriesPOSCr        = "POS Cr"
)

// RegionChart is a grouped bar chart of collection and POS per region.
func RegionChart(regions []domain.RegionAggregate, xLabel string) domain.ChartSpec {
	categories := make([]string, len(regions))
	collection := make([]float64, len(regions))
	pos := make([]float64, len(regions))
	for i, r := range regions {
		categories[i] = r.Region
		collection[i] = r.CollectionCr
		pos[i] = r.POSCr
	}
	return domain.ChartSpec{
		Title:      RegionChartTitle,
		XLabel:     xLabel,
		BarMode:    "group",
		Categories: categories,
		Series: []domain.ChartSeries{
			{Name: SeriesCollectionCr, Values: collection},
			{Name: SeriesPOSCr, Values: pos},
		},
	}
}

// BucketChart is a single-series bar chart of collection per bucket.
func BucketChart(buckets []domain.BucketAggregate, xLabel string) domain.ChartSpec {
	categories := make([]string, len(buckets))
	collection := make([]float64, len(buckets))
	for i, b := range buckets {
		categories[i] = b.Bucket
		collection[i] = b.CollectionCr
	}
	return domain.ChartSpec{
		Title:      BucketChartTitle,
		XLabel:     xLabel,
		BarMode:    "relative",
		Categories: categories,
		Series: []domain.ChartSeries{
			{Name: SeriesCollectionCr, Values: collection},
		},
	}
}
