package services

import (
	"errors"

	"fusiondash/internal/dataprocessing"
)

// Dashboard service errors
var (
	// Data file errors
	ErrFileNotFound           = errors.New("excel file not found")
	ErrSpreadsheetUnparseable = dataprocessing.ErrUnparseable
	ErrColumnNotFound         = dataprocessing.ErrColumnNotFound

	// Request errors
	ErrInvalidSelection  = errors.New("invalid selection")
	ErrUnsupportedFormat = errors.New("unsupported export format")
)
