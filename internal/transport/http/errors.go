package http

import (
	"errors"

	"fusiondash/internal/dataprocessing"
	apierrors "fusiondash/internal/errors"
	"fusiondash/internal/services"
)

// serviceError converts dashboard service errors into API errors.
// Errors it does not know are returned unchanged for the ErrorHandler to classify.
func serviceError(err error, dataFile string) error {
	var colErr *dataprocessing.ColumnNotFoundError
	switch {
	case errors.As(err, &colErr):
		return apierrors.ColumnNotFoundError(colErr.Error(), colErr.Columns)
	case errors.Is(err, services.ErrFileNotFound):
		return apierrors.FileNotFoundError(dataFile)
	case errors.Is(err, services.ErrSpreadsheetUnparseable):
		return apierrors.SpreadsheetUnparseableError(err)
	case errors.Is(err, services.ErrInvalidSelection):
		return apierrors.ErrValidation("connect", err.Error())
	case errors.Is(err, services.ErrUnsupportedFormat):
		return apierrors.ErrValidation("format", err.Error())
	}
	return err
}
