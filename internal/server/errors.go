package server

import (
	"errors"
	"net/http"

	"github.com/nguyentranbao-ct/swipe-preview/internal/models"
	"github.com/nguyentranbao-ct/swipe-preview/internal/repo/catalog"
	pkgmdw "github.com/nguyentranbao-ct/swipe-preview/internal/server/middleware"
)

// responseError maps domain errors to the response envelope. Errors it does
// not know are returned unchanged and end up as 500.
func responseError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, models.ErrNotFound):
		return pkgmdw.NewResponseError(http.StatusNotFound, "product_not_found", err)
	case errors.Is(err, models.ErrAlreadyLoading):
		return pkgmdw.NewResponseError(http.StatusConflict, "already_loading", err)
	case errors.Is(err, models.ErrNoVideo):
		return pkgmdw.NewResponseError(http.StatusConflict, "no_video", err)
	case errors.Is(err, models.ErrShuttingDown):
		return pkgmdw.NewResponseError(http.StatusServiceUnavailable, "shutting_down", err)
	case errors.Is(err, catalog.ErrNotConfigured):
		return pkgmdw.NewResponseError(http.StatusServiceUnavailable, "catalog_not_configured", err)
	}
	return err
}
