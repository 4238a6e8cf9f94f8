package handlers

import (
	"net/http"

	"github.com/damacus/bucket-console/internal/models"
	"github.com/damacus/bucket-console/internal/services"
	"github.com/damacus/bucket-console/internal/utils"
	"github.com/labstack/echo/v4"
)

type BucketsHandler struct {
	console  *services.ConsoleService
	notifier Notifier
}

func NewBucketsHandler(console *services.ConsoleService, notifier Notifier) *BucketsHandler {
	return &BucketsHandler{console: console, notifier: notifier}
}

// ListBuckets renders the buckets page
func (h *BucketsHandler) ListBuckets(c echo.Context) error {
	buckets, failure := h.console.ListBuckets(c.Request().Context())

	rows := make([]models.BucketInfo, 0, len(buckets))
	for _, b := range buckets {
		row := models.BucketInfo{Name: b.Name, CreationDate: b.CreationDate}
		if b.HasSize {
			row.FormattedSize = utils.FormatBytes(b.Size)
		}
		rows = append(rows, row)
	}

	return c.Render(http.StatusOK, "buckets", pageData(c, map[string]interface{}{
		"Buckets": rows,
	}, failure))
}

// CreateBucket handles the creation of a new bucket
func (h *BucketsHandler) CreateBucket(c echo.Context) error {
	out := h.console.CreateBucket(c.Request().Context(), c.FormValue("bucket_name"))
	return h.notifier.Redirect(c, out)
}

// DeleteBucket handles removing an empty bucket
func (h *BucketsHandler) DeleteBucket(c echo.Context) error {
	out := h.console.DeleteBucket(c.Request().Context(), c.Param("bucket"))
	return h.notifier.Redirect(c, out)
}
