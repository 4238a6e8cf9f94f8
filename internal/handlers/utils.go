package handlers

import (
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/damacus/bucket-console/internal/middleware"
	"github.com/damacus/bucket-console/internal/services"
	"github.com/damacus/bucket-console/internal/utils"
	"github.com/labstack/echo/v4"
)

// Notifier delivers mutation outcomes as a flash cookie plus a 303 redirect
type Notifier struct {
	Flash         *services.FlashService
	SecureCookies bool
}

// Redirect stores the outcome's notification and sends the browser to its target
func (n Notifier) Redirect(c echo.Context, out services.Outcome) error {
	if err := middleware.SetFlash(c, n.Flash, out.Notification, n.SecureCookies); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, out.Redirect)
}

// withPending prepends a flash that arrived with this request to n. A
// redirect replaces the single flash cookie, so it would otherwise be lost.
func withPending(c echo.Context, n services.Notification) services.Notification {
	if pending := middleware.PendingFlash(c); pending != nil && pending.Message != "" {
		n.Message = pending.Message + " " + n.Message
	}
	return n
}

// pageData adds the CSRF token and pending notifications to template data
func pageData(c echo.Context, data map[string]interface{}, inline *services.Notification) map[string]interface{} {
	var notifications []services.Notification
	if pending := middleware.PendingFlash(c); pending != nil {
		notifications = append(notifications, *pending)
	}
	if inline != nil {
		notifications = append(notifications, *inline)
	}

	data["CSRFToken"], _ = c.Get(utils.ContextKeyCSRF).(string)
	data["Notifications"] = notifications
	return data
}

// objectKey returns the wildcard key segment. Echo hands it over still
// escaped when the request path needed a raw form.
func objectKey(c echo.Context) string {
	key := c.Param("*")
	if c.Request().URL.RawPath == "" {
		return key
	}
	if unescaped, err := url.PathUnescape(key); err == nil {
		return unescaped
	}
	return key
}

// Helper functions for file type detection

func getContentTypeFromExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	types := map[string]string{
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".png":  "image/png",
		".gif":  "image/gif",
		".webp": "image/webp",
		".svg":  "image/svg+xml",
		".txt":  "text/plain",
		".md":   "text/markdown",
		".csv":  "text/csv",
		".json": "application/json",
		".xml":  "application/xml",
		".html": "text/html",
		".pdf":  "application/pdf",
		".mp4":  "video/mp4",
		".mp3":  "audio/mpeg",
		".zip":  "application/zip",
		".tar":  "application/x-tar",
		".gz":   "application/gzip",
	}
	if t, ok := types[ext]; ok {
		return t
	}
	return "application/octet-stream"
}

// fileKind is the short label shown in the type column
func fileKind(contentType, filename string) string {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return "image"
	case strings.HasPrefix(contentType, "video/"), strings.HasPrefix(contentType, "audio/"):
		return "media"
	case isTextType(contentType):
		return "text"
	case isArchiveType(contentType, filename):
		return "archive"
	case contentType == "application/pdf":
		return "document"
	}
	return "file"
}

func isTextType(contentType string) bool {
	return strings.HasPrefix(contentType, "text/") ||
		contentType == "application/json" ||
		contentType == "application/xml"
}

func isArchiveType(contentType string, filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return contentType == "application/zip" ||
		contentType == "application/x-tar" ||
		contentType == "application/gzip" ||
		ext == ".rar" || ext == ".7z"
}
