package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/damacus/bucket-console/internal/services"
	"github.com/damacus/bucket-console/internal/utils"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifierRedirect(t *testing.T) {
	e := echo.New()
	flash := services.NewFlashService("secret")
	notifier := Notifier{Flash: flash, SecureCookies: true}

	req := httptest.NewRequest(http.MethodPost, "/create_bucket", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := notifier.Redirect(c, services.Outcome{
		Notification: services.Notification{Severity: services.SeveritySuccess, Message: "Bucket 'a' created successfully."},
		Redirect:     "/",
	})

	require.NoError(t, err)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	var cookie *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == utils.FlashCookieName {
			cookie = ck
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.Secure)
	assert.True(t, cookie.HttpOnly)

	n, err := flash.Open(cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, services.SeveritySuccess, n.Severity)
	assert.Equal(t, "Bucket 'a' created successfully.", n.Message)
}

func TestPageData_CollectsNotifications(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	pending := &services.Notification{Severity: services.SeveritySuccess, Message: "done"}
	inline := &services.Notification{Severity: services.SeverityDanger, Message: "Access denied."}
	c.Set(utils.ContextKeyFlash, pending)
	c.Set(utils.ContextKeyCSRF, "token-123")

	data := pageData(c, map[string]interface{}{"Title": "x"}, inline)

	assert.Equal(t, "x", data["Title"])
	assert.Equal(t, "token-123", data["CSRFToken"])
	assert.Equal(t, []services.Notification{*pending, *inline}, data["Notifications"])
}

func TestPageData_WithoutNotifications(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	data := pageData(c, map[string]interface{}{}, nil)

	assert.Equal(t, "", data["CSRFToken"])
	assert.Empty(t, data["Notifications"])
}

func TestObjectKey(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"Plain", "/k/b/file.txt", "file.txt"},
		{"Nested", "/k/b/a/b/c.txt", "a/b/c.txt"},
		{"Space", "/k/b/dir/my%20file.txt", "dir/my file.txt"},
		{"Encoded Slash", "/k/b/a%2Fb.txt", "a/b.txt"},
		{"Unicode", "/k/b/%E6%97%A5%E6%9C%AC.txt", "日本.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			var got string
			e.GET("/k/:bucket/*", func(c echo.Context) error {
				got = objectKey(c)
				return c.NoContent(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetContentTypeFromExt(t *testing.T) {
	assert.Equal(t, "image/png", getContentTypeFromExt("a/b/photo.PNG"))
	assert.Equal(t, "application/json", getContentTypeFromExt("data.json"))
	assert.Equal(t, "application/octet-stream", getContentTypeFromExt("noext"))
}

func TestFileKind(t *testing.T) {
	tests := []struct {
		contentType string
		filename    string
		want        string
	}{
		{"image/jpeg", "a.jpg", "image"},
		{"video/mp4", "a.mp4", "media"},
		{"audio/mpeg", "a.mp3", "media"},
		{"text/plain; charset=utf-8", "a.txt", "text"},
		{"application/json", "a.json", "text"},
		{"application/zip", "a.zip", "archive"},
		{"application/octet-stream", "a.7z", "archive"},
		{"application/pdf", "a.pdf", "document"},
		{"application/octet-stream", "a.bin", "file"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, fileKind(tt.contentType, tt.filename), tt.filename)
	}
}
