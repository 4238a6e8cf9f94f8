package main

import (
	"bytes"
	"html"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/damacus/bucket-console/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var csrfField = regexp.MustCompile(`name="_csrf" value="([^"]+)"`)

// browser drives a test server the way a user agent would: it keeps
// cookies and follows redirects.
type browser struct {
	t      *testing.T
	srv    *httptest.Server
	client *http.Client
	store  *services.MemoryStore
}

func newBrowser(t *testing.T, pageSize int) *browser {
	t.Helper()
	store := services.NewMemoryStore()
	b := newBrowserFor(t, store, pageSize)
	b.store = store
	return b
}

func newBrowserFor(t *testing.T, store services.ObjectStore, pageSize int) *browser {
	t.Helper()

	console := services.NewConsoleService(store, services.ConsoleConfig{PageSize: pageSize}, zap.NewNop())
	e, err := newServer(serverDeps{
		Console: console,
		Flash:   services.NewFlashService("test-secret"),
		Logger:  zap.NewNop(),
	})
	require.NoError(t, err)

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &browser{t: t, srv: srv, client: &http.Client{Jar: jar}}
}

func (b *browser) read(resp *http.Response) string {
	b.t.Helper()
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return html.UnescapeString(string(body))
}

// get returns the final response and its unescaped body
func (b *browser) get(path string) (*http.Response, string) {
	b.t.Helper()
	resp, err := b.client.Get(b.srv.URL + path)
	require.NoError(b.t, err)
	return resp, b.read(resp)
}

func (b *browser) csrfToken() string {
	b.t.Helper()
	_, body := b.get("/")
	m := csrfField.FindStringSubmatch(body)
	require.Len(b.t, m, 2, "buckets page must carry a CSRF token")
	return m[1]
}

// post submits a form with a valid CSRF token and follows the redirect
func (b *browser) post(path string, form url.Values) (*http.Response, string) {
	b.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	form.Set("_csrf", b.csrfToken())
	resp, err := b.client.PostForm(b.srv.URL+path, form)
	require.NoError(b.t, err)
	return resp, b.read(resp)
}

func (b *browser) upload(bucket, key, filename string, content []byte) (*http.Response, string) {
	b.t.Helper()
	token := b.csrfToken()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(b.t, w.WriteField("_csrf", token))
	require.NoError(b.t, w.WriteField("key", key))
	part, err := w.CreateFormFile("file", filename)
	require.NoError(b.t, err)
	_, err = part.Write(content)
	require.NoError(b.t, err)
	require.NoError(b.t, w.Close())

	resp, err := b.client.Post(b.srv.URL+"/upload/"+bucket, w.FormDataContentType(), &buf)
	require.NoError(b.t, err)
	return resp, b.read(resp)
}

// landedOn reports the path and query the browser ended up at
func landedOn(resp *http.Response) string {
	return resp.Request.URL.RequestURI()
}

func TestRoutes(t *testing.T) {
	b := newBrowser(t, 0)

	t.Run("Health", func(t *testing.T) {
		resp, body := b.get("/health")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "OK", body)
	})

	t.Run("Buckets Page", func(t *testing.T) {
		resp, body := b.get("/")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, "<h1>Buckets</h1>")
		assert.Contains(t, body, "No buckets.")
	})

	t.Run("Unknown Route", func(t *testing.T) {
		resp, _ := b.get("/nope")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("Request ID", func(t *testing.T) {
		resp, _ := b.get("/health")
		assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	})
}

func TestNewServerRegistersConsoleRoutes(t *testing.T) {
	e, err := newServer(serverDeps{
		Console: services.NewConsoleService(services.NewMemoryStore(), services.ConsoleConfig{}, nil),
		Flash:   services.NewFlashService(""),
		Logger:  zap.NewNop(),
	})
	require.NoError(t, err)

	registered := map[string]bool{}
	for _, r := range e.Routes() {
		registered[r.Method+" "+r.Path] = true
	}

	for _, route := range []string{
		"GET /health",
		"GET /",
		"GET /bucket/:bucket",
		"POST /create_bucket",
		"POST /delete_bucket/:bucket",
		"POST /upload/:bucket",
		"POST /delete_file/:bucket/*",
		"GET /download/:bucket/*",
		"POST /create_folder/:bucket",
		"POST /delete_folder/:bucket",
		"POST /copy_move/:bucket",
	} {
		assert.True(t, registered[route], route)
	}
}

func TestServeCommandFlags(t *testing.T) {
	cmd := newServeCmd()

	envDir := cmd.Flags().Lookup("env-dir")
	require.NotNil(t, envDir)
	assert.Equal(t, ".", envDir.DefValue)

	address := cmd.Flags().Lookup("address")
	require.NotNil(t, address)
	assert.Equal(t, "", address.DefValue)
	assert.True(t, strings.HasPrefix(cmd.Use, "serve"))
}
