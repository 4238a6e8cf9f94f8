package handlers

import (
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/damacus/bucket-console/internal/models"
	"github.com/damacus/bucket-console/internal/services"
	"github.com/damacus/bucket-console/internal/utils"
	"github.com/labstack/echo/v4"
)

type ObjectsHandler struct {
	console  *services.ConsoleService
	notifier Notifier
}

func NewObjectsHandler(console *services.ConsoleService, notifier Notifier) *ObjectsHandler {
	return &ObjectsHandler{console: console, notifier: notifier}
}

// BrowseBucket renders one page of the object browser
func (h *ObjectsHandler) BrowseBucket(c echo.Context) error {
	bucket := c.Param("bucket")
	prefix := c.QueryParam("prefix")

	res := h.console.Browse(c.Request().Context(), bucket, prefix, c.QueryParam("next_token"))
	if res.Redirect != "" {
		return h.notifier.Redirect(c, services.Outcome{Notification: withPending(c, *res.Notification), Redirect: res.Redirect})
	}

	folders := make([]models.FolderInfo, 0, len(res.Folders))
	for _, p := range res.Folders {
		folders = append(folders, models.FolderInfo{
			Name:   strings.TrimSuffix(strings.TrimPrefix(p, prefix), services.Delimiter),
			Prefix: p,
		})
	}

	objects := make([]models.ObjectInfo, 0, len(res.Objects))
	for _, obj := range res.Objects {
		contentType := obj.ContentType
		if contentType == "" {
			contentType = getContentTypeFromExt(obj.Key)
		}
		objects = append(objects, models.ObjectInfo{
			Key:           obj.Key,
			DisplayName:   strings.TrimPrefix(obj.Key, prefix),
			Size:          obj.Size,
			FormattedSize: utils.FormatFileSize(obj.Size),
			LastModified:  obj.LastModified,
			ContentType:   contentType,
			Kind:          fileKind(contentType, obj.Key),
		})
	}

	return c.Render(http.StatusOK, "browser", pageData(c, map[string]interface{}{
		"BucketName":  bucket,
		"Prefix":      prefix,
		"ParentPath":  services.EnclosingPrefix(prefix),
		"Objects":     objects,
		"Folders":     folders,
		"Breadcrumbs": buildBreadcrumbs(prefix),
		"NextToken":   res.NextCursor,
		"IsTruncated": res.IsTruncated,
	}, res.Notification))
}

func buildBreadcrumbs(prefix string) []models.Breadcrumb {
	var breadcrumbs []models.Breadcrumb
	if prefix == "" {
		return breadcrumbs
	}
	parts := strings.Split(strings.TrimSuffix(prefix, "/"), "/")
	path := ""
	for _, part := range parts {
		if part == "" {
			continue
		}
		path += part + "/"
		breadcrumbs = append(breadcrumbs, models.Breadcrumb{
			Name: part,
			Path: path,
		})
	}
	return breadcrumbs
}

// UploadObject streams a multipart file into the bucket
func (h *ObjectsHandler) UploadObject(c echo.Context) error {
	bucket := c.Param("bucket")
	in := services.UploadInput{Key: c.FormValue("key")}

	if file, err := c.FormFile("file"); err == nil {
		src, err := openUpload(&in, file)
		if err != nil {
			return h.notifier.Redirect(c, uploadUnreadable(bucket, file.Filename))
		}
		defer func() { _ = src.Close() }()
	}

	return h.notifier.Redirect(c, h.console.UploadObject(c.Request().Context(), bucket, in))
}

// openUpload attaches the multipart file to in. The caller closes the file.
func openUpload(in *services.UploadInput, file *multipart.FileHeader) (multipart.File, error) {
	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	in.Filename = file.Filename
	in.ContentType = file.Header.Get(echo.HeaderContentType)
	in.Size = file.Size
	in.Body = src
	return src, nil
}

func uploadUnreadable(bucket, filename string) services.Outcome {
	return services.Outcome{
		Notification: services.Notification{
			Severity: services.SeverityDanger,
			Message:  fmt.Sprintf("Could not read uploaded file '%s'.", filename),
		},
		Redirect: services.BrowseURL(bucket, ""),
	}
}

// DeleteObject handles deleting an object
func (h *ObjectsHandler) DeleteObject(c echo.Context) error {
	out := h.console.DeleteObject(c.Request().Context(), c.Param("bucket"), objectKey(c))
	return h.notifier.Redirect(c, out)
}

// DownloadObject streams an object as an attachment
func (h *ObjectsHandler) DownloadObject(c echo.Context) error {
	dl, out := h.console.Download(c.Request().Context(), c.Param("bucket"), objectKey(c))
	if out != nil {
		return h.notifier.Redirect(c, *out)
	}
	defer func() { _ = dl.Body.Close() }()

	contentType := dl.Object.ContentType
	if contentType == "" {
		contentType = getContentTypeFromExt(dl.Object.Key)
	}

	header := c.Response().Header()
	header.Set(echo.HeaderContentDisposition, mime.FormatMediaType("attachment", map[string]string{
		"filename": services.BaseName(dl.Object.Key),
	}))
	if dl.Object.Size > 0 {
		header.Set(echo.HeaderContentLength, strconv.FormatInt(dl.Object.Size, 10))
	}

	return c.Stream(http.StatusOK, contentType, dl.Body)
}

// CreateFolder writes a folder marker
func (h *ObjectsHandler) CreateFolder(c echo.Context) error {
	out := h.console.CreateFolder(c.Request().Context(), c.Param("bucket"), c.FormValue("folder_name"), c.QueryParam("current_prefix"))
	return h.notifier.Redirect(c, out)
}

// DeleteFolder removes everything under a prefix
func (h *ObjectsHandler) DeleteFolder(c echo.Context) error {
	out := h.console.DeleteFolder(c.Request().Context(), c.Param("bucket"), c.FormValue("prefix"))
	return h.notifier.Redirect(c, out)
}

// CopyMove copies or moves an object within the bucket
func (h *ObjectsHandler) CopyMove(c echo.Context) error {
	out := h.console.CopyMove(c.Request().Context(), c.Param("bucket"),
		c.FormValue("source_key"), c.FormValue("destination_key"), c.FormValue("operation"))
	return h.notifier.Redirect(c, out)
}
