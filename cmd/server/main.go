package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/damacus/bucket-console/internal/handlers"
	customMiddleware "github.com/damacus/bucket-console/internal/middleware"
	"github.com/damacus/bucket-console/internal/logger"
	"github.com/damacus/bucket-console/internal/renderer"
	"github.com/damacus/bucket-console/internal/services"
	"github.com/damacus/bucket-console/views"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bucket-console",
	Short: "Browser console for S3-compatible object storage",
	Long: `bucket-console serves a small web UI for browsing buckets, uploading
and downloading objects and managing folders on any S3-compatible backend.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.AddCommand(newServeCmd())

	if err := rootCmd.Execute(); err != nil {
		l, logErr := logger.New(&logger.Config{Level: "debug", Format: "console"})
		if logErr != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		l.Error("command failed", zap.Error(err))
		_ = l.Sync()
		os.Exit(1)
	}
}

// serverDeps is everything newServer wires into the router
type serverDeps struct {
	Console       *services.ConsoleService
	Flash         *services.FlashService
	Logger        *zap.Logger
	SecureCookies bool
}

func newServer(deps serverDeps) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	tmpl, err := renderer.New(views.FS)
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	e.Renderer = tmpl

	notifier := handlers.Notifier{Flash: deps.Flash, SecureCookies: deps.SecureCookies}
	bucketsHandler := handlers.NewBucketsHandler(deps.Console, notifier)
	objectsHandler := handlers.NewObjectsHandler(deps.Console, notifier)

	// Middleware
	e.Use(customMiddleware.RequestID())
	e.Use(customMiddleware.RequestLogger(deps.Logger))
	e.Use(middleware.Recover())
	e.Use(customMiddleware.SecurityHeaders())
	e.Use(customMiddleware.CSRF(deps.SecureCookies))
	e.Use(customMiddleware.Flash(deps.Flash))

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	// Buckets
	e.GET("/", bucketsHandler.ListBuckets)
	e.POST("/create_bucket", bucketsHandler.CreateBucket)
	e.POST("/delete_bucket/:bucket", bucketsHandler.DeleteBucket)

	// Object Browser
	e.GET("/bucket/:bucket", objectsHandler.BrowseBucket)
	e.POST("/upload/:bucket", objectsHandler.UploadObject)
	e.POST("/delete_file/:bucket/*", objectsHandler.DeleteObject)
	e.GET("/download/:bucket/*", objectsHandler.DownloadObject)
	e.POST("/create_folder/:bucket", objectsHandler.CreateFolder)
	e.POST("/delete_folder/:bucket", objectsHandler.DeleteFolder)
	e.POST("/copy_move/:bucket", objectsHandler.CopyMove)

	return e, nil
}
