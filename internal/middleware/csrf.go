package middleware

import (
	"net/http"

	"github.com/damacus/bucket-console/internal/utils"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
)

// CSRF protects every form POST. The token is read from the X-CSRF-Token
// header or the hidden _csrf form field.
func CSRF(secure bool) echo.MiddlewareFunc {
	return echoMiddleware.CSRFWithConfig(echoMiddleware.CSRFConfig{
		TokenLookup:    "header:X-CSRF-Token,form:" + utils.CSRFFormField,
		ContextKey:     utils.ContextKeyCSRF,
		CookieName:     utils.CSRFCookieName,
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSecure:   secure,
		CookieSameSite: http.SameSiteStrictMode,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/health"
		},
	})
}
