package middleware

import (
	"net/http"

	"github.com/damacus/bucket-console/internal/services"
	"github.com/damacus/bucket-console/internal/utils"
	"github.com/labstack/echo/v4"
)

// Flash opens the pending notification cookie, exposes it to handlers and
// clears it so it is shown only once.
func Flash(flashService *services.FlashService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(utils.FlashCookieName)
			if err != nil {
				return next(c)
			}

			// Clear it whether or not it opens; a tampered cookie is dropped
			c.SetCookie(&http.Cookie{
				Name:     utils.FlashCookieName,
				Value:    "",
				Path:     "/",
				MaxAge:   -1,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})

			if n, err := flashService.Open(cookie.Value); err == nil {
				c.Set(utils.ContextKeyFlash, n)
			}

			return next(c)
		}
	}
}

// SetFlash seals n into the notification cookie for the next request
func SetFlash(c echo.Context, flashService *services.FlashService, n services.Notification, secure bool) error {
	sealed, err := flashService.Seal(n)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     utils.FlashCookieName,
		Value:    sealed,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// PendingFlash returns the notification opened by Flash, if any
func PendingFlash(c echo.Context) *services.Notification {
	n, _ := c.Get(utils.ContextKeyFlash).(*services.Notification)
	return n
}
