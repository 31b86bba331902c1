package webchat

import (
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/papercomputeco/ollamachat/pkg/config"
)

// cookieRetention is how long preference cookies are kept by the browser.
const cookieRetention = 365 * 24 * time.Hour

// preferencesFromCookies overlays the request's preference cookies on the
// server defaults. Unparseable cookies are ignored.
func (s *Server) preferencesFromCookies(c *fiber.Ctx) config.Preferences {
	prefs := s.Preferences()

	for _, key := range config.Keys {
		raw := c.Cookies(key)
		if raw == "" {
			continue
		}
		value, err := url.QueryUnescape(raw)
		if err != nil {
			value = raw
		}
		if err := prefs.Set(key, value); err != nil {
			s.logger.Debug("ignoring preference cookie", zap.String("key", key), zap.Error(err))
		}
	}

	return prefs
}

// setPreferenceCookie stores one preference in the browser.
func setPreferenceCookie(c *fiber.Ctx, key, value string) {
	c.Cookie(&fiber.Cookie{
		Name:     key,
		Value:    url.QueryEscape(value),
		Path:     "/",
		Expires:  time.Now().Add(cookieRetention),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// handleGetPreferences returns the effective preferences for this browser.
func (s *Server) handleGetPreferences(c *fiber.Ctx) error {
	return c.JSON(s.preferencesFromCookies(c).Values())
}

// handlePutPreferences validates the supplied keys and stores each of them
// as a cookie. Keys not present in the body are left untouched.
func (s *Server) handlePutPreferences(c *fiber.Ctx) error {
	var updates map[string]string
	if err := c.BodyParser(&updates); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorBody("invalid request body"))
	}

	prefs := s.preferencesFromCookies(c)
	for key, value := range updates {
		if err := prefs.Set(key, value); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(errorBody(err.Error()))
		}
	}

	for key := range updates {
		value, _ := prefs.Get(key)
		setPreferenceCookie(c, key, value)
	}

	s.logger.Debug("preferences updated", zap.Int("keys", len(updates)))
	return c.JSON(prefs.Values())
}
