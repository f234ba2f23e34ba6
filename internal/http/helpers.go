package http

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// storeTimeout bounds every store round trip issued by a handler.
const storeTimeout = 7 * time.Second

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// withStoreTimeout derives the context for a handler's store calls.
func withStoreTimeout(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), storeTimeout)
}

// themeFrom reads the theme cookie, defaulting to the system preference.
func themeFrom(r *http.Request) string {
	c, err := r.Cookie(themeCookie)
	if err != nil {
		return themeSystem
	}
	if t, ok := parseTheme(c.Value); ok {
		return t
	}
	return themeSystem
}

const (
	themeCookie = "theme"
	themeLight  = "light"
	themeDark   = "dark"
	themeSystem = "system"
)

func parseTheme(s string) (string, bool) {
	switch t := strings.ToLower(strings.TrimSpace(s)); t {
	case themeLight, themeDark, themeSystem:
		return t, true
	default:
		return "", false
	}
}
