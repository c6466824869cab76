package httpapi

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jbtolen/wastesort/internal/server/auth"
	"github.com/jbtolen/wastesort/internal/server/models"
)

const (
	localsUser    = "user"
	localsWarning = "apiUsageWarning"
)

// QuotaWarning is set on X-API-Warning and echoed in response bodies once a
// user's metered usage reaches their limit. The quota is soft: requests are
// never rejected for exceeding it.
const QuotaWarning = "Free API quota reached. Service continues but please upgrade."

// extractToken returns the session token, preferring the auth cookie over
// the Authorization header.
func (s *Server) extractToken(c *fiber.Ctx) string {
	if v := c.Cookies(s.config.CookieName); v != "" {
		return v
	}
	authz := c.Get(fiber.HeaderAuthorization)
	if len(authz) > 7 && strings.EqualFold(authz[:7], "bearer ") {
		return strings.TrimSpace(authz[7:])
	}
	return ""
}

func profileFromLocals(c *fiber.Ctx) *auth.PublicProfile {
	p, _ := c.Locals(localsUser).(*auth.PublicProfile)
	return p
}

// RequireAuth authenticates the request and stores the caller's fresh
// profile in locals. All failure modes answer 401 with a uniform body shape.
func (s *Server) RequireAuth(c *fiber.Ctx) error {
	token := s.extractToken(c)
	if token == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "Not authenticated")
	}

	claims, ok := s.auth.Verify(token)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}

	profile, err := s.auth.GetUserProfile(c.UserContext(), claims.Subject)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "User not found")
	}

	c.Locals(localsUser, profile)
	return c.Next()
}

// TrackUsage meters one call against the authenticated user's soft quota and
// records the endpoint statistic. It must run after RequireAuth. The
// increment is unconditional: reaching the limit only raises the warning
// header, it never blocks the request.
func (s *Server) TrackUsage(label string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		profile := profileFromLocals(c)
		if profile == nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Auth check required before usage tracking")
		}

		ctx := c.UserContext()

		// Self-heal a missing usage row before incrementing.
		if err := s.store.EnsureUsageRow(ctx, profile.ID, profile.Usage.Limit, profile.Usage.Used); err != nil {
			return err
		}
		if _, err := s.store.IncrementUsage(ctx, profile.ID, 1); err != nil {
			return err
		}

		path := label
		if path == "" {
			path = c.Route().Path
		}
		if err := s.store.RecordEndpointCall(ctx, c.Method(), path); err != nil {
			return err
		}

		refreshed, err := s.auth.GetUserProfile(ctx, profile.ID)
		if err == nil {
			c.Locals(localsUser, refreshed)
			c.Set("X-API-Usage", fmt.Sprintf("%d/%d", refreshed.Usage.Used, refreshed.Usage.Limit))
			if refreshed.Usage.Used >= refreshed.Usage.Limit {
				c.Locals(localsWarning, QuotaWarning)
				c.Set("X-API-Warning", QuotaWarning)
			}
		}

		return c.Next()
	}
}

// RequireAdmin rejects non-admin callers. Runs after RequireAuth.
func (s *Server) RequireAdmin(c *fiber.Ctx) error {
	profile := profileFromLocals(c)
	if profile == nil || profile.Role != models.RoleAdmin {
		return fiber.NewError(fiber.StatusForbidden, "Admin access required")
	}
	return c.Next()
}
