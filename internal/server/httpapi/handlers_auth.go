package httpapi

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

type credentialsRequest struct {
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FirstName *string `json:"firstName"`
}

func (s *Server) sessionCookie(token string) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     s.config.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.auth.TokenValidity() / time.Second),
		HTTPOnly: true,
		Secure:   s.config.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}

func (s *Server) handleRegister(c *fiber.Ctx) error {
	var body credentialsRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if body.Email == "" || body.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Email and password required")
	}

	profile, err := s.auth.Register(c.UserContext(), body.Email, body.Password, body.FirstName)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"id":        profile.ID,
		"email":     profile.Email,
		"role":      profile.Role,
		"firstName": profile.FirstName,
	})
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	var body credentialsRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if body.Email == "" || body.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Email and password required")
	}

	token, profile, err := s.auth.Login(c.UserContext(), body.Email, body.Password)
	if err != nil {
		return err
	}

	c.Cookie(s.sessionCookie(token))

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"email": profile.Email,
		"role":  profile.Role,
		"token": token,
	})
}

func (s *Server) handleMe(c *fiber.Ctx) error {
	profile := profileFromLocals(c)

	var warning any
	if w, ok := c.Locals(localsWarning).(string); ok {
		warning = w
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"email":   profile.Email,
		"role":    profile.Role,
		"usage":   profile.Usage,
		"warning": warning,
	})
}

func (s *Server) handleLogout(c *fiber.Ctx) error {
	cookie := s.sessionCookie("")
	cookie.MaxAge = -1
	cookie.Expires = time.Unix(0, 0)
	c.Cookie(cookie)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}
