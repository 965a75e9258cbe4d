package middleware

import (
	"github.com/gofiber/fiber/v2"

	"docindex/internal/model"
)

const (
	// HeaderUserID carries the authenticated caller's user id.
	HeaderUserID = "X-User-ID"
	// HeaderOrgID carries the caller's organization id.
	HeaderOrgID = "X-Org-ID"
	// HeaderUserRole carries the caller's role ("admin" or "user").
	HeaderUserRole = "X-User-Role"
	// UserContextLocalKey is the key used to store the caller's UserContext in
	// Fiber's context locals.
	UserContextLocalKey = "user_context"
)

// UserContext extracts the caller identity headers set by the upstream
// authenticator into a model.UserContext and stores it in context locals.
//
// The middleware never rejects on its own: missing or malformed headers
// produce an incomplete UserContext, and every downstream operation fails
// closed on incompleteness.
func UserContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := model.UserContext{
			UserID:         c.Get(HeaderUserID),
			OrganizationID: c.Get(HeaderOrgID),
		}
		if role, ok := model.ParseRole(c.Get(HeaderUserRole)); ok {
			user.Role = role
		}
		c.Locals(UserContextLocalKey, user)
		return c.Next()
	}
}

// UserFromCtx returns the UserContext stored by the UserContext middleware.
// A missing value yields the zero UserContext, which fails closed downstream.
func UserFromCtx(c *fiber.Ctx) model.UserContext {
	if v, ok := c.Locals(UserContextLocalKey).(model.UserContext); ok {
		return v
	}
	return model.UserContext{}
}
