package usercontext

import "github.com/gofiber/fiber/v2"

// Locals keys set by the auth middleware.
const (
	KeyUserID   = "user_id"
	KeyUserType = "user_type"
	KeyVerified = "verification_status"
	KeyJTI      = "jti"
)

// UserContext carries the authenticated caller through a request.
type UserContext struct {
	UserID   uint
	UserType string
	Verified string
	JTI      string
}

// IsAuthenticated reports whether the request carried a valid token.
func (u UserContext) IsAuthenticated() bool {
	return u.UserID != 0
}

// IsStaff reports whether the caller is an admin or moderator.
func (u UserContext) IsStaff() bool {
	return u.UserType == "admin" || u.UserType == "moderator"
}

// IsAdmin reports whether the caller has full administrative access.
func (u UserContext) IsAdmin() bool {
	return u.UserType == "admin"
}

// Set stores the context in Fiber Locals.
func Set(c *fiber.Ctx, uc UserContext) {
	c.Locals(KeyUserID, uc.UserID)
	c.Locals(KeyUserType, uc.UserType)
	c.Locals(KeyVerified, uc.Verified)
	c.Locals(KeyJTI, uc.JTI)
}

// Get reads the context back from Fiber Locals. Returns a zero value for
// unauthenticated requests.
func Get(c *fiber.Ctx) UserContext {
	uc := UserContext{}
	if v, ok := c.Locals(KeyUserID).(uint); ok {
		uc.UserID = v
	}
	if v, ok := c.Locals(KeyUserType).(string); ok {
		uc.UserType = v
	}
	if v, ok := c.Locals(KeyVerified).(string); ok {
		uc.Verified = v
	}
	if v, ok := c.Locals(KeyJTI).(string); ok {
		uc.JTI = v
	}
	return uc
}
