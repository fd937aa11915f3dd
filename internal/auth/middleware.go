package auth

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/recruiting-service/internal/domain"
	apperrors "github.com/spec-kit/recruiting-service/pkg/util/errorutil"
)

// HeaderAdminToken carries the shared admin credential.
const HeaderAdminToken = "X-Admin-Token"

// HeaderAdminActor carries the acting admin's name. It is not
// authenticated and is used purely for audit attribution.
const HeaderAdminActor = "X-Admin-User"

const actorKey = "admin_actor"

// AdminMiddleware gates admin routes on a shared-secret header. This is
// a presence check against a fixed sentinel, not a cryptographic trust
// boundary.
type AdminMiddleware struct {
	token string
}

// NewAdminMiddleware constructs middleware.
func NewAdminMiddleware(token string) *AdminMiddleware {
	return &AdminMiddleware{token: token}
}

// Handle enforces the admin credential and records the acting admin for
// audit attribution before any state change can happen.
func (m *AdminMiddleware) Handle(c *fiber.Ctx) error {
	provided := c.Get(HeaderAdminToken)
	if m.token == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(m.token)) != 1 {
		return apperrors.NewForbidden("admin credential required")
	}

	actor := strings.TrimSpace(c.Get(HeaderAdminActor))
	if actor == "" {
		actor = domain.DefaultAdminActor
	}
	c.Locals(actorKey, actor)
	return c.Next()
}

// ActorFromContext returns the acting admin recorded by Handle.
func ActorFromContext(c *fiber.Ctx) string {
	if actor, ok := c.Locals(actorKey).(string); ok && actor != "" {
		return actor
	}
	return domain.DefaultAdminActor
}
