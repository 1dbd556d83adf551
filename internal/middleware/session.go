package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medical-gallery-portal/internal/gallery"
	"medical-gallery-portal/internal/routeguard"
	"medical-gallery-portal/internal/session"
	"medical-gallery-portal/internal/utils"
)

const identityKey = "identity"

// RequireRole gates a route group to the given user type. While the
// session is still restoring no decision is made; without an identity the
// caller is pointed at the login path; with the wrong role it is pointed
// at its own dashboard, mirroring the route guard's rules.
func RequireRole(store *session.Store, userType gallery.UserType) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := store.Snapshot()

		if snap.Restoring {
			c.JSON(http.StatusServiceUnavailable, utils.ResponseData{
				Status:  http.StatusServiceUnavailable,
				Message: "Session is restoring",
			})
			c.Abort()
			return
		}

		if snap.Identity == nil {
			utils.ErrorWithRedirect(c, http.StatusUnauthorized, "Not signed in", routeguard.PathLogin)
			c.Abort()
			return
		}

		if snap.Identity.UserType != userType {
			own := routeguard.DashboardPath(snap.Identity.UserType)
			utils.ErrorWithRedirect(c, http.StatusForbidden, "This area belongs to a different account type", own)
			c.Abort()
			return
		}

		c.Set(identityKey, *snap.Identity)
		c.Next()
	}
}

// GetIdentityFromContext returns the identity set by RequireRole.
func GetIdentityFromContext(c *gin.Context) (gallery.Identity, bool) {
	value, exists := c.Get(identityKey)
	if !exists {
		return gallery.Identity{}, false
	}
	identity, ok := value.(gallery.Identity)
	return identity, ok
}
