package auth

import (
	"github.com/golang-jwt/jwt/v5"

	models "agentdeck/internal/domain/models/organization"
)

// Claims represents the JWT claims issued by Supabase Auth.
// See: https://supabase.com/docs/guides/auth/jwts
type Claims struct {
	jwt.RegisteredClaims
	Email       string                 `json:"email"`
	Role        string                 `json:"role"` // "authenticated" or "anon"
	AppMetadata map[string]interface{} `json:"app_metadata"`
	SessionID   string                 `json:"session_id"`
	IsAnonymous bool                   `json:"is_anonymous"`
}

// UserID returns the user ID from the subject claim.
func (c *Claims) UserID() string {
	return c.Subject
}

// Viewer maps verified claims to the viewer context. Every signed-in
// dashboard user may see private agents.
func (c *Claims) Viewer() models.Viewer {
	return models.Viewer{
		UserID:          c.Subject,
		IsAuthenticated: true,
		CanSeePrivate:   true,
	}
}
