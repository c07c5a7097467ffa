// Package auth provides bearer-token authentication and the default
// implementation of the engine's opaque authorization check. Tokens are
// HS256 JWTs carrying the actor id and a coarse role claim; the role-action
// matrix lives here at the edge, never inside the scheduling services.
package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"

	"github.com/medrota/shift-engine/internal/services"
)

// Roles understood by the default authorizer.
const (
	RoleScheduler = "scheduler"
	RoleWorker    = "worker"
	RoleFacility  = "facility"
)

// Claims is the JWT payload for an actor.
type Claims struct {
	ActorID string `json:"actor_id"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}

// CreateToken signs a token for an actor, valid for ttl.
func CreateToken(secret []byte, actorID, role string, ttl time.Duration) (string, error) {
	claims := &Claims{
		ActorID: actorID,
		Role:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// VerifyToken parses and validates a token string.
func VerifyToken(secret []byte, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// RoleAuthorizer is the default services.Authorizer: a static role-action
// matrix. Unknown actions and unknown roles are denied.
type RoleAuthorizer struct {
	allowed map[services.Action]map[string]bool
}

// NewRoleAuthorizer builds the default matrix: schedulers run the engine,
// workers may request and withdraw themselves, facilities may cancel and
// progress their own shifts.
func NewRoleAuthorizer() *RoleAuthorizer {
	grant := func(roles ...string) map[string]bool {
		m := make(map[string]bool, len(roles))
		for _, r := range roles {
			m[r] = true
		}
		return m
	}
	return &RoleAuthorizer{allowed: map[services.Action]map[string]bool{
		services.ActionManageTemplates: grant(RoleScheduler),
		services.ActionGenerate:        grant(RoleScheduler),
		services.ActionCreateShift:     grant(RoleScheduler, RoleFacility),
		services.ActionRequestShift:    grant(RoleWorker, RoleScheduler),
		services.ActionAssign:          grant(RoleScheduler),
		services.ActionUnassign:        grant(RoleScheduler),
		services.ActionTransition:      grant(RoleScheduler, RoleFacility),
		services.ActionCancel:          grant(RoleScheduler, RoleFacility, RoleWorker),
	}}
}

// Authorize implements services.Authorizer.
func (a *RoleAuthorizer) Authorize(actor services.Actor, action services.Action) bool {
	roles, ok := a.allowed[action]
	if !ok {
		return false
	}
	return roles[actor.Role]
}

const (
	actorIDKey   = "actorID"
	actorRoleKey = "actorRole"
)

// Middleware authenticates requests. It accepts a Bearer JWT; when none is
// presented it falls back to the X-Actor-ID / X-Actor-Role headers (tests
// use these). Requests with an invalid token are rejected outright.
func Middleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if strings.HasPrefix(header, "Bearer ") {
			claims, err := VerifyToken(secret, strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "unauthorized", "message": "invalid token"})
				return
			}
			c.Set(actorIDKey, claims.ActorID)
			c.Set(actorRoleKey, claims.Role)
			c.Next()
			return
		}
		if id := strings.TrimSpace(c.GetHeader("X-Actor-ID")); id != "" {
			c.Set(actorIDKey, id)
			c.Set(actorRoleKey, strings.TrimSpace(c.GetHeader("X-Actor-Role")))
		}
		c.Next()
	}
}

// ActorFrom extracts the authenticated actor from the Gin context. Absent
// authentication yields an anonymous actor with no role, which the
// authorizer denies for every action.
func ActorFrom(c *gin.Context) services.Actor {
	actor := services.Actor{}
	if v, ok := c.Get(actorIDKey); ok {
		if s, ok := v.(string); ok {
			actor.ID = s
		}
	}
	if v, ok := c.Get(actorRoleKey); ok {
		if s, ok := v.(string); ok {
			actor.Role = s
		}
	}
	return actor
}
