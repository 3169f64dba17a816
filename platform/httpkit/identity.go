// Package httpkit provides HTTP utilities including identity abstraction.
package httpkit

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Identity represents the signed-in user as carried by the access token.
// Handlers read it without touching token parsing.
type Identity interface {
	// Email is the user's stable identifier; report lists are keyed by it.
	Email() string
	Name() string
	Picture() string
	IsAuthenticated() bool
}

type identity struct {
	email         string
	name          string
	picture       string
	authenticated bool
}

func (i *identity) Email() string         { return i.email }
func (i *identity) Name() string          { return i.name }
func (i *identity) Picture() string       { return i.picture }
func (i *identity) IsAuthenticated() bool { return i.authenticated }

// GetIdentity extracts the Identity from a Gin context.
// Returns an unauthenticated identity if user info is not present.
func GetIdentity(c *gin.Context) Identity {
	email := c.GetString(ContextUserEmailKey)
	if email == "" {
		return &identity{authenticated: false}
	}

	return &identity{
		email:         email,
		name:          c.GetString(ContextUserNameKey),
		picture:       c.GetString(ContextUserPictureKey),
		authenticated: true,
	}
}

// MustGetIdentity extracts the Identity from a Gin context.
// If the user is not authenticated, it aborts with 401 Unauthorized and returns nil.
func MustGetIdentity(c *gin.Context) Identity {
	id := GetIdentity(c)
	if !id.IsAuthenticated() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return nil
	}
	return id
}
