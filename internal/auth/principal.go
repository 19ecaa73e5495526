package auth

import "github.com/labstack/echo/v4"

// principalKey is the echo context key the JWT middleware stores the
// authenticated principal under.
const principalKey = "principal"

// Principal is the authenticated caller. It is either a UserPrincipal or an
// AdminPrincipal.
type Principal interface {
	isPrincipal()
}

// UserPrincipal is a registered user authenticated by a user token.
type UserPrincipal struct {
	ID       uint
	Username string
}

// AdminPrincipal is the configured administrator.
type AdminPrincipal struct {
	Username string
}

func (UserPrincipal) isPrincipal()  {}
func (AdminPrincipal) isPrincipal() {}

// UserFrom returns the user principal stored on the request, if any.
func UserFrom(c echo.Context) (UserPrincipal, bool) {
	p, ok := c.Get(principalKey).(UserPrincipal)
	return p, ok
}

// AdminFrom returns the admin principal stored on the request, if any.
func AdminFrom(c echo.Context) (AdminPrincipal, bool) {
	p, ok := c.Get(principalKey).(AdminPrincipal)
	return p, ok
}
