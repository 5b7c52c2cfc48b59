package template

import "github.com/golang-jwt/jwt/v5"

// DisplayName returns the subject of a JWT bearer token for the header. The
// signature is not checked; the value is only shown, never trusted. Opaque
// tokens yield "".
func DisplayName(token string) string {
	if token == "" {
		return ""
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}
