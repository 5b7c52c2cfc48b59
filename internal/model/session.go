package model

import "strings"

type Role string

const (
	RoleAnonymous            Role = "anonymous"
	RolePatient              Role = "patient"
	RoleAuthenticatedPatient Role = "loggedPatient"
	RoleDoctor               Role = "doctor"
	RoleAdmin                Role = "admin"
)

// ParseRole maps a stored role value to a Role. Missing values are anonymous;
// unknown values are kept so routing can fall through to the landing view.
func ParseRole(s string) Role {
	if s == "" {
		return RoleAnonymous
	}
	return Role(s)
}

// RequiresToken reports whether the role is only valid alongside a bearer token.
func (r Role) RequiresToken() bool {
	switch r {
	case RoleAuthenticatedPatient, RoleDoctor, RoleAdmin:
		return true
	}
	return false
}

type Session struct {
	Role  Role
	Token string
}

func (s Session) HasToken() bool {
	return strings.TrimSpace(s.Token) != ""
}
