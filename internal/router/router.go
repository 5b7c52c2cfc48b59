// Package router decides which view a session should see next.
//
// Every function takes the current Session by value and returns the Session
// the caller must persist along with a Decision. Nothing here touches the
// session store or renders anything.
package router

import (
	"path"

	"github.com/ghaggin/hospitalcms/internal/model"
)

type Destination string

const (
	Landing          Destination = "landing"
	PatientLanding   Destination = "patientLanding"
	PatientDashboard Destination = "patientDashboard"
	DoctorDashboard  Destination = "doctorDashboard"
	AdminDashboard   Destination = "adminDashboard"
)

var destinationPaths = map[Destination]string{
	Landing:          "/",
	PatientLanding:   "/patient",
	PatientDashboard: "/patient/dashboard",
	DoctorDashboard:  "/doctor/dashboard",
	AdminDashboard:   "/admin/dashboard",
}

// Path is the portal location serving the destination.
func (d Destination) Path() string {
	if p, ok := destinationPaths[d]; ok {
		return p
	}
	return "/"
}

type ResetReason string

const (
	ResetNone    ResetReason = ""
	ResetRoot    ResetReason = "root"
	ResetInvalid ResetReason = "invalid"
	ResetLogout  ResetReason = "logout"
)

const NoticeInvalidSession = "Session expired or invalid login. Please log in again."

type Decision struct {
	Destination Destination
	// Token is set only for dashboard destinations.
	Token  string
	Notice string
	Reset  ResetReason
}

// IsRoot reports whether location is the application entry path.
func IsRoot(location string) bool {
	return path.Clean("/"+location) == "/"
}

// ResolveView maps the session and current location to a destination.
// Arriving at the root always resets the session.
func ResolveView(s model.Session, location string) (model.Session, Decision) {
	if IsRoot(location) {
		return model.Session{Role: model.RoleAnonymous}, Decision{
			Destination: Landing,
			Reset:       ResetRoot,
		}
	}
	return dispatch(s)
}

// SelectRole stores candidate as the session role and dispatches on it. The
// token must already be in the session.
func SelectRole(s model.Session, candidate model.Role) (model.Session, Decision) {
	s.Role = candidate
	return dispatch(s)
}

// Logout clears role and token. Calling it on an empty session is harmless.
func Logout(_ model.Session) (model.Session, Decision) {
	return model.Session{Role: model.RoleAnonymous}, Decision{
		Destination: Landing,
		Reset:       ResetLogout,
	}
}

// LogoutPatient drops the token and demotes the session to patient browsing.
func LogoutPatient(_ model.Session) (model.Session, Decision) {
	return model.Session{Role: model.RolePatient}, Decision{
		Destination: PatientLanding,
		Reset:       ResetLogout,
	}
}

func dispatch(s model.Session) (model.Session, Decision) {
	if s.Role.RequiresToken() && !s.HasToken() {
		return model.Session{Role: model.RoleAnonymous}, Decision{
			Destination: Landing,
			Notice:      NoticeInvalidSession,
			Reset:       ResetInvalid,
		}
	}

	switch s.Role {
	case model.RoleAdmin:
		return s, Decision{Destination: AdminDashboard, Token: s.Token}
	case model.RoleDoctor:
		return s, Decision{Destination: DoctorDashboard, Token: s.Token}
	case model.RoleAuthenticatedPatient:
		return s, Decision{Destination: PatientDashboard, Token: s.Token}
	case model.RolePatient:
		return s, Decision{Destination: PatientLanding}
	}
	return s, Decision{Destination: Landing}
}
