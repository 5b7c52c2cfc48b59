package router

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ghaggin/hospitalcms/internal/model"
)

// Action is one navigation or form control offered to a role. Path may hold
// an {id} placeholder that For fills in.
type Action struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Method string `json:"method"`
	Path   string `json:"path"`
}

func (a Action) For(id int64) string {
	return strings.ReplaceAll(a.Path, "{id}", strconv.FormatInt(id, 10))
}

func (a Action) IsForm() bool {
	return a.Method == http.MethodPost
}

const (
	ActionAddDoctor             = "addDoctor"
	ActionHome                  = "home"
	ActionLogout                = "logout"
	ActionPatientLogin          = "patientLogin"
	ActionPatientSignup         = "patientSignup"
	ActionAppointments          = "patientAppointments"
	ActionLogoutPatient         = "logoutPatient"
	ActionEditDoctor            = "editDoctor"
	ActionDeleteDoctor          = "deleteDoctor"
	ActionBookNow               = "bookNow"
	ActionLoginToBook           = "loginToBook"
	ActionSelectPatient         = "selectPatient"
	ActionAdminLogin            = "adminLogin"
	ActionDoctorLogin           = "doctorLogin"
	ActionViewPrescription      = "viewPrescription"
	ActionRescheduleAppointment = "rescheduleAppointment"
	ActionCancelAppointment     = "cancelAppointment"
)

var headerActions = map[model.Role][]Action{
	model.RoleAdmin: {
		{ID: ActionAddDoctor, Label: "Add Doctor", Method: http.MethodGet, Path: AdminDashboard.Path() + "#add-doctor"},
		{ID: ActionLogout, Label: "Logout", Method: http.MethodPost, Path: "/logout"},
	},
	model.RoleDoctor: {
		{ID: ActionHome, Label: "Home", Method: http.MethodPost, Path: "/role/" + string(model.RoleDoctor)},
		{ID: ActionLogout, Label: "Logout", Method: http.MethodPost, Path: "/logout"},
	},
	model.RolePatient: {
		{ID: ActionPatientLogin, Label: "Login", Method: http.MethodGet, Path: PatientLanding.Path() + "#login"},
		{ID: ActionPatientSignup, Label: "Sign Up", Method: http.MethodGet, Path: PatientLanding.Path() + "#signup"},
	},
	model.RoleAuthenticatedPatient: {
		{ID: ActionHome, Label: "Home", Method: http.MethodGet, Path: PatientDashboard.Path()},
		{ID: ActionAppointments, Label: "Appointments", Method: http.MethodGet, Path: "/patient/appointments"},
		{ID: ActionLogoutPatient, Label: "Logout", Method: http.MethodPost, Path: "/patient/logout"},
	},
}

var cardActions = map[model.Role][]Action{
	model.RoleAdmin: {
		{ID: ActionEditDoctor, Label: "Edit", Method: http.MethodGet, Path: "/admin/doctors/{id}/edit"},
		{ID: ActionDeleteDoctor, Label: "Delete", Method: http.MethodPost, Path: "/admin/doctors/{id}/delete"},
	},
	model.RolePatient: {
		{ID: ActionLoginToBook, Label: "Book Now", Method: http.MethodGet, Path: PatientLanding.Path() + "#login"},
	},
	model.RoleAuthenticatedPatient: {
		{ID: ActionBookNow, Label: "Book Now", Method: http.MethodGet, Path: "/patient/doctors/{id}/book"},
	},
}

var rowActions = map[model.Role][]Action{
	model.RoleDoctor: {
		{ID: ActionViewPrescription, Label: "Prescription", Method: http.MethodGet, Path: "/doctor/prescriptions/{id}"},
	},
	model.RoleAuthenticatedPatient: {
		{ID: ActionRescheduleAppointment, Label: "Reschedule", Method: http.MethodGet, Path: "/patient/appointments/{id}/reschedule"},
		{ID: ActionCancelAppointment, Label: "Cancel", Method: http.MethodPost, Path: "/patient/appointments/{id}/cancel"},
	},
}

// HeaderActions lists the header navigation for role. Anonymous visitors get
// none: the landing page carries its own role selection.
func HeaderActions(role model.Role) []Action {
	return clone(headerActions[role])
}

// CardActions lists the controls rendered on each doctor card.
func CardActions(role model.Role) []Action {
	return clone(cardActions[role])
}

// RowActions lists the controls rendered on each appointment row.
func RowActions(role model.Role) []Action {
	return clone(rowActions[role])
}

// LandingActions are the role entry points offered on the landing page.
func LandingActions() []Action {
	return []Action{
		{ID: ActionAdminLogin, Label: "Admin", Method: http.MethodPost, Path: "/login/" + string(model.RoleAdmin)},
		{ID: ActionDoctorLogin, Label: "Doctor", Method: http.MethodPost, Path: "/login/" + string(model.RoleDoctor)},
		{ID: ActionSelectPatient, Label: "Patient", Method: http.MethodPost, Path: "/role/" + string(model.RolePatient)},
	}
}

func clone(in []Action) []Action {
	if len(in) == 0 {
		return nil
	}
	out := make([]Action, len(in))
	copy(out, in)
	return out
}
