package portal

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ghaggin/hospitalcms/internal/backend"
	"github.com/ghaggin/hospitalcms/internal/model"
	"github.com/ghaggin/hospitalcms/internal/router"
	"github.com/ghaggin/hospitalcms/internal/template"
	"go.uber.org/zap"
)

type appointmentFilter struct {
	Condition string `json:"condition" validate:"omitempty,oneof=past future"`
	Name      string `json:"name" validate:"max=100"`
}

func (s *Server) patientLanding(w http.ResponseWriter, r *http.Request) {
	s.renderDoctors(w, r, http.StatusOK, patientLandingPage, "")
}

func (s *Server) signupPatient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	patient := model.Patient{
		Name:     strings.TrimSpace(r.PostForm.Get("name")),
		Email:    strings.TrimSpace(r.PostForm.Get("email")),
		Password: r.PostForm.Get("password"),
		Phone:    strings.TrimSpace(r.PostForm.Get("phone")),
		Address:  strings.TrimSpace(r.PostForm.Get("address")),
	}
	if err := s.validate.Struct(patient); err != nil {
		s.renderDoctors(w, r, http.StatusUnprocessableEntity, patientLandingPage, validationMessage(err))
		return
	}

	if err := s.api.SignupPatient(ctx, patient); err != nil {
		s.log.Info("patient signup rejected", zap.Error(err))
		s.renderDoctors(w, r, http.StatusBadGateway, patientLandingPage, backend.Message(err))
		return
	}

	s.sessions.Flash(ctx, "Signup successful! Please log in.")
	http.Redirect(w, r, router.PatientLanding.Path()+"#login", http.StatusSeeOther)
}

func (s *Server) patientDashboard(w http.ResponseWriter, r *http.Request) {
	s.renderDoctors(w, r, http.StatusOK, patientDashboardPage, "")
}

func (s *Server) patientAppointments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := decisionFrom(ctx).Token
	q := r.URL.Query()

	filter := appointmentFilter{
		Condition: strings.ToLower(strings.TrimSpace(q.Get("condition"))),
		Name:      strings.TrimSpace(q.Get("name")),
	}
	td := &template.Data{
		PageTitle:   "My Appointments",
		Condition:   filter.Condition,
		PatientName: filter.Name,
	}

	if err := s.validate.Struct(filter); err != nil {
		td.Error = validationMessage(err)
		s.render(w, r, http.StatusBadRequest, "patient_appointments.html", td)
		return
	}

	var (
		appts []model.Appointment
		err   error
	)
	if filter.Condition == "" && filter.Name == "" {
		var patient *model.Patient
		patient, err = s.api.Patient(ctx, token)
		if err == nil {
			appts, err = s.api.PatientAppointments(ctx, token, patient.ID)
		}
	} else {
		appts, err = s.api.FilterPatientAppointments(ctx, token, filter.Condition, filter.Name)
	}
	if s.expired(w, r, err) {
		return
	}

	status := http.StatusOK
	switch {
	case err == nil:
		td.Appointments = appts
	case errors.Is(err, backend.ErrNotFound):
		// nothing booked
	default:
		s.log.Error("error loading patient appointments", zap.Error(err))
		td.Error = backend.Message(err)
		status = http.StatusBadGateway
	}

	s.render(w, r, status, "patient_appointments.html", td)
}
