package portal

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ghaggin/hospitalcms/internal/backend"
	"github.com/ghaggin/hospitalcms/internal/model"
	"github.com/ghaggin/hospitalcms/internal/router"
	"github.com/ghaggin/hospitalcms/internal/template"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	adminDashboardPage   = "admin_dashboard.html"
	patientLandingPage   = "patient_landing.html"
	patientDashboardPage = "patient_dashboard.html"
)

var pageTitles = map[string]string{
	adminDashboardPage:   "Admin Dashboard",
	patientLandingPage:   "Find a Doctor",
	patientDashboardPage: "Patient Dashboard",
}

func doctorFilter(r *http.Request) model.DoctorFilter {
	q := r.URL.Query()
	return model.DoctorFilter{
		Name:      strings.TrimSpace(q.Get("name")),
		Time:      strings.ToUpper(strings.TrimSpace(q.Get("time"))),
		Specialty: strings.TrimSpace(q.Get("specialty")),
	}
}

// renderDoctors renders one of the doctor card pages using the filter from
// the query string. Card actions follow the session role.
func (s *Server) renderDoctors(w http.ResponseWriter, r *http.Request, status int, page, errMsg string) {
	ctx := r.Context()

	filter := doctorFilter(r)
	td := &template.Data{
		PageTitle:   pageTitles[page],
		Error:       errMsg,
		Filter:      filter,
		CardActions: router.CardActions(s.sessions.Load(ctx).Role),
	}

	if err := s.validate.Struct(filter); err != nil {
		td.Error = validationMessage(err)
		s.render(w, r, http.StatusBadRequest, page, td)
		return
	}

	var (
		doctors []model.Doctor
		err     error
	)
	if filter.IsEmpty() {
		doctors, err = s.api.Doctors(ctx)
	} else {
		doctors, err = s.api.FilterDoctors(ctx, filter)
	}

	switch {
	case err == nil:
		td.Doctors = doctors
	case filter.IsEmpty():
		s.log.Error("error loading doctors", zap.Error(err))
		td.Error = "Failed to fetch doctors."
		status = http.StatusBadGateway
	default:
		// The backend answers an unmatched filter with an error.
		s.log.Debug("doctor filter matched nothing", zap.Error(err))
	}

	s.render(w, r, status, page, td)
}

func doctorFromForm(r *http.Request) model.Doctor {
	return model.Doctor{
		Name:           strings.TrimSpace(r.PostForm.Get("name")),
		Specialty:      strings.TrimSpace(r.PostForm.Get("specialty")),
		Email:          strings.TrimSpace(r.PostForm.Get("email")),
		Password:       r.PostForm.Get("password"),
		Phone:          strings.TrimSpace(r.PostForm.Get("phone")),
		AvailableTimes: r.PostForm["availability"],
	}
}

func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// findDoctor looks a doctor up in the (cached) doctor list; the backend has
// no single-doctor lookup.
func (s *Server) findDoctor(ctx context.Context, id int64) (*model.Doctor, error) {
	doctors, err := s.api.Doctors(ctx)
	if err != nil {
		return nil, err
	}
	for i := range doctors {
		if doctors[i].ID == id {
			return &doctors[i], nil
		}
	}
	return nil, backend.ErrNotFound
}

func (s *Server) adminDashboard(w http.ResponseWriter, r *http.Request) {
	s.renderDoctors(w, r, http.StatusOK, adminDashboardPage, "")
}

func (s *Server) addDoctor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	doctor := doctorFromForm(r)
	if err := s.validate.Struct(doctor); err != nil {
		s.renderDoctors(w, r, http.StatusUnprocessableEntity, adminDashboardPage, validationMessage(err))
		return
	}

	err := s.api.SaveDoctor(ctx, decisionFrom(ctx).Token, doctor)
	if s.expired(w, r, err) {
		return
	}
	if err != nil {
		s.log.Error("error saving doctor", zap.Error(err))
		s.renderDoctors(w, r, http.StatusBadGateway, adminDashboardPage, backend.Message(err))
		return
	}

	s.sessions.Flash(ctx, "Doctor added successfully.")
	http.Redirect(w, r, router.AdminDashboard.Path(), http.StatusSeeOther)
}

func (s *Server) deleteDoctor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := idParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	err := s.api.DeleteDoctor(ctx, decisionFrom(ctx).Token, id)
	if s.expired(w, r, err) {
		return
	}
	if err != nil {
		s.log.Error("error deleting doctor", zap.Int64("id", id), zap.Error(err))
		s.renderDoctors(w, r, http.StatusBadGateway, adminDashboardPage, backend.Message(err))
		return
	}

	s.sessions.Flash(ctx, "Doctor deleted successfully.")
	http.Redirect(w, r, router.AdminDashboard.Path(), http.StatusSeeOther)
}

func (s *Server) renderEditDoctor(w http.ResponseWriter, r *http.Request, status int, d *model.Doctor, errMsg string) {
	s.render(w, r, status, "doctor_edit.html", &template.Data{
		PageTitle:  "Edit Doctor",
		Error:      errMsg,
		EditDoctor: d,
	})
}

func (s *Server) editDoctorPage(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	doctor, err := s.findDoctor(r.Context(), id)
	if errors.Is(err, backend.ErrNotFound) {
		s.renderDoctors(w, r, http.StatusNotFound, adminDashboardPage, "Doctor not found.")
		return
	}
	if err != nil {
		s.log.Error("error loading doctors", zap.Error(err))
		s.renderDoctors(w, r, http.StatusBadGateway, adminDashboardPage, backend.Message(err))
		return
	}

	doctor.Password = ""
	s.renderEditDoctor(w, r, http.StatusOK, doctor, "")
}

func (s *Server) updateDoctor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := idParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	doctor := doctorFromForm(r)
	doctor.ID = id

	// A blank password keeps the stored one.
	var err error
	if doctor.Password == "" {
		err = s.validate.StructExcept(doctor, "Password")
	} else {
		err = s.validate.Struct(doctor)
	}
	if err != nil {
		s.renderEditDoctor(w, r, http.StatusUnprocessableEntity, &doctor, validationMessage(err))
		return
	}

	err = s.api.UpdateDoctor(ctx, decisionFrom(ctx).Token, doctor)
	if s.expired(w, r, err) {
		return
	}
	if err != nil {
		s.log.Error("error updating doctor", zap.Int64("id", id), zap.Error(err))
		doctor.Password = ""
		s.renderEditDoctor(w, r, http.StatusBadGateway, &doctor, backend.Message(err))
		return
	}

	s.sessions.Flash(ctx, "Doctor updated successfully.")
	http.Redirect(w, r, router.AdminDashboard.Path(), http.StatusSeeOther)
}
