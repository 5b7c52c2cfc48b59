package portal

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ghaggin/hospitalcms/internal/backend"
	"github.com/ghaggin/hospitalcms/internal/model"
	"github.com/ghaggin/hospitalcms/internal/router"
	"github.com/ghaggin/hospitalcms/internal/template"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

func (s *Server) doctorDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	date := strings.TrimSpace(q.Get("date"))
	if date == "" {
		date = s.today()
	}
	td := &template.Data{
		PageTitle:   "Doctor Dashboard",
		Date:        date,
		PatientName: strings.TrimSpace(q.Get("patient")),
		RowActions:  router.RowActions(model.RoleDoctor),
	}

	if _, err := time.Parse(dateLayout, date); err != nil {
		td.Error = "Date must look like " + dateLayout + "."
		s.render(w, r, http.StatusBadRequest, "doctor_dashboard.html", td)
		return
	}

	appts, err := s.api.Appointments(ctx, decisionFrom(ctx).Token, date, td.PatientName)
	if s.expired(w, r, err) {
		return
	}

	status := http.StatusOK
	switch {
	case err == nil:
		td.Appointments = appts
	case errors.Is(err, backend.ErrNotFound):
		// no appointments that day
	default:
		s.log.Error("error loading appointments", zap.String("date", date), zap.Error(err))
		td.Error = backend.Message(err)
		status = http.StatusBadGateway
	}

	s.render(w, r, status, "doctor_dashboard.html", td)
}

func appointmentID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "appointmentID"), 10, 64)
	return id, err == nil && id > 0
}

func (s *Server) prescription(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := appointmentID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	rx, err := s.api.Prescription(ctx, decisionFrom(ctx).Token, id)
	if s.expired(w, r, err) {
		return
	}
	if errors.Is(err, backend.ErrNotFound) {
		rx, err = &model.Prescription{
			AppointmentID: id,
			PatientName:   strings.TrimSpace(r.URL.Query().Get("patient")),
		}, nil
	}
	if err != nil {
		s.log.Error("error loading prescription", zap.Int64("appointment", id), zap.Error(err))
		s.render(w, r, http.StatusBadGateway, "prescription.html", &template.Data{
			PageTitle: "Prescription",
			Error:     backend.Message(err),
		})
		return
	}

	s.render(w, r, http.StatusOK, "prescription.html", &template.Data{
		PageTitle:    "Prescription",
		Prescription: rx,
	})
}

func (s *Server) savePrescription(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := appointmentID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	rx := &model.Prescription{
		AppointmentID: id,
		PatientName:   strings.TrimSpace(r.PostForm.Get("patientName")),
		Medication:    strings.TrimSpace(r.PostForm.Get("medication")),
		Dosage:        strings.TrimSpace(r.PostForm.Get("dosage")),
		DoctorNotes:   strings.TrimSpace(r.PostForm.Get("doctorNotes")),
	}
	td := &template.Data{PageTitle: "Prescription", Prescription: rx}

	if err := s.validate.Struct(rx); err != nil {
		td.Error = validationMessage(err)
		s.render(w, r, http.StatusUnprocessableEntity, "prescription.html", td)
		return
	}

	err := s.api.SavePrescription(ctx, decisionFrom(ctx).Token, *rx)
	if s.expired(w, r, err) {
		return
	}
	if err != nil {
		s.log.Error("error saving prescription", zap.Int64("appointment", id), zap.Error(err))
		td.Error = backend.Message(err)
		s.render(w, r, http.StatusBadGateway, "prescription.html", td)
		return
	}

	s.sessions.Flash(ctx, "Prescription saved successfully.")
	http.Redirect(w, r, router.DoctorDashboard.Path(), http.StatusSeeOther)
}
