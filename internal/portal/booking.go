package portal

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ghaggin/hospitalcms/internal/backend"
	"github.com/ghaggin/hospitalcms/internal/model"
	"github.com/ghaggin/hospitalcms/internal/template"
	"go.uber.org/zap"
)

const (
	bookingPage = "booking.html"
	slotLayout  = "15:04"

	// Backend appointment times carry no zone.
	appointmentLayout = "2006-01-02T15:04:05"

	appointmentsPath = "/patient/appointments"
)

var slotLayouts = []string{"03:04 PM", slotLayout}

// toSlots turns the backend's slot labels into form values. Labels that do
// not parse as a time of day are dropped.
func toSlots(raw []string) []template.Slot {
	out := make([]template.Slot, 0, len(raw))
	for _, label := range raw {
		label = strings.TrimSpace(label)
		for _, layout := range slotLayouts {
			if t, err := time.Parse(layout, label); err == nil {
				out = append(out, template.Slot{Value: t.Format(slotLayout), Label: label})
				break
			}
		}
	}
	return out
}

// availability fills in the doctor's name and the free slots on b.Date.
func (s *Server) availability(ctx context.Context, token string, b *template.Booking) error {
	if d, err := s.findDoctor(ctx, b.DoctorID); err == nil {
		b.DoctorName = d.Name
	}

	raw, err := s.api.DoctorAvailability(ctx, token, model.RoleAuthenticatedPatient, b.DoctorID, b.Date)
	if err != nil {
		return err
	}
	b.Slots = toSlots(raw)
	return nil
}

func (s *Server) renderBooking(w http.ResponseWriter, r *http.Request, status int, b *template.Booking, errMsg string) {
	title := "Book Appointment"
	if b.AppointmentID != 0 {
		title = "Reschedule Appointment"
	}
	s.render(w, r, status, bookingPage, &template.Data{
		PageTitle: title,
		Error:     errMsg,
		Booking:   b,
	})
}

// showBooking renders the slot picker for the date in the query string,
// today when absent.
func (s *Server) showBooking(w http.ResponseWriter, r *http.Request, b *template.Booking) {
	ctx := r.Context()

	b.Date = strings.TrimSpace(r.URL.Query().Get("date"))
	if b.Date == "" {
		b.Date = s.today()
	}
	if _, err := time.Parse(dateLayout, b.Date); err != nil {
		s.renderBooking(w, r, http.StatusBadRequest, b, "Date must look like "+dateLayout+".")
		return
	}

	err := s.availability(ctx, decisionFrom(ctx).Token, b)
	if s.expired(w, r, err) {
		return
	}
	if err != nil {
		s.log.Error("error loading availability", zap.Int64("doctor", b.DoctorID), zap.Error(err))
		s.renderBooking(w, r, http.StatusBadGateway, b, backend.Message(err))
		return
	}

	s.renderBooking(w, r, http.StatusOK, b, "")
}

func (s *Server) bookingPage(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	s.showBooking(w, r, &template.Booking{DoctorID: id, Action: appointmentsPath})
}

func (s *Server) reschedulePage(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	doctor, err := strconv.ParseInt(r.URL.Query().Get("doctorId"), 10, 64)
	if !ok || err != nil || doctor <= 0 {
		http.NotFound(w, r)
		return
	}

	s.showBooking(w, r, &template.Booking{
		AppointmentID: id,
		DoctorID:      doctor,
		Action:        fmt.Sprintf("%s/%d/reschedule", appointmentsPath, id),
	})
}

type saveFunc func(ctx context.Context, token string, a model.Appointment) error

// submitSlot stores the posted slot through save once the backend confirms
// the doctor is still free then.
func (s *Server) submitSlot(w http.ResponseWriter, r *http.Request, b *template.Booking, save saveFunc, notice string) {
	ctx := r.Context()
	token := decisionFrom(ctx).Token

	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	doctor, err := strconv.ParseInt(r.PostForm.Get("doctorId"), 10, 64)
	if err != nil || doctor <= 0 {
		s.renderDoctors(w, r, http.StatusUnprocessableEntity, patientDashboardPage, "Select a doctor to book.")
		return
	}
	b.DoctorID = doctor
	b.Date = strings.TrimSpace(r.PostForm.Get("date"))

	at, err := time.Parse(dateLayout+"T"+slotLayout, b.Date+"T"+strings.TrimSpace(r.PostForm.Get("time")))
	if err != nil {
		s.renderBooking(w, r, http.StatusUnprocessableEntity, b, "Select a date and time.")
		return
	}

	err = s.availability(ctx, token, b)
	if s.expired(w, r, err) {
		return
	}
	if err != nil {
		s.log.Error("error loading availability", zap.Int64("doctor", doctor), zap.Error(err))
		s.renderBooking(w, r, http.StatusBadGateway, b, backend.Message(err))
		return
	}
	if !b.Has(at.Format(slotLayout)) {
		s.renderBooking(w, r, http.StatusConflict, b, "That time is no longer available. Please pick another slot.")
		return
	}

	patient, err := s.api.Patient(ctx, token)
	if s.expired(w, r, err) {
		return
	}
	if err != nil {
		s.log.Error("error loading patient", zap.Error(err))
		s.renderBooking(w, r, http.StatusBadGateway, b, backend.Message(err))
		return
	}

	err = save(ctx, token, model.Appointment{
		ID:              b.AppointmentID,
		Doctor:          model.Doctor{ID: doctor},
		Patient:         model.Patient{ID: patient.ID},
		AppointmentTime: at.Format(appointmentLayout),
		Status:          model.AppointmentScheduled,
	})
	if s.expired(w, r, err) {
		return
	}
	if err != nil {
		s.log.Info("appointment rejected", zap.Int64("doctor", doctor), zap.Error(err))
		s.renderBooking(w, r, http.StatusBadGateway, b, backend.Message(err))
		return
	}

	s.sessions.Flash(ctx, notice)
	http.Redirect(w, r, appointmentsPath, http.StatusSeeOther)
}

func (s *Server) bookAppointment(w http.ResponseWriter, r *http.Request) {
	s.submitSlot(w, r, &template.Booking{Action: appointmentsPath},
		s.api.BookAppointment, "Appointment booked successfully.")
}

func (s *Server) rescheduleAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	s.submitSlot(w, r, &template.Booking{
		AppointmentID: id,
		Action:        fmt.Sprintf("%s/%d/reschedule", appointmentsPath, id),
	}, s.api.UpdateAppointment, "Appointment rescheduled successfully.")
}

func (s *Server) cancelAppointment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := idParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	err := s.api.CancelAppointment(ctx, decisionFrom(ctx).Token, id)
	if s.expired(w, r, err) {
		return
	}
	if err != nil {
		s.log.Info("cancellation rejected", zap.Int64("appointment", id), zap.Error(err))
		s.sessions.Flash(ctx, backend.Message(err))
	} else {
		s.sessions.Flash(ctx, "Appointment cancelled successfully.")
	}

	http.Redirect(w, r, appointmentsPath, http.StatusSeeOther)
}
