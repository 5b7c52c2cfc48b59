package portal

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2/memstore"
	"github.com/ghaggin/hospitalcms/internal/backend"
	"github.com/ghaggin/hospitalcms/internal/config"
	"github.com/ghaggin/hospitalcms/internal/metrics"
	"github.com/ghaggin/hospitalcms/internal/middleware"
	"github.com/ghaggin/hospitalcms/internal/model"
	"github.com/ghaggin/hospitalcms/internal/router"
	"github.com/ghaggin/hospitalcms/internal/template"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var unauthorized = &backend.Error{Status: http.StatusUnauthorized, Message: "Unauthorized"}

type fakeBackend struct {
	tokens  map[model.Role]string
	doctors []model.Doctor

	appointmentsErr error
	slots           []string
	patientAppts    []model.Appointment

	lastToken     string
	lastDate      string
	booked        *model.Appointment
	rescheduled   *model.Appointment
	cancelled     int64
	savedDoctor   *model.Doctor
	updatedDoctor *model.Doctor
	deleted       int64
}

func (f *fakeBackend) Login(_ context.Context, role model.Role, creds model.Credentials) (string, error) {
	if creds.Password != "secret" {
		return "", unauthorized
	}
	return f.tokens[role], nil
}

func (f *fakeBackend) Doctors(context.Context) ([]model.Doctor, error) {
	return f.doctors, nil
}

func (f *fakeBackend) FilterDoctors(_ context.Context, filter model.DoctorFilter) ([]model.Doctor, error) {
	var out []model.Doctor
	for _, d := range f.doctors {
		if strings.Contains(d.Name, filter.Name) {
			out = append(out, d)
		}
	}
	if len(out) == 0 {
		return nil, &backend.Error{Status: http.StatusNotFound, Message: "no doctors"}
	}
	return out, nil
}

func (f *fakeBackend) SaveDoctor(_ context.Context, token string, d model.Doctor) error {
	f.lastToken = token
	f.savedDoctor = &d
	return nil
}

func (f *fakeBackend) UpdateDoctor(_ context.Context, token string, d model.Doctor) error {
	f.lastToken = token
	f.updatedDoctor = &d
	return nil
}

func (f *fakeBackend) DeleteDoctor(_ context.Context, token string, id int64) error {
	f.lastToken = token
	f.deleted = id
	return nil
}

func (f *fakeBackend) DoctorAvailability(_ context.Context, token string, _ model.Role, _ int64, date string) ([]string, error) {
	f.lastToken = token
	f.lastDate = date
	return f.slots, nil
}

func (f *fakeBackend) Appointments(_ context.Context, token, date, _ string) ([]model.Appointment, error) {
	f.lastToken = token
	f.lastDate = date
	return nil, f.appointmentsErr
}

func (f *fakeBackend) BookAppointment(_ context.Context, token string, a model.Appointment) error {
	f.lastToken = token
	f.booked = &a
	return nil
}

func (f *fakeBackend) UpdateAppointment(_ context.Context, token string, a model.Appointment) error {
	f.lastToken = token
	f.rescheduled = &a
	return nil
}

func (f *fakeBackend) CancelAppointment(_ context.Context, token string, id int64) error {
	f.lastToken = token
	f.cancelled = id
	return nil
}

func (f *fakeBackend) Patient(context.Context, string) (*model.Patient, error) {
	return &model.Patient{ID: 42, Name: "Pat"}, nil
}

func (f *fakeBackend) SignupPatient(context.Context, model.Patient) error {
	return nil
}

func (f *fakeBackend) PatientAppointments(context.Context, string, int64) ([]model.Appointment, error) {
	return f.patientAppts, nil
}

func (f *fakeBackend) FilterPatientAppointments(context.Context, string, string, string) ([]model.Appointment, error) {
	return nil, nil
}

func (f *fakeBackend) Prescription(context.Context, string, int64) (*model.Prescription, error) {
	return nil, backend.ErrNotFound
}

func (f *fakeBackend) SavePrescription(context.Context, string, model.Prescription) error {
	return nil
}

type harness struct {
	t      *testing.T
	url    string
	client *http.Client
	api    *fakeBackend
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	cfg := config.Default()
	cfg.Session.SecureCookie = false

	sessions, err := middleware.NewSessionManager(middleware.SessionParams{
		Config: cfg,
		Store:  memstore.NewWithCleanupInterval(0),
	})
	require.NoError(t, err)

	views, err := template.NewRenderer()
	require.NoError(t, err)

	api := &fakeBackend{
		tokens: map[model.Role]string{
			model.RoleAdmin:                "admin-token",
			model.RoleDoctor:               "doctor-token",
			model.RoleAuthenticatedPatient: "patient-token",
		},
		doctors: []model.Doctor{
			{
				ID:             3,
				Name:           "Dr. Grey",
				Specialty:      "Surgery",
				Email:          "grey@example.com",
				Phone:          "5550001111",
				AvailableTimes: []string{"09:00-10:00"},
			},
		},
		slots: []string{"09:00 AM", "01:00 PM"},
	}

	s, err := newServer(zap.NewNop(), cfg, sessions, api, views, metrics.New())
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC) }

	// seed writes a raw session, including ones the portal itself never
	// produces.
	seed := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.sessions.Save(r.Context(), model.Session{
			Role:  model.Role(r.URL.Query().Get("role")),
			Token: r.URL.Query().Get("token"),
		})
	})

	mux := http.NewServeMux()
	mux.Handle("/", s.Handler())
	mux.Handle("/seed", s.sessions.Wrap(seed))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &harness{
		t:   t,
		url: srv.URL,
		api: api,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (h *harness) seed(role model.Role, token string) {
	h.t.Helper()
	q := url.Values{"role": {string(role)}, "token": {token}}
	res := h.get("/seed?" + q.Encode())
	require.Equal(h.t, http.StatusOK, res.StatusCode)
}

func (h *harness) get(p string) *http.Response {
	h.t.Helper()
	res, err := h.client.Get(h.url + p)
	require.NoError(h.t, err)
	h.t.Cleanup(func() { res.Body.Close() })
	return res
}

func (h *harness) post(p string, form url.Values) *http.Response {
	h.t.Helper()
	res, err := h.client.PostForm(h.url+p, form)
	require.NoError(h.t, err)
	h.t.Cleanup(func() { res.Body.Close() })
	return res
}

func body(t *testing.T, res *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return string(b)
}

func assertRedirect(t *testing.T, res *http.Response, location string) {
	t.Helper()
	assert.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, location, res.Header.Get("Location"))
}

func TestLanding_resetsSession(t *testing.T) {
	h := newHarness(t)
	h.seed(model.RoleAdmin, "admin-token")

	res := h.get("/")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body(t, res), "Select Your Role:")

	assertRedirect(t, h.get("/dashboard"), "/")
}

func TestLogin_admin(t *testing.T) {
	h := newHarness(t)

	res := h.post("/login/admin", url.Values{"username": {"root"}, "password": {"secret"}})
	assertRedirect(t, res, "/admin/dashboard")

	res = h.get("/admin/dashboard")
	require.Equal(t, http.StatusOK, res.StatusCode)
	page := body(t, res)
	assert.Contains(t, page, "Add Doctor")
	assert.Contains(t, page, "Dr. Grey")
	assert.Contains(t, page, "/admin/doctors/3/delete")
}

func TestLogin_rejectedLeavesSessionAlone(t *testing.T) {
	h := newHarness(t)

	res := h.post("/login/doctor", url.Values{"username": {"house"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Contains(t, body(t, res), "Invalid credentials!")

	assertRedirect(t, h.get("/dashboard"), "/")
}

func TestLogin_missingFields(t *testing.T) {
	h := newHarness(t)

	res := h.post("/login/admin", url.Values{"username": {"root"}})
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
	assert.Contains(t, body(t, res), "password is required.")
}

func TestLogin_unknownRole(t *testing.T) {
	h := newHarness(t)

	res := h.post("/login/nurse", url.Values{"username": {"a"}, "password": {"secret"}})
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestLogin_patientLandsOnDashboard(t *testing.T) {
	h := newHarness(t)

	res := h.post("/login/patient", url.Values{"username": {"pat@example.com"}, "password": {"secret"}})
	assertRedirect(t, res, "/patient/dashboard")

	res = h.get("/patient/dashboard")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body(t, res), "Book Now")
}

func TestGuard_tokenlessDashboardRole(t *testing.T) {
	h := newHarness(t)
	h.seed(model.RoleDoctor, "")

	assertRedirect(t, h.get("/doctor/dashboard"), "/")

	res := h.get("/")
	assert.Contains(t, body(t, res), router.NoticeInvalidSession)

	// The notice is shown once.
	res = h.get("/")
	assert.NotContains(t, body(t, res), router.NoticeInvalidSession)
}

func TestGuard_otherRolesPage(t *testing.T) {
	h := newHarness(t)
	h.seed(model.RoleAdmin, "admin-token")

	assertRedirect(t, h.get("/doctor/dashboard"), "/admin/dashboard")
	assertRedirect(t, h.get("/patient/dashboard"), "/admin/dashboard")
}

func TestGuard_anonymous(t *testing.T) {
	h := newHarness(t)

	assertRedirect(t, h.get("/admin/dashboard"), "/")
	assertRedirect(t, h.get("/patient"), "/")
}

func TestSelectRole_patientBrowsesWithoutToken(t *testing.T) {
	h := newHarness(t)

	assertRedirect(t, h.post("/role/patient", nil), "/patient")

	res := h.get("/patient")
	require.Equal(t, http.StatusOK, res.StatusCode)
	page := body(t, res)
	assert.Contains(t, page, "Patient Login")
	assert.Contains(t, page, "Patient needs to login first.")
}

func TestSelectRole_doctorWithoutToken(t *testing.T) {
	h := newHarness(t)
	h.seed(model.RoleDoctor, "")

	assertRedirect(t, h.post("/role/doctor", nil), "/")
	assert.Contains(t, body(t, h.get("/")), router.NoticeInvalidSession)
}

func TestSelectRole_doctorHome(t *testing.T) {
	h := newHarness(t)
	h.seed(model.RoleDoctor, "doctor-token")

	assertRedirect(t, h.post("/role/doctor", nil), "/doctor/dashboard")
}

func TestSelectRole_cannotGrantDashboardRole(t *testing.T) {
	h := newHarness(t)

	res := h.post("/login/patient", url.Values{"username": {"pat@example.com"}, "password": {"secret"}})
	assertRedirect(t, res, "/patient/dashboard")

	for _, role := range []model.Role{model.RoleAdmin, model.RoleDoctor, model.RoleAnonymous, "nurse"} {
		res = h.post("/role/"+string(role), nil)
		assert.Equal(t, http.StatusForbidden, res.StatusCode, role)
	}

	assertRedirect(t, h.get("/admin/dashboard"), "/patient/dashboard")
	assertRedirect(t, h.get("/dashboard"), "/patient/dashboard")

	res = h.post("/admin/doctors/3/delete", nil)
	assertRedirect(t, res, "/patient/dashboard")
	assert.Zero(t, h.api.deleted)
}

func TestSelectRole_tokenlessSessionCannotSwitch(t *testing.T) {
	h := newHarness(t)
	h.seed(model.RoleAdmin, "")

	assert.Equal(t, http.StatusForbidden, h.post("/role/doctor", nil).StatusCode)
	assertRedirect(t, h.post("/role/patient", nil), "/patient")
}

func TestLogout(t *testing.T) {
	h := newHarness(t)
	h.seed(model.RoleDoctor, "doctor-token")

	assertRedirect(t, h.post("/logout", nil), "/")
	assertRedirect(t, h.get("/dashboard"), "/")
}

func TestLogoutPatient_keepsPatientBrowsing(t *testing.T) {
	h := newHarness(t)
	h.seed(model.RoleAuthenticatedPatient, "patient-token")

	assertRedirect(t, h.post("/patient/logout", nil), "/patient")
	assertRedirect(t, h.get("/dashboard"), "/patient")
	assertRedirect(t, h.get("/patient/dashboard"), "/patient")
}

func TestDoctorDashboard_defaultsToToday(t *testing.T) {
	h := newHarness(t)
	h.seed(model.RoleDoctor, "doctor-token")

	res := h.get("/doctor/dashboard")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body(t, res), "No Appointments found for today.")
	assert.Equal(t, "2024-05-01", h.api.lastDate)
	assert.Equal(t, "doctor-token", h.api.lastToken)
}

func TestDoctorDashboard_badDate(t *testing.T) {
	h := newHarness(t)
	h.seed(model.RoleDoctor, "doctor-token")

	res := h.get("/doctor/dashboard?date=yesterday")
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestExpiredToken_endsSession(t *testing.T) {
	h := newHarness(t)
	h.api.appointmentsErr = unauthorized
	h.seed(model.RoleDoctor, "doctor-token")

	assertRedirect(t, h.get("/doctor/dashboard"), "/")
	assert.Contains(t, body(t, h.get("/")), router.NoticeInvalidSession)
	assertRedirect(t, h.get("/dashboard"), "/")
}

func TestAddDoctor(t *testing.T) {
	h := newHarness(t)
	h.seed(model.RoleAdmin, "admin-token")

	res := h.post("/admin/doctors", url.Values{
		"name":         {"Dr. House"},
		"specialty":    {"Diagnostics"},
		"email":        {"house@example.com"},
		"password":     {"vicodin"},
		"phone":        {"5551234567"},
		"availability": {"09:00-10:00", "14:00-15:00"},
	})
	assertRedirect(t, res, "/admin/dashboard")

	require.NotNil(t, h.api.savedDoctor)
	assert.Equal(t, []string{"09:00-10:00", "14:00-15:00"}, h.api.savedDoctor.AvailableTimes)
	assert.Equal(t, "admin-token", h.api.lastToken)
	assert.Contains(t, body(t, h.get("/admin/dashboard")), "Doctor added successfully.")
}

func TestAddDoctor_invalidPhone(t *testing.T) {
	h := newHarness(t)
	h.seed(model.RoleAdmin, "admin-token")

	res := h.post("/admin/doctors", url.Values{
		"name":      {"Dr. House"},
		"specialty": {"Diagnostics"},
		"email":     {"house@example.com"},
		"password":  {"vicodin"},
		"phone":     {"555"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
	assert.Contains(t, body(t, res), "phone must be exactly 10 digits.")
	assert.Nil(t, h.api.savedDoctor)
}

func TestDoctorFilter_noMatch(t *testing.T) {
	h := newHarness(t)
	h.seed(model.RoleAdmin, "admin-token")

	res := h.get("/admin/dashboard?name=Nobody")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body(t, res), "No doctors found with the given filters.")
}

func TestBookingPage_offersFreeSlots(t *testing.T) {
	h := newHarness(t)
	h.seed(model.RoleAuthenticatedPatient, "patient-token")

	res := h.get("/patient/doctors/3/book?date=2024-05-02")
	require.Equal(t, http.StatusOK, res.StatusCode)
	page := body(t, res)
	assert.Contains(t, page, "Book Dr. Grey")
	assert.Contains(t, page, `value="09:00"`)
	assert.Contains(t, page, `value="13:00"`)
	assert.Contains(t, page, "01:00 PM")
	assert.Equal(t, "2024-05-02", h.api.lastDate)
}

func TestBookingPage_noSlots(t *testing.T) {
	h := newHarness(t)
	h.api.slots = nil
	h.seed(model.RoleAuthenticatedPatient, "patient-token")

	res := h.get("/patient/doctors/3/book")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body(t, res), "No available slots on this date.")
	assert.Equal(t, "2024-05-01", h.api.lastDate)
}

func TestBookAppointment(t *testing.T) {
	h := newHarness(t)
	h.seed(model.RoleAuthenticatedPatient, "patient-token")

	res := h.post("/patient/appointments", url.Values{
		"doctorId": {"3"},
		"date":     {"2024-05-02"},
		"time":     {"13:00"},
	})
	assertRedirect(t, res, "/patient/appointments")

	require.NotNil(t, h.api.booked)
	assert.Equal(t, int64(3), h.api.booked.Doctor.ID)
	assert.Equal(t, int64(42), h.api.booked.Patient.ID)
	assert.Equal(t, "2024-05-02T13:00:00", h.api.booked.AppointmentTime)
	assert.Contains(t, body(t, h.get("/patient/appointments")), "Appointment booked successfully.")
}

func TestBookAppointment_slotTaken(t *testing.T) {
	h := newHarness(t)
	h.seed(model.RoleAuthenticatedPatient, "patient-token")

	res := h.post("/patient/appointments", url.Values{
		"doctorId": {"3"},
		"date":     {"2024-05-02"},
		"time":     {"10:00"},
	})
	assert.Equal(t, http.StatusConflict, res.StatusCode)
	assert.Contains(t, body(t, res), "That time is no longer available.")
	assert.Nil(t, h.api.booked)
}

func TestPatientAppointments_rowActions(t *testing.T) {
	h := newHarness(t)
	h.api.patientAppts = []model.Appointment{
		{ID: 12, Doctor: model.Doctor{ID: 3, Name: "Dr. Grey"}, AppointmentTime: "2024-05-02T09:00:00"},
		{ID: 13, Doctor: model.Doctor{ID: 3, Name: "Dr. Grey"}, AppointmentTime: "2024-04-02T09:00:00", Status: model.AppointmentCompleted},
	}
	h.seed(model.RoleAuthenticatedPatient, "patient-token")

	res := h.get("/patient/appointments")
	require.Equal(t, http.StatusOK, res.StatusCode)
	page := body(t, res)
	assert.Contains(t, page, "/patient/appointments/12/reschedule?doctorId=3&date=2024-05-02")
	assert.Contains(t, page, `action="/patient/appointments/12/cancel"`)
	assert.NotContains(t, page, "/patient/appointments/13/")
}

func TestRescheduleAppointment(t *testing.T) {
	h := newHarness(t)
	h.seed(model.RoleAuthenticatedPatient, "patient-token")

	res := h.get("/patient/appointments/12/reschedule?doctorId=3&date=2024-05-03")
	require.Equal(t, http.StatusOK, res.StatusCode)
	page := body(t, res)
	assert.Contains(t, page, "Reschedule with Dr. Grey")
	assert.Contains(t, page, `action="/patient/appointments/12/reschedule"`)

	res = h.post("/patient/appointments/12/reschedule", url.Values{
		"doctorId": {"3"},
		"date":     {"2024-05-03"},
		"time":     {"09:00"},
	})
	assertRedirect(t, res, "/patient/appointments")

	require.NotNil(t, h.api.rescheduled)
	assert.Equal(t, int64(12), h.api.rescheduled.ID)
	assert.Equal(t, "2024-05-03T09:00:00", h.api.rescheduled.AppointmentTime)
	assert.Nil(t, h.api.booked)
}

func TestCancelAppointment(t *testing.T) {
	h := newHarness(t)
	h.seed(model.RoleAuthenticatedPatient, "patient-token")

	assertRedirect(t, h.post("/patient/appointments/12/cancel", nil), "/patient/appointments")
	assert.Equal(t, int64(12), h.api.cancelled)
	assert.Equal(t, "patient-token", h.api.lastToken)
	assert.Contains(t, body(t, h.get("/patient/appointments")), "Appointment cancelled successfully.")
}

func TestCancelAppointment_doctorCannot(t *testing.T) {
	h := newHarness(t)
	h.seed(model.RoleDoctor, "doctor-token")

	assertRedirect(t, h.post("/patient/appointments/12/cancel", nil), "/doctor/dashboard")
	assert.Zero(t, h.api.cancelled)
}

func TestEditDoctor(t *testing.T) {
	h := newHarness(t)
	h.seed(model.RoleAdmin, "admin-token")

	res := h.get("/admin/doctors/3/edit")
	require.Equal(t, http.StatusOK, res.StatusCode)
	page := body(t, res)
	assert.Contains(t, page, `value="grey@example.com"`)
	assert.Contains(t, page, `value="09:00-10:00" checked`)

	res = h.post("/admin/doctors/3", url.Values{
		"name":         {"Dr. Grey"},
		"specialty":    {"Cardiology"},
		"email":        {"grey@example.com"},
		"phone":        {"5550001111"},
		"availability": {"10:00-11:00"},
	})
	assertRedirect(t, res, "/admin/dashboard")

	require.NotNil(t, h.api.updatedDoctor)
	assert.Equal(t, int64(3), h.api.updatedDoctor.ID)
	assert.Equal(t, "Cardiology", h.api.updatedDoctor.Specialty)
	assert.Empty(t, h.api.updatedDoctor.Password)
	assert.Equal(t, "admin-token", h.api.lastToken)
}

func TestEditDoctor_unknown(t *testing.T) {
	h := newHarness(t)
	h.seed(model.RoleAdmin, "admin-token")

	res := h.get("/admin/doctors/99/edit")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Contains(t, body(t, res), "Doctor not found.")
}

func TestUpdateDoctor_shortPassword(t *testing.T) {
	h := newHarness(t)
	h.seed(model.RoleAdmin, "admin-token")

	res := h.post("/admin/doctors/3", url.Values{
		"name":      {"Dr. Grey"},
		"specialty": {"Surgery"},
		"email":     {"grey@example.com"},
		"password":  {"abc"},
		"phone":     {"5550001111"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
	assert.Contains(t, body(t, res), "password must be at least 6 characters.")
	assert.Nil(t, h.api.updatedDoctor)
}

func TestPatientAppointments_badCondition(t *testing.T) {
	h := newHarness(t)
	h.seed(model.RoleAuthenticatedPatient, "patient-token")

	res := h.get("/patient/appointments?condition=soon")
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestPrescription_newForAppointment(t *testing.T) {
	h := newHarness(t)
	h.seed(model.RoleDoctor, "doctor-token")

	res := h.get("/doctor/prescriptions/7?patient=Pat")
	require.Equal(t, http.StatusOK, res.StatusCode)
	page := body(t, res)
	assert.Contains(t, page, `value="7"`)
	assert.Contains(t, page, `value="Pat"`)
}

func TestAPISession(t *testing.T) {
	h := newHarness(t)
	h.seed(model.RoleAdmin, "admin-token")

	res := h.get("/api/session")
	require.Equal(t, http.StatusOK, res.StatusCode)

	var got sessionResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&got))
	assert.Equal(t, model.RoleAdmin, got.Role)
	assert.Equal(t, router.AdminDashboard, got.Destination)
	assert.Equal(t, "/admin/dashboard", got.Path)
	assert.Len(t, got.Actions, 2)
}

func TestAPISession_invalid(t *testing.T) {
	h := newHarness(t)
	h.seed(model.RoleAdmin, "")

	res := h.get("/api/session")
	require.Equal(t, http.StatusOK, res.StatusCode)

	var got sessionResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&got))
	assert.Equal(t, model.RoleAnonymous, got.Role)
	assert.Equal(t, router.NoticeInvalidSession, got.Notice)
	assert.Empty(t, got.Actions)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newHarness(t)
	h.get("/")

	res := h.get("/metrics")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body(t, res), `hcms_session_resets_total{reason="root"}`)
}
