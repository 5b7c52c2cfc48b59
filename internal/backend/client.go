// Package backend is a thin client for the hospital REST API.
//
// The API takes the bearer token as a path segment; the client also sends it
// as an Authorization header.
package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ghaggin/hospitalcms/internal/config"
	"github.com/ghaggin/hospitalcms/internal/metrics"
	"github.com/ghaggin/hospitalcms/internal/model"
	"github.com/goccy/go-json"
	"github.com/patrickmn/go-cache"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	maxBody     = 4 << 20
	doctorsKey  = "doctors"
	nullSegment = "null"
)

type Observer interface {
	BackendRequest(endpoint, outcome string)
}

type Client struct {
	baseURL  string
	http     *http.Client
	log      *zap.Logger
	cache    *cache.Cache
	cacheTTL time.Duration
	observer Observer
}

type Params struct {
	fx.In

	Config  *config.Config
	Log     *zap.Logger
	Metrics *metrics.Metrics
}

func NewFromParams(p Params) *Client {
	return New(p.Config.Backend, p.Log, p.Metrics)
}

func New(cfg config.Backend, log *zap.Logger, obs Observer) *Client {
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		http:     &http.Client{Timeout: cfg.Timeout},
		log:      log,
		cache:    cache.New(cfg.DoctorCacheTTL, 2*cfg.DoctorCacheTTL),
		cacheTTL: cfg.DoctorCacheTTL,
		observer: obs,
	}
}

func segment(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nullSegment
	}
	return url.PathEscape(s)
}

func (c *Client) Login(ctx context.Context, role model.Role, creds model.Credentials) (string, error) {
	var p string
	switch role {
	case model.RoleAdmin:
		p = "/admin"
	case model.RoleDoctor:
		p = "/doctor/login"
	case model.RolePatient, model.RoleAuthenticatedPatient:
		p = "/patient/login"
	default:
		return "", fmt.Errorf("%w: %s", errUnsupportedRole, role)
	}

	var out struct {
		Token   string `json:"token"`
		Message string `json:"message"`
	}
	if err := c.do(ctx, "login_"+string(role), http.MethodPost, p, "", creds, &out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", errMissingToken
	}
	return out.Token, nil
}

type doctorsResponse struct {
	Doctors []model.Doctor `json:"doctors"`
}

// Doctors lists every doctor. The list is cached until it expires or a
// doctor is added or removed through this client. A non-positive TTL
// disables the cache.
func (c *Client) Doctors(ctx context.Context) ([]model.Doctor, error) {
	if c.cacheTTL > 0 {
		if v, ok := c.cache.Get(doctorsKey); ok {
			return v.([]model.Doctor), nil
		}
	}

	var out doctorsResponse
	if err := c.do(ctx, "doctors", http.MethodGet, "/doctor", "", nil, &out); err != nil {
		return nil, err
	}

	if c.cacheTTL > 0 {
		c.cache.Set(doctorsKey, out.Doctors, cache.DefaultExpiration)
	}
	return out.Doctors, nil
}

func (c *Client) FilterDoctors(ctx context.Context, f model.DoctorFilter) ([]model.Doctor, error) {
	p := fmt.Sprintf("/doctor/filter/%s/%s/%s", segment(f.Name), segment(f.Time), segment(f.Specialty))

	var out doctorsResponse
	if err := c.do(ctx, "filter_doctors", http.MethodGet, p, "", nil, &out); err != nil {
		return nil, err
	}
	return out.Doctors, nil
}

func (c *Client) SaveDoctor(ctx context.Context, token string, d model.Doctor) error {
	defer c.cache.Delete(doctorsKey)
	return c.do(ctx, "save_doctor", http.MethodPost, "/doctor/"+segment(token), token, d, nil)
}

func (c *Client) DeleteDoctor(ctx context.Context, token string, id int64) error {
	defer c.cache.Delete(doctorsKey)
	p := fmt.Sprintf("/doctor/%d/%s", id, segment(token))
	return c.do(ctx, "delete_doctor", http.MethodDelete, p, token, nil, nil)
}

// UpdateDoctor replaces a doctor's details. An empty password keeps the
// stored one.
func (c *Client) UpdateDoctor(ctx context.Context, token string, d model.Doctor) error {
	defer c.cache.Delete(doctorsKey)
	return c.do(ctx, "update_doctor", http.MethodPut, "/doctor/"+segment(token), token, d, nil)
}

// DoctorAvailability lists the free slots ("09:00 AM") of a doctor on date.
// role is the caller's role; an authenticated patient asks as "patient".
func (c *Client) DoctorAvailability(ctx context.Context, token string, role model.Role, doctorID int64, date string) ([]string, error) {
	user := role
	if user == model.RoleAuthenticatedPatient {
		user = model.RolePatient
	}
	p := fmt.Sprintf("/doctor/availability/%s/%d/%s/%s", segment(string(user)), doctorID, segment(date), segment(token))

	var out struct {
		AvailableSlots []string `json:"availableSlots"`
		Status         string   `json:"status"`
		Message        string   `json:"message"`
	}
	if err := c.do(ctx, "doctor_availability", http.MethodGet, p, token, nil, &out); err != nil {
		return nil, err
	}
	// The backend reports lookup failures in a 200 body.
	if out.Status == "error" {
		return nil, &Error{Status: http.StatusBadGateway, Message: out.Message}
	}
	return out.AvailableSlots, nil
}

type appointmentsResponse struct {
	Appointments []model.Appointment `json:"appointments"`
}

// Appointments lists the doctor's appointments on date (YYYY-MM-DD),
// optionally narrowed to a patient name.
func (c *Client) Appointments(ctx context.Context, token, date, patientName string) ([]model.Appointment, error) {
	p := fmt.Sprintf("/appointments/%s/%s/%s", segment(date), segment(patientName), segment(token))

	var out appointmentsResponse
	if err := c.do(ctx, "appointments", http.MethodGet, p, token, nil, &out); err != nil {
		return nil, err
	}
	return out.Appointments, nil
}

func (c *Client) BookAppointment(ctx context.Context, token string, a model.Appointment) error {
	return c.do(ctx, "book_appointment", http.MethodPost, "/appointments/"+segment(token), token, a, nil)
}

// UpdateAppointment reschedules a, matched by its ID.
func (c *Client) UpdateAppointment(ctx context.Context, token string, a model.Appointment) error {
	return c.do(ctx, "update_appointment", http.MethodPut, "/appointments/"+segment(token), token, a, nil)
}

func (c *Client) CancelAppointment(ctx context.Context, token string, id int64) error {
	p := fmt.Sprintf("/appointments/%d/%s", id, segment(token))
	return c.do(ctx, "cancel_appointment", http.MethodDelete, p, token, nil, nil)
}

func (c *Client) Patient(ctx context.Context, token string) (*model.Patient, error) {
	var out struct {
		Patient *model.Patient `json:"patient"`
	}
	if err := c.do(ctx, "patient", http.MethodGet, "/patient/"+segment(token), token, nil, &out); err != nil {
		return nil, err
	}
	if out.Patient == nil {
		return nil, ErrNotFound
	}
	return out.Patient, nil
}

func (c *Client) SignupPatient(ctx context.Context, p model.Patient) error {
	return c.do(ctx, "signup_patient", http.MethodPost, "/patient", "", p, nil)
}

func (c *Client) PatientAppointments(ctx context.Context, token string, patientID int64) ([]model.Appointment, error) {
	p := fmt.Sprintf("/patient/%d/%s", patientID, segment(token))

	var out appointmentsResponse
	if err := c.do(ctx, "patient_appointments", http.MethodGet, p, token, nil, &out); err != nil {
		return nil, err
	}
	return out.Appointments, nil
}

// FilterPatientAppointments narrows by condition ("past" or "future") and/or
// doctor name.
func (c *Client) FilterPatientAppointments(ctx context.Context, token, condition, name string) ([]model.Appointment, error) {
	p := fmt.Sprintf("/patient/filter/%s/%s/%s", segment(condition), segment(name), segment(token))

	var out appointmentsResponse
	if err := c.do(ctx, "filter_patient_appointments", http.MethodGet, p, token, nil, &out); err != nil {
		return nil, err
	}
	return out.Appointments, nil
}

func (c *Client) Prescription(ctx context.Context, token string, appointmentID int64) (*model.Prescription, error) {
	p := "/prescription/" + strconv.FormatInt(appointmentID, 10) + "/" + segment(token)

	var out struct {
		Prescription *model.Prescription `json:"prescription"`
	}
	if err := c.do(ctx, "prescription", http.MethodGet, p, token, nil, &out); err != nil {
		return nil, err
	}
	if out.Prescription == nil {
		return nil, ErrNotFound
	}
	return out.Prescription, nil
}

func (c *Client) SavePrescription(ctx context.Context, token string, rx model.Prescription) error {
	return c.do(ctx, "save_prescription", http.MethodPost, "/prescription/"+segment(token), token, rx, nil)
}

func (c *Client) do(ctx context.Context, endpoint, method, p, token string, in, out any) (err error) {
	start := time.Now()
	defer func() {
		c.observe(endpoint, err)
		c.log.Debug("backend request",
			zap.String("endpoint", endpoint),
			zap.String("method", method),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
	}()

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", endpoint, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+p, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("read %s response: %w", endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newError(resp.StatusCode, raw)
	}

	if out != nil && len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode %s response: %w", endpoint, err)
		}
	}
	return nil
}

func (c *Client) observe(endpoint string, err error) {
	if c.observer == nil {
		return
	}

	outcome := metrics.OutcomeOK
	if err != nil {
		outcome = metrics.OutcomeError
		var be *Error
		if errors.As(err, &be) {
			outcome = metrics.OutcomeRejected
		}
	}
	c.observer.BackendRequest(endpoint, outcome)
}
