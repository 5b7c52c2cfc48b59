package portal

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/ghaggin/hospitalcms/internal/backend"
	"github.com/ghaggin/hospitalcms/internal/config"
	"github.com/ghaggin/hospitalcms/internal/metrics"
	"github.com/ghaggin/hospitalcms/internal/middleware"
	"github.com/ghaggin/hospitalcms/internal/model"
	"github.com/ghaggin/hospitalcms/internal/router"
	"github.com/ghaggin/hospitalcms/internal/template"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Backend is the part of the hospital API the portal calls.
type Backend interface {
	Login(ctx context.Context, role model.Role, creds model.Credentials) (string, error)
	Doctors(ctx context.Context) ([]model.Doctor, error)
	FilterDoctors(ctx context.Context, f model.DoctorFilter) ([]model.Doctor, error)
	SaveDoctor(ctx context.Context, token string, d model.Doctor) error
	UpdateDoctor(ctx context.Context, token string, d model.Doctor) error
	DeleteDoctor(ctx context.Context, token string, id int64) error
	DoctorAvailability(ctx context.Context, token string, role model.Role, doctorID int64, date string) ([]string, error)
	Appointments(ctx context.Context, token, date, patientName string) ([]model.Appointment, error)
	BookAppointment(ctx context.Context, token string, a model.Appointment) error
	UpdateAppointment(ctx context.Context, token string, a model.Appointment) error
	CancelAppointment(ctx context.Context, token string, id int64) error
	Patient(ctx context.Context, token string) (*model.Patient, error)
	SignupPatient(ctx context.Context, p model.Patient) error
	PatientAppointments(ctx context.Context, token string, patientID int64) ([]model.Appointment, error)
	FilterPatientAppointments(ctx context.Context, token, condition, name string) ([]model.Appointment, error)
	Prescription(ctx context.Context, token string, appointmentID int64) (*model.Prescription, error)
	SavePrescription(ctx context.Context, token string, rx model.Prescription) error
}

type Server struct {
	log      *zap.Logger
	server   *http.Server
	cert     *tls.Certificate
	sessions *middleware.SessionManager
	api      Backend
	views    *template.Renderer
	metrics  *metrics.Metrics
	validate *validator.Validate
	now      func() time.Time
}

type Params struct {
	fx.In

	Log      *zap.Logger
	Config   *config.Config
	Sessions *middleware.SessionManager
	Backend  *backend.Client
	Views    *template.Renderer
	Metrics  *metrics.Metrics
}

func New(p Params) (*Server, error) {
	return newServer(p.Log, p.Config, p.Sessions, p.Backend, p.Views, p.Metrics)
}

func newServer(
	log *zap.Logger,
	cfg *config.Config,
	sessions *middleware.SessionManager,
	api Backend,
	views *template.Renderer,
	m *metrics.Metrics,
) (*Server, error) {
	cert, err := cfg.Server.TLS.Certificate()
	if err != nil {
		return nil, err
	}

	s := &Server{
		log:      log,
		cert:     cert,
		sessions: sessions,
		api:      api,
		views:    views,
		metrics:  m,
		validate: newValidator(),
		now:      time.Now,
	}

	s.server = &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           s.routes(cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if cert != nil {
		s.server.TLSConfig = &tls.Config{
			Certificates: []tls.Certificate{*cert},
			MinVersion:   tls.VersionTLS12,
		}
	}

	return s, nil
}

func (s *Server) routes(cfg *config.Config) http.Handler {
	root := chi.NewRouter()
	root.Use(chimw.RequestID)
	root.Use(chimw.RealIP)
	root.Use(middleware.Logger(s.log))
	root.Use(chimw.Recoverer)

	root.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	root.Handle("/static/*", http.StripPrefix("/static", http.FileServer(http.Dir(cfg.Server.StaticDir))))

	root.Group(func(r chi.Router) {
		r.Use(s.sessions.Wrap)

		// No role required
		r.Get("/", s.landing)
		r.Get("/dashboard", s.dashboard)
		r.Post("/role/{role}", s.selectRole)
		r.With(httprate.LimitByIP(cfg.RateLimit.LoginPerMinute, time.Minute)).
			Post("/login/{role}", s.login)
		r.Post("/logout", s.logout)
		r.Post("/patient/logout", s.logoutPatient)

		r.Route("/api", func(r chi.Router) {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins:   cfg.CORS.AllowedOrigins,
				AllowedMethods:   []string{http.MethodGet, http.MethodOptions},
				AllowedHeaders:   []string{"Accept", "Content-Type"},
				AllowCredentials: true,
				MaxAge:           300,
			}))
			r.Get("/session", s.apiSession)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireDestination(router.PatientLanding))
			r.Get("/patient", s.patientLanding)
			r.Post("/patient/signup", s.signupPatient)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireDestination(router.PatientDashboard))
			r.Get("/patient/dashboard", s.patientDashboard)
			r.Get("/patient/appointments", s.patientAppointments)
			r.Post("/patient/appointments", s.bookAppointment)
			r.Get("/patient/doctors/{id}/book", s.bookingPage)
			r.Get("/patient/appointments/{id}/reschedule", s.reschedulePage)
			r.Post("/patient/appointments/{id}/reschedule", s.rescheduleAppointment)
			r.Post("/patient/appointments/{id}/cancel", s.cancelAppointment)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireDestination(router.DoctorDashboard))
			r.Get("/doctor/dashboard", s.doctorDashboard)
			r.Get("/doctor/prescriptions/{appointmentID}", s.prescription)
			r.Post("/doctor/prescriptions/{appointmentID}", s.savePrescription)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireDestination(router.AdminDashboard))
			r.Get("/admin/dashboard", s.adminDashboard)
			r.Post("/admin/doctors", s.addDoctor)
			r.Get("/admin/doctors/{id}/edit", s.editDoctorPage)
			r.Post("/admin/doctors/{id}", s.updateDoctor)
			r.Post("/admin/doctors/{id}/delete", s.deleteDoctor)
		})
	})

	return root
}

func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// RegisterHooks should be invoked by fx
func RegisterHooks(lc fx.Lifecycle, s *Server) {
	lc.Append(fx.Hook{
		OnStart: s.Start,
		OnStop:  s.server.Shutdown,
	})
}

func (s *Server) Start(_ context.Context) error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}

	go func() {
		var err error
		if s.cert != nil {
			err = s.server.ServeTLS(ln, "", "")
		} else {
			err = s.server.Serve(ln)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("error serving http", zap.Error(err))
		}
	}()

	s.log.Info("portal listening", zap.String("addr", s.server.Addr), zap.Bool("tls", s.cert != nil))
	return nil
}
