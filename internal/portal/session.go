package portal

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ghaggin/hospitalcms/internal/backend"
	"github.com/ghaggin/hospitalcms/internal/model"
	"github.com/ghaggin/hospitalcms/internal/router"
	"github.com/ghaggin/hospitalcms/internal/template"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type decisionKey struct{}

// Login forms post to /login/{role}; a patient who logs in becomes an
// authenticated patient.
var loginRoles = map[string]model.Role{
	string(model.RoleAdmin):   model.RoleAdmin,
	string(model.RoleDoctor):  model.RoleDoctor,
	string(model.RolePatient): model.RoleAuthenticatedPatient,
}

const (
	msgLoginUnavailable = "Unable to reach the server. Please try again later."
	msgInvalidLogin     = "Invalid credentials!"
)

func decisionFrom(ctx context.Context) router.Decision {
	d, _ := ctx.Value(decisionKey{}).(router.Decision)
	return d
}

// persist saves a router outcome and records it.
func (s *Server) persist(ctx context.Context, sess model.Session, d router.Decision) {
	s.sessions.Save(ctx, sess)
	s.metrics.Decision(d)

	if d.Reset != router.ResetNone {
		s.log.Debug("session reset",
			zap.String("reason", string(d.Reset)),
			zap.String("destination", string(d.Destination)),
		)
	}
}

// commit is persist plus carrying the notice to the next rendered page.
func (s *Server) commit(ctx context.Context, sess model.Session, d router.Decision) {
	s.persist(ctx, sess, d)
	if d.Notice != "" {
		s.sessions.Flash(ctx, d.Notice)
	}
}

func (s *Server) navigate(w http.ResponseWriter, r *http.Request, d router.Decision) {
	http.Redirect(w, r, d.Destination.Path(), http.StatusSeeOther)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, td *template.Data) {
	ctx := r.Context()
	sess := s.sessions.Load(ctx)

	td.Role = sess.Role
	td.Actions = router.HeaderActions(sess.Role)
	td.DisplayName = template.DisplayName(sess.Token)
	td.Today = s.today()
	if notice := s.sessions.PopFlash(ctx); notice != "" && td.Notice == "" {
		td.Notice = notice
	}

	if err := s.views.Render(w, status, page, td); err != nil {
		s.log.Error("error rendering template", zap.String("template", page), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// requireDestination resolves the session at the request path and lets the
// request through only when it lands on dest.
func (s *Server) requireDestination(dest router.Destination) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			sess, d := router.ResolveView(s.sessions.Load(ctx), r.URL.Path)
			s.commit(ctx, sess, d)

			if d.Destination != dest {
				s.navigate(w, r, d)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, decisionKey{}, d)))
		})
	}
}

// expired ends the session when the backend rejects its token.
func (s *Server) expired(w http.ResponseWriter, r *http.Request, err error) bool {
	if !errors.Is(err, backend.ErrUnauthorized) {
		return false
	}

	ctx := r.Context()
	sess, d := router.Logout(s.sessions.Load(ctx))
	d.Notice = router.NoticeInvalidSession
	s.commit(ctx, sess, d)
	s.navigate(w, r, d)
	return true
}

func (s *Server) landing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, d := router.ResolveView(s.sessions.Load(ctx), r.URL.Path)
	s.commit(ctx, sess, d)

	s.renderLanding(w, r, http.StatusOK, "")
}

func (s *Server) renderLanding(w http.ResponseWriter, r *http.Request, status int, errMsg string) {
	s.render(w, r, status, "landing.html", &template.Data{
		PageTitle:      "Home",
		Error:          errMsg,
		LandingActions: router.LandingActions(),
	})
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, d := router.ResolveView(s.sessions.Load(ctx), r.URL.Path)
	s.commit(ctx, sess, d)
	s.navigate(w, r, d)
}

// selectable reports whether a client may pick candidate without logging in:
// public patient browsing, or re-entering the role the session already holds.
// Dashboard roles are only ever granted by login.
func selectable(current, candidate model.Role) bool {
	return candidate == model.RolePatient || (candidate != model.RoleAnonymous && candidate == current)
}

func (s *Server) selectRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	current := s.sessions.Load(ctx)
	role := model.ParseRole(chi.URLParam(r, "role"))
	if !selectable(current.Role, role) {
		s.log.Warn("role selection refused",
			zap.String("role", string(current.Role)),
			zap.String("requested", string(role)),
		)
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}

	sess, d := router.SelectRole(current, role)
	s.commit(ctx, sess, d)
	s.navigate(w, r, d)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	role, ok := loginRoles[chi.URLParam(r, "role")]
	if !ok {
		http.NotFound(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	creds := model.Credentials{
		Username: strings.TrimSpace(r.PostForm.Get("username")),
		Password: r.PostForm.Get("password"),
	}
	if err := s.validate.Struct(creds); err != nil {
		s.loginFailed(w, r, role, http.StatusUnprocessableEntity, validationMessage(err))
		return
	}

	token, err := s.api.Login(ctx, role, creds)
	if err != nil {
		s.log.Info("login rejected", zap.String("role", string(role)), zap.Error(err))
		s.loginFailed(w, r, role, http.StatusUnauthorized, loginMessage(err))
		return
	}

	if err := s.sessions.RenewToken(ctx); err != nil {
		s.log.Error("error renewing session token", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	sess := s.sessions.Load(ctx)
	sess.Token = token
	s.sessions.Save(ctx, sess)

	sess, d := router.SelectRole(s.sessions.Load(ctx), role)
	s.commit(ctx, sess, d)
	s.navigate(w, r, d)
}

// loginFailed re-renders the page holding the login form. The session is left
// untouched.
func (s *Server) loginFailed(w http.ResponseWriter, r *http.Request, role model.Role, status int, msg string) {
	if role == model.RoleAuthenticatedPatient {
		s.renderDoctors(w, r, status, patientLandingPage, msg)
		return
	}
	s.renderLanding(w, r, status, msg)
}

func loginMessage(err error) string {
	var be *backend.Error
	switch {
	case errors.Is(err, backend.ErrUnauthorized):
		return msgInvalidLogin
	case errors.As(err, &be):
		return be.Message
	}
	return msgLoginUnavailable
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, d := router.Logout(s.sessions.Load(ctx))
	s.commit(ctx, sess, d)
	s.navigate(w, r, d)
}

func (s *Server) logoutPatient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, d := router.LogoutPatient(s.sessions.Load(ctx))
	s.commit(ctx, sess, d)
	s.navigate(w, r, d)
}

func (s *Server) today() string {
	return s.now().Format(dateLayout)
}
