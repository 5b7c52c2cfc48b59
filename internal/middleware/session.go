package middleware

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/ghaggin/hospitalcms/internal/config"
	"github.com/ghaggin/hospitalcms/internal/model"
	"go.uber.org/fx"
)

// The persisted session holds exactly these two keys plus a one-shot notice.
const (
	roleKey   = "userRole"
	tokenKey  = "token"
	noticeKey = "notice"
)

type SessionManager struct {
	impl *scs.SessionManager
}

type SessionParams struct {
	fx.In

	Config *config.Config
	Store  scs.Store
}

func NewSessionManager(p SessionParams) (*SessionManager, error) {
	sm := &SessionManager{}
	sm.impl = scs.New()
	sm.impl.Store = p.Store
	sm.impl.Lifetime = p.Config.Session.Lifetime
	sm.impl.IdleTimeout = p.Config.Session.IdleTimeout
	sm.impl.Cookie.Name = p.Config.Session.CookieName
	sm.impl.Cookie.HttpOnly = true
	sm.impl.Cookie.SameSite = http.SameSiteLaxMode
	sm.impl.Cookie.Secure = p.Config.Session.SecureCookie

	return sm, nil
}

func (s *SessionManager) Wrap(next http.Handler) http.Handler {
	return s.impl.LoadAndSave(next)
}

// Load reads the session from the store. Call it on every request; never keep
// the result beyond the handler that loaded it.
func (s *SessionManager) Load(ctx context.Context) model.Session {
	return model.Session{
		Role:  model.ParseRole(s.impl.GetString(ctx, roleKey)),
		Token: s.impl.GetString(ctx, tokenKey),
	}
}

// Save writes session back, removing keys whose value is empty.
func (s *SessionManager) Save(ctx context.Context, session model.Session) {
	if session.Role == "" || session.Role == model.RoleAnonymous {
		s.impl.Remove(ctx, roleKey)
	} else {
		s.impl.Put(ctx, roleKey, string(session.Role))
	}

	if session.Token == "" {
		s.impl.Remove(ctx, tokenKey)
	} else {
		s.impl.Put(ctx, tokenKey, session.Token)
	}
}

// RenewToken rotates the cookie token, used right before a login is stored.
func (s *SessionManager) RenewToken(ctx context.Context) error {
	return s.impl.RenewToken(ctx)
}

func (s *SessionManager) Flash(ctx context.Context, msg string) {
	s.impl.Put(ctx, noticeKey, msg)
}

func (s *SessionManager) PopFlash(ctx context.Context) string {
	return s.impl.PopString(ctx, noticeKey)
}
