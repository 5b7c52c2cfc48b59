package portal

import (
	"net/http"

	"github.com/ghaggin/hospitalcms/internal/model"
	"github.com/ghaggin/hospitalcms/internal/router"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type sessionResponse struct {
	Role        model.Role         `json:"role"`
	Destination router.Destination `json:"destination"`
	Path        string             `json:"path"`
	Notice      string             `json:"notice,omitempty"`
	Actions     []router.Action    `json:"actions"`
}

// apiSession resolves the session for a script client. The location query
// parameter names the page the client is on and defaults to /dashboard, so a
// bare call never resets the session.
func (s *Server) apiSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	location := r.URL.Query().Get("location")
	if location == "" {
		location = "/dashboard"
	}

	sess, d := router.ResolveView(s.sessions.Load(ctx), location)
	s.persist(ctx, sess, d)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	err := json.NewEncoder(w).Encode(sessionResponse{
		Role:        sess.Role,
		Destination: d.Destination,
		Path:        d.Destination.Path(),
		Notice:      d.Notice,
		Actions:     router.HeaderActions(sess.Role),
	})
	if err != nil {
		s.log.Error("error encoding session", zap.Error(err))
	}
}
