package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/ghaggin/hospitalcms/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	ErrUnknownStore = errors.New("unknown session store")
)

type Params struct {
	fx.In

	LC     fx.Lifecycle
	Config *config.Config
	Log    *zap.Logger
}

// NewStore builds the scs store backing the Session per config and ties its
// shutdown to the fx lifecycle.
func NewStore(p Params) (scs.Store, error) {
	switch p.Config.Session.Store {
	case config.StoreMemory:
		s := memstore.New()
		p.LC.Append(fx.Hook{
			OnStop: func(_ context.Context) error {
				s.StopCleanup()
				return nil
			},
		})
		return s, nil

	case config.StoreJSON:
		s := NewJSON(p.Config.Session.JSONPath, p.Log)
		p.LC.Append(fx.Hook{
			OnStop: s.stop,
		})
		return s, nil

	case config.StoreRedis:
		s := NewRedis(p.Config.Redis)
		p.LC.Append(fx.Hook{
			OnStart: s.ping,
			OnStop:  s.close,
		})
		return s, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownStore, p.Config.Session.Store)
}
