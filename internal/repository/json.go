package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

var (
	errTableFileIsDir = errors.New("table file is dir")
)

type entry struct {
	Data   []byte    `json:"data"`
	Expiry time.Time `json:"expiry"`
}

type Data struct {
	Sessions map[string]entry `json:"sessions"`
}

// JSONStore is an scs.Store kept in memory and flushed to a JSON file on stop.
type JSONStore struct {
	path string
	log  *zap.Logger
	now  func() time.Time

	mu   sync.Mutex
	data *Data
}

func NewJSON(path string, log *zap.Logger) *JSONStore {
	s := &JSONStore{
		path: path,
		log:  log,
		now:  time.Now,
		data: &Data{Sessions: map[string]entry{}},
	}

	err := s.readfile()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		// only log, sessions start empty and the file is rewritten on stop
		s.log.Warn("failed reading json session file", zap.String("path", path), zap.Error(err))
	}

	return s
}

func (s *JSONStore) stop(_ context.Context) error {
	return s.writefile()
}

func (s *JSONStore) Find(token string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data.Sessions[token]
	if !ok {
		return nil, false, nil
	}
	if !s.now().Before(e.Expiry) {
		delete(s.data.Sessions, token)
		return nil, false, nil
	}
	return e.Data, true, nil
}

// Commit also drops every expired entry, so sessions that are never looked
// up again do not pile up between restarts.
func (s *JSONStore) Commit(token string, b []byte, expiry time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prune(s.now())
	s.data.Sessions[token] = entry{Data: b, Expiry: expiry}
	return nil
}

// prune must be called with mu held.
func (s *JSONStore) prune(now time.Time) {
	for token, e := range s.data.Sessions {
		if !now.Before(e.Expiry) {
			delete(s.data.Sessions, token)
		}
	}
}

func (s *JSONStore) Delete(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data.Sessions, token)
	return nil
}

func (s *JSONStore) readfile() error {
	finfo, err := os.Stat(s.path)
	if err != nil {
		return err
	}

	if finfo.IsDir() {
		return errTableFileIsDir
	}

	f, err := os.Open(s.path)
	if err != nil {
		return err
	}
	defer f.Close()

	data := &Data{}
	if err := json.NewDecoder(f).Decode(data); err != nil {
		return err
	}
	if data.Sessions == nil {
		data.Sessions = map[string]entry{}
	}

	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	return nil
}

func (s *JSONStore) writefile() error {
	s.mu.Lock()
	s.prune(s.now())
	b, err := json.MarshalIndent(s.data, "", "  ")
	s.mu.Unlock()

	if err != nil {
		return err
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}

	return os.WriteFile(s.path, b, 0o600)
}
