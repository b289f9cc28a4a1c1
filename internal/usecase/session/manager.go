package session

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"goban/internal/bootstrap"
	"goban/internal/domain/archive"
	"goban/internal/domain/flow"
	"goban/internal/domain/game"
	"goban/internal/domain/sgf"
	errs "goban/internal/errors"
)

type TranscriptStore interface {
	SaveTranscript(ctx context.Context, sessionID string, text string) error
	LoadTranscript(ctx context.Context, sessionID string) (string, error)
	DeleteTranscript(ctx context.Context, sessionID string) error
}

type GameArchive interface {
	PutGame(ctx context.Context, g archive.Game) (string, error)
}

// Publisher receives a snapshot after every state change of a session.
type Publisher interface {
	Publish(sessionID string, snap Snapshot)
}

type entry struct {
	mu      sync.Mutex
	session *Session
}

// Manager owns the live sessions of the process.
type Manager struct {
	cfg         *bootstrap.Config
	log         *zap.SugaredLogger
	transcripts TranscriptStore
	archive     GameArchive
	publisher   Publisher

	mu       sync.RWMutex
	sessions map[string]*entry
}

func NewManager(cfg *bootstrap.Config, log *zap.SugaredLogger, transcripts TranscriptStore, games GameArchive, publisher Publisher) *Manager {
	return &Manager{
		cfg:         cfg,
		log:         log,
		transcripts: transcripts,
		archive:     games,
		publisher:   publisher,
		sessions:    make(map[string]*entry),
	}
}

// NewGameRequest carries the game settings. Zero fields take the configured
// defaults.
type NewGameRequest struct {
	BoardSize int      `json:"board_size"`
	Komi      *float64 `json:"komi,omitempty"`
}

func (m *Manager) settings(req NewGameRequest) (int, float64) {
	size, komi := req.BoardSize, m.cfg.DefaultKomi
	if size == 0 {
		size = m.cfg.DefaultBoardSize
	}
	if req.Komi != nil {
		komi = *req.Komi
	}
	return size, komi
}

func (m *Manager) phaseLogger(id string) flow.Hook {
	return flow.HookFuncs{
		OnEnter: func(p flow.Phase) {
			m.log.Debugw("phase entered", "session", id, "phase", p.String())
		},
	}
}

// Create starts a session with a fresh game on black's turn.
func (m *Manager) Create(ctx context.Context, req NewGameRequest) (Snapshot, error) {
	size, komi := m.settings(req)

	id := uuid.New().String()
	s := New(id, size, komi, m.phaseLogger(id))
	if err := s.StartNewGame(size, komi); err != nil {
		return Snapshot{}, err
	}

	m.mu.Lock()
	m.sessions[id] = &entry{session: s}
	m.mu.Unlock()

	m.log.Infof("session %s created: %dx%d, komi %g", id, size, size, komi)

	snap := s.Snapshot()
	m.publish(snap)
	return snap, nil
}

func (m *Manager) lookup(id string) (*entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.sessions[id]
	if !ok {
		return nil, errs.ErrSessionNotFound
	}
	return e, nil
}

// with runs fn under the session lock and publishes the resulting snapshot
// unless fn reports that nothing changed. Publishing happens after the lock
// is released so a slow subscriber does not stall the session.
func (m *Manager) with(id string, fn func(s *Session) (bool, error)) (Snapshot, error) {
	e, err := m.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}

	e.mu.Lock()
	changed, err := fn(e.session)
	snap := e.session.Snapshot()
	e.mu.Unlock()

	if changed {
		m.publish(snap)
	}
	return snap, err
}

func (m *Manager) publish(snap Snapshot) {
	if m.publisher != nil {
		m.publisher.Publish(snap.ID, snap)
	}
}

func (m *Manager) persist(ctx context.Context, s *Session) {
	if m.transcripts == nil {
		return
	}
	if err := m.transcripts.SaveTranscript(ctx, s.ID(), s.Transcript(nil)); err != nil {
		m.log.Errorf("session %s: cache transcript: %v", s.ID(), err)
	}
}

func (m *Manager) Get(id string) (Snapshot, error) {
	return m.with(id, func(*Session) (bool, error) {
		return false, nil
	})
}

func (m *Manager) NewGame(ctx context.Context, id string, req NewGameRequest) (Snapshot, error) {
	size, komi := m.settings(req)
	return m.with(id, func(s *Session) (bool, error) {
		if err := s.StartNewGame(size, komi); err != nil {
			return false, err
		}
		if m.transcripts != nil {
			if err := m.transcripts.DeleteTranscript(ctx, id); err != nil {
				m.log.Errorf("session %s: drop cached transcript: %v", id, err)
			}
		}
		return true, nil
	})
}

// Play validates and places a stone. Rejected moves are returned with their
// outcome and an error matching rules.ErrInvalidMove.
func (m *Manager) Play(ctx context.Context, id string, p game.Point) (MoveResult, Snapshot, error) {
	var res MoveResult
	snap, err := m.with(id, func(s *Session) (bool, error) {
		var err error
		res, err = s.PlayMove(p)
		if err != nil {
			return false, err
		}
		m.persist(ctx, s)
		return true, nil
	})
	return res, snap, err
}

func (m *Manager) Pass(ctx context.Context, id string) (Snapshot, error) {
	return m.with(id, func(s *Session) (bool, error) {
		if _, err := s.Pass(); err != nil {
			return false, err
		}
		m.persist(ctx, s)
		return true, nil
	})
}

func (m *Manager) Resign(ctx context.Context, id string) (Snapshot, error) {
	return m.with(id, func(s *Session) (bool, error) {
		if _, err := s.Resign(); err != nil {
			return false, err
		}
		m.persist(ctx, s)
		return true, nil
	})
}

// FinishScoring ends the game and archives it when any move was played.
// A failed archive write is logged; the game is over either way.
func (m *Manager) FinishScoring(ctx context.Context, id string) (Snapshot, error) {
	return m.with(id, func(s *Session) (bool, error) {
		if _, err := s.FinishScoring(); err != nil {
			return false, err
		}
		if m.archive != nil && len(s.History()) > 0 {
			m.archiveGame(ctx, s)
		}
		return true, nil
	})
}

func (m *Manager) archiveGame(ctx context.Context, s *Session) {
	text := s.Transcript(nil)
	rec, err := sgf.Parse(text)
	if err != nil {
		m.log.Errorf("session %s: transcript does not parse back: %v", s.ID(), err)
		return
	}

	g := archive.FromRecord("session:"+s.ID(), text, rec)
	g.MoveCount = len(s.History())

	gameID, err := m.archive.PutGame(ctx, g)
	if err != nil {
		m.log.Errorf("session %s: archive game: %v", s.ID(), err)
		return
	}
	m.log.Infof("session %s archived as %s", s.ID(), gameID)
}

func (m *Manager) ReturnToMenu(id string) (Snapshot, error) {
	return m.with(id, func(s *Session) (bool, error) {
		if _, err := s.ReturnToMenu(); err != nil {
			return false, err
		}
		return true, nil
	})
}

// Save serializes the game and refreshes the cached copy.
func (m *Manager) Save(ctx context.Context, id string, props sgf.Properties) (string, error) {
	var text string
	_, err := m.with(id, func(s *Session) (bool, error) {
		var err error
		text, err = s.Save(props)
		if err != nil {
			return false, err
		}
		if m.transcripts != nil {
			if err = m.transcripts.SaveTranscript(ctx, id, text); err != nil {
				return true, err
			}
		}
		return true, nil
	})
	return text, err
}

// Load enters playback for text. An empty text loads the transcript cached
// for this session.
func (m *Manager) Load(ctx context.Context, id string, text string) (Snapshot, error) {
	if text == "" {
		if m.transcripts == nil {
			return Snapshot{}, errs.ErrTranscriptNotFound
		}
		if _, err := m.lookup(id); err != nil {
			return Snapshot{}, err
		}
		cached, err := m.transcripts.LoadTranscript(ctx, id)
		if err != nil {
			return Snapshot{}, err
		}
		text = cached
	}

	return m.with(id, func(s *Session) (bool, error) {
		before := s.Phase()
		rec, err := s.LoadTranscript(text)
		if err != nil {
			return s.Phase() != before, err
		}
		m.log.Infof("session %s: loaded transcript with %d moves, %d advisories", id, len(rec.Moves), len(rec.Diagnostics))
		return true, nil
	})
}

func (m *Manager) Navigate(id string, action string) (Snapshot, error) {
	return m.with(id, func(s *Session) (bool, error) {
		if _, err := s.Navigate(action); err != nil {
			return false, err
		}
		return true, nil
	})
}

func (m *Manager) ExitPlayback(id string) (Snapshot, error) {
	return m.with(id, func(s *Session) (bool, error) {
		if _, err := s.ExitPlayback(); err != nil {
			return false, err
		}
		return true, nil
	})
}

// Close drops a session and its cached transcript.
func (m *Manager) Close(ctx context.Context, id string) error {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return errs.ErrSessionNotFound
	}
	if m.transcripts != nil {
		if err := m.transcripts.DeleteTranscript(ctx, id); err != nil && !errors.Is(err, errs.ErrTranscriptNotFound) {
			return err
		}
	}
	m.log.Infof("session %s closed", id)
	return nil
}
