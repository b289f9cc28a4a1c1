package game

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"goban/internal/usecase/session"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type subscriber struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *subscriber) send(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(v)
}

// Feed pushes session snapshots to the renderers watching them.
type Feed struct {
	log *zap.SugaredLogger

	mu          sync.RWMutex
	subscribers map[string]map[*subscriber]struct{}
}

func NewFeed(log *zap.SugaredLogger) *Feed {
	return &Feed{
		log:         log,
		subscribers: make(map[string]map[*subscriber]struct{}),
	}
}

func (f *Feed) subscribe(sessionID string, conn *websocket.Conn) *subscriber {
	sub := &subscriber{conn: conn}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subscribers[sessionID] == nil {
		f.subscribers[sessionID] = make(map[*subscriber]struct{})
	}
	f.subscribers[sessionID][sub] = struct{}{}
	return sub
}

func (f *Feed) unsubscribe(sessionID string, sub *subscriber) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.subscribers[sessionID], sub)
	if len(f.subscribers[sessionID]) == 0 {
		delete(f.subscribers, sessionID)
	}
}

// Publish implements session.Publisher. Subscribers that fail a write are
// closed and dropped.
func (f *Feed) Publish(sessionID string, snap session.Snapshot) {
	f.mu.RLock()
	subs := make([]*subscriber, 0, len(f.subscribers[sessionID]))
	for sub := range f.subscribers[sessionID] {
		subs = append(subs, sub)
	}
	f.mu.RUnlock()

	for _, sub := range subs {
		if err := sub.send(snap); err != nil {
			f.log.Warnf("session %s: drop feed subscriber: %v", sessionID, err)
			_ = sub.conn.Close()
			f.unsubscribe(sessionID, sub)
		}
	}
}

// Subscribers returns the number of open feeds for a session.
func (f *Feed) Subscribers(sessionID string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subscribers[sessionID])
}
