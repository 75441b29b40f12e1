package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/spektr-org/simtrace/engine"
	"github.com/spektr-org/simtrace/translator"
)

// wsClient is one connected dashboard. Replies are written only by the
// client's read loop.
type wsClient struct {
	id   string
	conn *websocket.Conn
}

type wsHub struct {
	upgrader websocket.Upgrader
	sessions *sessionStore
	clients  map[*wsClient]bool
	register chan *wsClient
	remove   chan *wsClient
	count    chan chan int
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

type wsError struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// wsReply is the WebSocket answer to one request. Timelines are listed
// without their points; the page fetches each one as a PNG rendered from
// the session's cached Result.
type wsReply struct {
	Success   bool              `json:"success"`
	Session   string            `json:"session"`
	Seq       int               `json:"seq"`
	Reply     string            `json:"reply"`
	Rows      int               `json:"rows"`
	Total     int               `json:"total"`
	Runs      int               `json:"runs"`
	Timelines []timelineRef     `json:"timelines"`
	RunTable  *engine.TableData `json:"runTable,omitempty"`
}

type timelineRef struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Points int    `json:"points"`
}

func newReply(session string, seq int, res *engine.Result) wsReply {
	refs := make([]timelineRef, len(res.Timelines))
	for i, tl := range res.Timelines {
		refs[i] = timelineRef{ID: tl.ID, Title: tl.Title, Points: tl.Points}
	}
	return wsReply{
		Success:   true,
		Session:   session,
		Seq:       seq,
		Reply:     res.Reply,
		Rows:      res.Rows,
		Total:     res.Total,
		Runs:      res.Runs,
		Timelines: refs,
		RunTable:  res.RunTable,
	}
}

// sessionStore holds the latest Result of each connected client.
type sessionStore struct {
	mu      sync.RWMutex
	results map[string]*engine.Result
}

func (s *sessionStore) put(id string, res *engine.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[id] = res
}

func (s *sessionStore) get(id string) (*engine.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res, ok := s.results[id]
	return res, ok
}

func (s *sessionStore) drop(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.results, id)
}

func newHub() *wsHub {
	hub := &wsHub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		sessions: &sessionStore{results: make(map[string]*engine.Result)},
		clients:  make(map[*wsClient]bool),
		register: make(chan *wsClient),
		remove:   make(chan *wsClient),
		count:    make(chan chan int),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go hub.run()
	return hub
}

func (h *wsHub) run() {
	defer close(h.done)
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
		case c := <-h.remove:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				c.conn.Close()
			}
		case reply := <-h.count:
			reply <- len(h.clients)
		case <-h.stop:
			for c := range h.clients {
				msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
				_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
				c.conn.Close()
				delete(h.clients, c)
			}
			return
		}
	}
}

// handle upgrades the connection and answers every widget message with a
// reply for that selection, caching the full Result under the session id.
func (h *wsHub) handle(s *Server, w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}

	c := &wsClient{id: uuid.NewString(), conn: conn}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}
	slog.Info("websocket client connected", "session", c.id, "remote", r.RemoteAddr)

	go func() {
		defer func() {
			h.sessions.drop(c.id)
			select {
			case h.remove <- c:
			case <-h.done:
			}
			slog.Info("websocket client disconnected", "session", c.id)
		}()
		seq := 0
		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					slog.Warn("websocket error", "session", c.id, "error", err)
				}
				return
			}

			var (
				reply any
				res   *engine.Result
			)
			req, err := translator.Parse(message)
			if err == nil {
				res, err = s.execute(req)
			}
			if err != nil {
				slog.Debug("websocket request rejected", "session", c.id, "error", err)
				reply = wsError{Success: false, Error: err.Error()}
			} else {
				seq++
				h.sessions.put(c.id, res)
				reply = newReply(c.id, seq, res)
			}

			data, err := json.Marshal(reply)
			if err != nil {
				slog.Error("failed to marshal websocket reply", "session", c.id, "error", err)
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				slog.Warn("failed to send websocket reply", "session", c.id, "error", err)
				return
			}
		}
	}()
}

// clientCount returns the number of connected clients.
func (h *wsHub) clientCount() int {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
		return <-reply
	case <-h.done:
		return 0
	}
}

// close disconnects every client and stops the hub.
func (h *wsHub) close() {
	h.stopOnce.Do(func() { close(h.stop) })
	<-h.done
}
