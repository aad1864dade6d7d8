package realtime

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/madrasati-app/madrasati-api/internal/models"
	"github.com/madrasati-app/madrasati-api/pkg/config"
)

// clientCommand is what a connected session can ask for. Only subscription
// management flows client-to-server; data always flows the other way.
type clientCommand struct {
	Action string `json:"action"`
	Topic  string `json:"topic"`
}

// SessionManager upgrades HTTP requests into websocket sessions bound to hub
// subscriptions.
type SessionManager struct {
	hub      *Hub
	upgrader websocket.Upgrader
	cfg      config.RealtimeConfig
	logger   *zap.Logger
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(hub *Hub, cfg config.RealtimeConfig, logger *zap.Logger) *SessionManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &SessionManager{hub: hub, cfg: cfg, logger: logger}
	m.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     m.checkOrigin,
	}
	return m
}

// Serve upgrades the connection and pumps events for the authenticated user.
// Every session starts subscribed to the user's message topic and the shared
// announcements topic.
func (m *SessionManager) Serve(w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	session := &session{
		manager: m,
		conn:    conn,
		userID:  userID,
		subs:    make(map[string]*Subscription),
		events:  make(chan models.Event, m.cfg.SendBufferSize),
		done:    make(chan struct{}),
	}
	session.subscribe(models.MessageTopic(userID))
	session.subscribe(models.AnnouncementsTopic)

	go session.writePump()
	session.readPump()
}

func (m *SessionManager) checkOrigin(r *http.Request) bool {
	if len(m.cfg.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	for _, allowed := range m.cfg.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

type session struct {
	manager *SessionManager
	conn    *websocket.Conn
	userID  string
	subs    map[string]*Subscription
	events  chan models.Event
	done    chan struct{}
}

// subscribe attaches a topic feed and forwards it onto the session's single
// outbound channel. Users may only watch their own message topic and the
// announcements topic.
func (s *session) subscribe(topic string) {
	if topic != models.AnnouncementsTopic && topic != models.MessageTopic(s.userID) {
		return
	}
	if _, ok := s.subs[topic]; ok {
		return
	}
	sub := s.manager.hub.Subscribe(s.userID, topic)
	s.subs[topic] = sub
	go func() {
		for event := range sub.C {
			select {
			case s.events <- event:
			case <-s.done:
				return
			}
		}
	}()
}

func (s *session) unsubscribe(topic string) {
	sub, ok := s.subs[topic]
	if !ok {
		return
	}
	delete(s.subs, topic)
	sub.Close()
}

// readPump consumes client commands until the connection drops, then tears
// the session down.
func (s *session) readPump() {
	defer s.teardown()
	s.conn.SetReadLimit(1024)
	pongWait := s.manager.cfg.PingInterval * 2
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		var cmd clientCommand
		if err := json.Unmarshal(raw, &cmd); err != nil {
			continue
		}
		switch cmd.Action {
		case "subscribe":
			s.subscribe(cmd.Topic)
		case "unsubscribe":
			s.unsubscribe(cmd.Topic)
		}
	}
}

// writePump serialises events to the socket and keeps the connection alive
// with pings.
func (s *session) writePump() {
	ticker := time.NewTicker(s.manager.cfg.PingInterval)
	defer ticker.Stop()
	defer s.conn.Close()

	for {
		select {
		case <-s.done:
			return
		case event := <-s.events:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.manager.cfg.WriteTimeout))
			if err := s.conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.manager.cfg.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *session) teardown() {
	for topic := range s.subs {
		s.unsubscribe(topic)
	}
	close(s.done)
	s.conn.Close()
}
