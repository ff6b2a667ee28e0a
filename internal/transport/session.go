package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"codelab/pkg/interfaces"
	"codelab/pkg/types"
)

const (
	writeTimeout     = 5 * time.Second
	handshakeTimeout = 10 * time.Second
)

// Session owns exactly one duplex socket connection for the lifetime of one
// lesson view. The session identifier is generated at Open; the mode is
// derived once from teacher-session-reference presence and never changes.
// Writes go through a single writer goroutine; reads are dispatched in
// arrival order by a single reader goroutine.
type Session struct {
	socketURL string
	dialer    *websocket.Dialer

	desc   types.SessionDescriptor
	conn   *websocket.Conn
	opened bool
	closed bool
	live   bool // connection currently open

	writeCh  chan []byte
	handlers map[types.MessageKind][]func(json.RawMessage)

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	mu        sync.RWMutex
}

// NewSession creates an unopened session pointed at the socket endpoint.
func NewSession(socketURL string) *Session {
	return &Session{
		socketURL: socketURL,
		dialer: &websocket.Dialer{
			HandshakeTimeout: handshakeTimeout,
		},
		writeCh:  make(chan []byte, 100),
		handlers: make(map[types.MessageKind][]func(json.RawMessage)),
	}
}

// Handle registers an inbound handler for a message kind. Safe to call
// before or after Open; frames arriving before registration are dropped.
func (s *Session) Handle(kind types.MessageKind, fn func(payload json.RawMessage)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[kind] = append(s.handlers[kind], fn)
}

// Open generates a fresh session identifier, fixes the mode from the
// teacher-session reference, and establishes the connection. In live mode
// the join announcement is queued before Open returns, ahead of any other
// outbound traffic.
func (s *Session) Open(ctx context.Context, lessonID, authToken, teacherSessionRef string) error {
	if lessonID == "" {
		return ErrMissingLessonID
	}
	if authToken == "" {
		return ErrMissingToken
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.opened || s.closed {
		return ErrSessionReused
	}

	desc := types.SessionDescriptor{
		SessionID:        uuid.New().String(),
		TeacherSessionID: teacherSessionRef,
		Mode:             types.ModeStandalone,
	}
	if teacherSessionRef != "" {
		desc.Mode = types.ModeLive
	}

	connURL, err := buildSocketURL(s.socketURL, desc, lessonID, authToken)
	if err != nil {
		return fmt.Errorf("failed to build socket URL: %w", err)
	}

	conn, _, err := s.dialer.DialContext(ctx, connURL, nil)
	if err != nil {
		return fmt.Errorf("failed to open transport session: %w", err)
	}

	s.desc = desc
	s.conn = conn
	s.opened = true
	s.live = true
	s.ctx, s.cancel = context.WithCancel(context.Background())

	go s.writeLoop()
	go s.readLoop(lessonID)

	if desc.Mode == types.ModeLive {
		// Queued first: the writer goroutine has nothing ahead of it yet.
		if err := s.enqueueLocked(types.KindJoin, types.JoinPayload{
			SessionID: desc.SessionID,
			LessonID:  lessonID,
		}); err != nil {
			return fmt.Errorf("failed to send join announcement: %w", err)
		}
	}

	log.Printf("Transport session opened: id=%s mode=%s lesson=%s",
		desc.SessionID, desc.Mode, lessonID)
	return nil
}

// buildSocketURL encodes session identity and auth into the connection URI.
func buildSocketURL(base string, desc types.SessionDescriptor, lessonID, authToken string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("sessionId", desc.SessionID)
	q.Set("token", authToken)
	q.Set("lessonId", lessonID)
	if desc.TeacherSessionID != "" {
		q.Set("teacherSessionId", desc.TeacherSessionID)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Send serializes {type, payload} with the session's mode vocabulary and
// queues it for transmission. Returns ErrNotConnected when the socket is
// not open; the terminal and broadcast callers treat that as a silent drop.
func (s *Session) Send(kind types.MessageKind, payload interface{}) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.live {
		return interfaces.ErrNotConnected
	}
	return s.enqueueLocked(kind, payload)
}

// enqueueLocked builds and queues a frame. Callers hold at least a read lock.
func (s *Session) enqueueLocked(kind types.MessageKind, payload interface{}) error {
	tag, err := wireTag(s.desc.Mode, kind)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", kind, err)
	}

	frame := types.Frame{Type: tag, Payload: raw}
	if err := frame.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("failed to marshal frame: %w", err)
	}

	select {
	case s.writeCh <- data:
		return nil
	case <-s.ctx.Done():
		return interfaces.ErrNotConnected
	case <-time.After(writeTimeout):
		return ErrWriteTimeout
	}
}

// writeLoop is the single writer goroutine. Serializing writes here keeps
// gorilla/websocket's one-writer rule without locking around every send.
func (s *Session) writeLoop() {
	for {
		select {
		case data := <-s.writeCh:
			if err := s.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
				s.markDisconnected()
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Printf("Transport write failed: %v", err)
				s.markDisconnected()
				return
			}
		case <-s.ctx.Done():
			return
		}
	}
}

// readLoop is the single reader goroutine, so inbound frames are dispatched
// strictly in arrival order. Malformed frames are logged and dropped;
// unrecognized types are ignored.
func (s *Session) readLoop(lessonID string) {
	defer s.markDisconnected()

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.ctx.Done():
				// Normal close.
			default:
				log.Printf("Transport read ended: lesson=%s err=%v", lessonID, err)
			}
			return
		}

		var frame types.Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			log.Printf("Dropping malformed frame: %v", err)
			continue
		}

		kind, ok := inboundKind(frame.Type)
		if !ok {
			continue
		}

		s.mu.RLock()
		handlers := s.handlers[kind]
		s.mu.RUnlock()

		for _, fn := range handlers {
			fn(frame.Payload)
		}
	}
}

func (s *Session) markDisconnected() {
	s.mu.Lock()
	s.live = false
	s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// Descriptor returns the session identity. Zero value before Open.
func (s *Session) Descriptor() types.SessionDescriptor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.desc
}

// Connected reports whether the socket is currently open.
func (s *Session) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.live
}

// Close releases the connection. Idempotent; safe before Open.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.live = false
		s.closed = true
		conn := s.conn
		s.mu.Unlock()

		if s.cancel != nil {
			s.cancel()
		}
		if conn != nil {
			err = conn.Close()
		}
	})
	return err
}

var _ interfaces.Transport = (*Session)(nil)
