// Рассылка изменений документа по вебсокетам.
// Клиенты подписываются на документ, сервис отправляет им результаты блоков,
// изменения дерева и комментариев.
//
// Основные возможности:
//   - Несколько сессий на один документ.
//   - Отправка сообщений в JSON.
//   - Пинг для поддержания соединения и закрытие неактивных сессий.
//   - Закрытие всех сессий документа при его удалении.
package notifications

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gofrs/uuid"
)

const (
	pingPeriod = time.Second * 20
	timeout    = time.Minute
)

const (
	MsgBlock        = "block"
	MsgBlockRemoved = "blockRemoved"
	MsgDocument     = "document"
	MsgComment      = "comment"
)

// Message - сообщение клиенту документа.
type Message struct {
	Type      string          `json:"type"`
	DocId     string          `json:"doc_id"`
	BlockId   string          `json:"block_id,omitempty"`
	BlockType string          `json:"block_type,omitempty"`
	Attrs     map[string]any  `json:"attrs,omitempty"`
	Content   json.RawMessage `json:"content,omitempty"`
	Data      any             `json:"data,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type session struct {
	conn   *websocket.Conn
	userId string
}

type DocStreamService struct {
	sessions map[string]map[uuid.UUID]*session
	mutex    sync.RWMutex
}

func NewDocStreamService() *DocStreamService {
	return &DocStreamService{
		sessions: make(map[string]map[uuid.UUID]*session),
	}
}

// Handle принимает соединение и держит его до закрытия клиентом или сервером.
func (s *DocStreamService) Handle(docId, userId string, w http.ResponseWriter, req *http.Request, originPatterns ...string) {
	c, err := websocket.Accept(w, req, &websocket.AcceptOptions{
		// Токен приходит во втором значении Sec-WebSocket-Protocol
		Subprotocols:   []string{"Bearer"},
		OriginPatterns: originPatterns,
	})
	if err != nil {
		slog.Error("Open websocket connection", "docId", docId, "err", err)
		return
	}
	defer c.CloseNow()

	conId := uuid.Must(uuid.NewV4())

	s.mutex.Lock()
	cons, ok := s.sessions[docId]
	if !ok {
		cons = make(map[uuid.UUID]*session)
	}
	cons[conId] = &session{conn: c, userId: userId}
	s.sessions[docId] = cons
	s.mutex.Unlock()

	// Start read until close
	ctx := c.CloseRead(req.Context())
	go s.pingLoop(ctx, docId, conId, c)
	<-ctx.Done()

	s.remove(docId, conId)
	c.Close(websocket.StatusNormalClosure, "")
}

func (s *DocStreamService) remove(docId string, conId uuid.UUID) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.sessions[docId], conId)
	if len(s.sessions[docId]) == 0 {
		delete(s.sessions, docId)
	}
}

// Sessions возвращает число открытых сессий документа.
func (s *DocStreamService) Sessions(docId string) int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.sessions[docId])
}

// CloseDoc закрывает все сессии документа.
func (s *DocStreamService) CloseDoc(docId string) {
	s.mutex.RLock()
	targets := make([]*session, 0, len(s.sessions[docId]))
	for _, ses := range s.sessions[docId] {
		targets = append(targets, ses)
	}
	s.mutex.RUnlock()

	for _, ses := range targets {
		ses.conn.Close(websocket.StatusGoingAway, "document deleted")
	}
}

// Send отправляет сообщение всем сессиям документа.
func (s *DocStreamService) Send(msg Message) {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	s.mutex.RLock()
	targets := make([]*session, 0, len(s.sessions[msg.DocId]))
	for _, ses := range s.sessions[msg.DocId] {
		targets = append(targets, ses)
	}
	s.mutex.RUnlock()

	for _, ses := range targets {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		if err := wsjson.Write(ctx, ses.conn, msg); err != nil {
			slog.Error("Write message to websocket", "docId", msg.DocId, "userId", ses.userId, "err", err)
		}
		cancel()
	}
}

func (s *DocStreamService) pingLoop(ctx context.Context, docId string, conId uuid.UUID, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		pingCtx, cancel := context.WithTimeout(ctx, timeout)
		err := conn.Ping(pingCtx)
		cancel()
		if err != nil {
			slog.Debug("Ping to websocket failed", "docId", docId, "err", err)
			s.remove(docId, conId)
			conn.Close(websocket.StatusNormalClosure, "Ping failed, connection closed")
			return
		}
	}
}
