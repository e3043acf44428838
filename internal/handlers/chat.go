package handlers

import (
	"context"
	"net/http"
	"time"

	"schoolhub/internal/apperr"
	"schoolhub/internal/models"
	"schoolhub/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
)

type ChatHandler struct {
	chat     *services.ChatService
	upgrader websocket.Upgrader
	log      *zap.Logger
}

func NewChatHandler(chat *services.ChatService, log *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chat: chat,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		log: log,
	}
}

// Rooms GET /chat/rooms
func (h *ChatHandler) Rooms(c *gin.Context) {
	rooms, err := h.chat.Rooms(c.Request.Context())
	if err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "rooms": rooms})
}

type createRoomRequest struct {
	ID                  string   `json:"id"`
	Title               string   `json:"title"`
	Categories          []string `json:"categories"`
	Password            string   `json:"password"`
	AllowDefaultProfile bool     `json:"allowDefaultProfile"`
}

// CreateRoom POST /chat/rooms/create
func (h *ChatHandler) CreateRoom(c *gin.Context) {
	var req createRoomRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	room, err := h.chat.CreateRoom(c.Request.Context(), services.CreateRoomInput{
		ID:                  req.ID,
		Title:               req.Title,
		Categories:          req.Categories,
		Password:            req.Password,
		AllowDefaultProfile: req.AllowDefaultProfile,
	}, me(c))
	if err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "room": room})
}

type joinRequest struct {
	RoomID   string `json:"roomId"`
	Password string `json:"password"`
}

// Join POST /chat/participants/join
func (h *ChatHandler) Join(c *gin.Context) {
	var req joinRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	if req.RoomID == "" {
		fail(c, h.log, apperr.Validation("roomId가 필요합니다."))
		return
	}
	if err := h.chat.Join(c.Request.Context(), req.RoomID, req.Password, me(c)); err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Participants GET /chat/participants?roomId=
func (h *ChatHandler) Participants(c *gin.Context) {
	roomID := c.Query("roomId")
	if roomID == "" {
		fail(c, h.log, apperr.Validation("roomId가 필요합니다."))
		return
	}
	list, err := h.chat.Participants(c.Request.Context(), roomID)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "participants": list})
}

// JoinedRooms GET /chat/participants/rooms
func (h *ChatHandler) JoinedRooms(c *gin.Context) {
	who := me(c)
	if userID := c.Query("userId"); userID != "" && userID != who.ID {
		fail(c, h.log, apperr.Forbidden("본인의 채팅방만 조회할 수 있습니다."))
		return
	}
	rooms, err := h.chat.JoinedRooms(c.Request.Context(), who.ID)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "rooms": rooms})
}

// Messages GET /chat/messages?roomId=
func (h *ChatHandler) Messages(c *gin.Context) {
	roomID := c.Query("roomId")
	if roomID == "" {
		fail(c, h.log, apperr.Validation("roomId가 필요합니다."))
		return
	}
	msgs, err := h.chat.Messages(c.Request.Context(), roomID)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "messages": msgs})
}

type sendRequest struct {
	RoomID  string `json:"roomId"`
	Content string `json:"content"`
}

// Send POST /chat/messages/send
func (h *ChatHandler) Send(c *gin.Context) {
	var req sendRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	msg, err := h.chat.Send(c.Request.Context(), req.RoomID, req.Content, me(c))
	if err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": msg})
}

// Stream GET /chat/ws?roomId=
// Every message stored in the room afterwards is pushed to the socket as JSON.
// Messages are sent over HTTP; whatever the client writes is discarded.
func (h *ChatHandler) Stream(c *gin.Context) {
	roomID := c.Query("roomId")
	who := me(c)
	ok, err := h.chat.IsParticipant(c.Request.Context(), roomID, who.ID)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	if !ok {
		fail(c, h.log, apperr.Forbidden("채팅방에 참여하지 않았습니다."))
		return
	}

	// Subscribe before upgrading so nothing sent after the handshake is missed.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	msgs := h.chat.Hub().Subscribe(ctx, roomID)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		h.log.Warn("websocket upgrade failed", zap.String("room_id", roomID), zap.Error(err))
		return
	}
	defer conn.Close()

	h.log.Debug("websocket connected", zap.String("room_id", roomID), zap.String("user_id", who.ID))
	go h.readPump(conn, cancel)
	h.writePump(ctx, conn, msgs)
	h.log.Debug("websocket closed", zap.String("room_id", roomID), zap.String("user_id", who.ID))
}

// readPump drains the socket so pongs and close frames are handled, and
// cancels the subscription once the peer goes away.
func (h *ChatHandler) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadLimit(4096)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}

func (h *ChatHandler) writePump(ctx context.Context, conn *websocket.Conn, msgs <-chan models.ChatMessage) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-msgs:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
