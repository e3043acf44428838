package services

import (
	"context"
	"sync"

	"schoolhub/internal/models"

	"github.com/google/uuid"
)

const subscriberBuffer = 16

// ChatHub fans new chat messages out to live subscribers of a room.
type ChatHub struct {
	mu sync.RWMutex
	// room id -> subscriber id -> channel
	subs map[string]map[string]chan models.ChatMessage
}

func NewChatHub() *ChatHub {
	return &ChatHub{subs: make(map[string]map[string]chan models.ChatMessage)}
}

// Subscribe returns a channel receiving every message published to roomID
// until ctx is done, after which the channel is closed.
func (h *ChatHub) Subscribe(ctx context.Context, roomID string) <-chan models.ChatMessage {
	ch := make(chan models.ChatMessage, subscriberBuffer)
	subID := uuid.NewString()

	h.mu.Lock()
	if h.subs[roomID] == nil {
		h.subs[roomID] = make(map[string]chan models.ChatMessage)
	}
	h.subs[roomID][subID] = ch
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		if roomSubs, ok := h.subs[roomID]; ok {
			delete(roomSubs, subID)
			if len(roomSubs) == 0 {
				delete(h.subs, roomID)
			}
		}
		close(ch)
		h.mu.Unlock()
	}()

	return ch
}

// Publish never blocks; a subscriber whose buffer is full misses the message.
func (h *ChatHub) Publish(msg models.ChatMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs[msg.RoomID] {
		select {
		case ch <- msg:
		default:
		}
	}
}

// Subscribers reports how many live subscribers roomID has.
func (h *ChatHub) Subscribers(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[roomID])
}
