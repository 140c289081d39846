package websocket

import (
	"encoding/json"
	"sync"
)

// Event types pushed to the owning user after a ledger commit.
const (
	EventStakeCreated   = "stake_created"
	EventProfitAccrued  = "profit_accrued"
	EventStakeCompleted = "stake_completed"
	EventBalanceChanged = "balance_changed"
)

type StakeUpdate struct {
	Type    string `json:"type"`
	StakeID string `json:"stake_id,omitempty"`
	Amount  string `json:"amount,omitempty"`
	Balance string `json:"balance,omitempty"`
}

type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) Register(userID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*Client]struct{})
	}
	h.clients[userID][client] = struct{}{}
}

func (h *Hub) Unregister(userID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		return
	}
	delete(h.clients[userID], client)
	if len(h.clients[userID]) == 0 {
		delete(h.clients, userID)
	}
}

func (h *Hub) BroadcastStakeUpdate(userID string, update StakeUpdate) {
	payload, _ := json.Marshal(update)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[userID] {
		select {
		case client.send <- payload:
		default:
		}
	}
}
