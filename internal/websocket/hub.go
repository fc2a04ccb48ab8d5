package websocket

import (
	"encoding/json"
	"sync"

	"roundup/internal/models"
)

const (
	EventBalance = "balance"
	EventCatalog = "catalog"
)

type BalanceUpdate struct {
	AccountBalance string `json:"account_balance"`
	WalletBalance  string `json:"wallet_balance"`
}

type event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
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

func (h *Hub) BroadcastBalance(userID string, update BalanceUpdate) {
	payload, _ := json.Marshal(event{Type: EventBalance, Payload: update})
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[userID] {
		client.enqueue(payload)
	}
}

// BroadcastCatalog pushes the catalog to every connected client regardless of user.
func (h *Hub) BroadcastCatalog(stocks []models.Stock) {
	payload, _ := json.Marshal(event{Type: EventCatalog, Payload: stocks})
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, set := range h.clients {
		for client := range set {
			client.enqueue(payload)
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, set := range h.clients {
		total += len(set)
	}
	return total
}
