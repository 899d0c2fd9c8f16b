package websocket

import (
	"encoding/json"
	"log"
)

// Event — сообщение, рассылаемое подключенным клиентам
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// Типы событий, рассылаемых хабом
const (
	EventAnnouncement     = "announcement"
	EventAnnouncementGone = "announcement_cleared"
	EventResultsAvailable = "results_available"
)

// Hub держит активные подключения и рассылает события всем сразу.
// Никакой адресной доставки нет: все события широковещательные.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
}

// NewHub создает новый хаб
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run запускает цикл обработки; вызывается в отдельной горутине
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			log.Printf("[WSHub] Клиент подключен (всего: %d)", len(h.clients))
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				log.Printf("[WSHub] Клиент отключен (всего: %d)", len(h.clients))
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Медленный клиент: буфер переполнен, отключаем
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// Broadcast сериализует событие и рассылает его всем клиентам
func (h *Hub) Broadcast(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[WSHub] Ошибка сериализации события %s: %v", event.Type, err)
		return
	}
	h.broadcast <- data
}
