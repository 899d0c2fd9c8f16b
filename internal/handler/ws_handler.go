package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"

	"github.com/yourusername/exam-api/internal/websocket"
)

// WSHandler обрабатывает подключения WebSocket для широковещательных
// уведомлений (объявления, доступность результатов)
type WSHandler struct {
	hub      *websocket.Hub
	upgrader gorillaws.Upgrader
}

// NewWSHandler создает новый обработчик WebSocket
func NewWSHandler(hub *websocket.Hub) *WSHandler {
	return &WSHandler{
		hub: hub,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// CORS для WS контролируется на уровне reverse proxy
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Connect апгрейдит HTTP-соединение до WebSocket и регистрирует клиента.
// Маршрут защищен RequireAuth, так что сюда попадают только
// аутентифицированные пользователи.
func (h *WSHandler) Connect(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WSHandler] Ошибка апгрейда соединения: %v", err)
		return
	}

	client := websocket.NewClient(h.hub, conn)
	go client.WritePump()
	go client.ReadPump()
}
