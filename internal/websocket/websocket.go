package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Константы для типов сообщений WebSocket
const (
	BookingStatusUpdateType = "BOOKING_STATUS_UPDATE"
	TripStatusUpdateType    = "TRIP_STATUS_UPDATE"
)

// WebSocketMessage представляет формат сообщения WebSocket
type WebSocketMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// WebSocketManager управляет всеми подключениями WebSocket
type WebSocketManager struct {
	clientsByUser map[uint]map[*websocket.Conn]bool
	register      chan *WebSocketClient
	unregister    chan *WebSocketClient
	mutex         sync.RWMutex
}

// WebSocketClient представляет клиентское соединение WebSocket
type WebSocketClient struct {
	conn   *websocket.Conn
	userID uint
}

// Глобальный менеджер WebSocket
var wsManager = NewWebSocketManager()

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Разрешаем подключения с любых источников
	},
}

// NewWebSocketManager создает новый менеджер WebSocket
func NewWebSocketManager() *WebSocketManager {
	return &WebSocketManager{
		clientsByUser: make(map[uint]map[*websocket.Conn]bool),
		register:      make(chan *WebSocketClient),
		unregister:    make(chan *WebSocketClient),
	}
}

// Start запускает обработку регистраций клиентов
func (manager *WebSocketManager) Start() {
	go func() {
		for {
			select {
			case client := <-manager.register:
				manager.mutex.Lock()
				if _, ok := manager.clientsByUser[client.userID]; !ok {
					manager.clientsByUser[client.userID] = make(map[*websocket.Conn]bool)
				}
				manager.clientsByUser[client.userID][client.conn] = true
				manager.mutex.Unlock()
				log.Printf("WebSocket: клиент пользователя %d подключен", client.userID)

			case client := <-manager.unregister:
				manager.mutex.Lock()
				if conns, ok := manager.clientsByUser[client.userID]; ok {
					if _, exists := conns[client.conn]; exists {
						delete(conns, client.conn)
						client.conn.Close()
					}
					if len(conns) == 0 {
						delete(manager.clientsByUser, client.userID)
					}
				}
				manager.mutex.Unlock()
				log.Printf("WebSocket: клиент пользователя %d отключен", client.userID)
			}
		}
	}()
}

// BroadcastToUser отправляет сообщение всем подключениям конкретного пользователя
func (manager *WebSocketManager) BroadcastToUser(userID uint, message *WebSocketMessage) {
	manager.mutex.RLock()
	defer manager.mutex.RUnlock()

	connections, exists := manager.clientsByUser[userID]
	if !exists || len(connections) == 0 {
		return
	}

	jsonMessage, err := json.Marshal(message)
	if err != nil {
		log.Printf("WebSocket: ошибка кодирования сообщения: %v", err)
		return
	}

	for conn := range connections {
		go func(c *websocket.Conn) {
			if err := c.WriteMessage(websocket.TextMessage, jsonMessage); err != nil {
				log.Printf("WebSocket: ошибка отправки сообщения пользователю %d: %v", userID, err)
				manager.unregister <- &WebSocketClient{conn: c, userID: userID}
			}
		}(conn)
	}
}

// Handler обрабатывает подключения WebSocket.
// Монтируется внутри защищенной группы: user_id уже лежит в контексте.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("user_id")
		if userID == 0 {
			c.String(http.StatusUnauthorized, "Требуется авторизация")
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("WebSocket: ошибка установки соединения: %v", err)
			return
		}

		client := &WebSocketClient{conn: conn, userID: userID}
		wsManager.register <- client

		go handleMessages(client)
	}
}

// handleMessages читает сообщения клиента и отвечает на ping
func handleMessages(client *WebSocketClient) {
	defer func() {
		wsManager.unregister <- client
	}()

	for {
		_, message, err := client.conn.ReadMessage()
		if err != nil {
			break
		}

		var data map[string]interface{}
		if err := json.Unmarshal(message, &data); err != nil {
			continue
		}

		if msgType, ok := data["type"].(string); ok && msgType == "ping" {
			pongJSON, _ := json.Marshal(map[string]interface{}{
				"type": "pong",
				"time": time.Now().Unix(),
			})
			if err := client.conn.WriteMessage(websocket.TextMessage, pongJSON); err != nil {
				log.Printf("WebSocket: ошибка отправки pong: %v", err)
			}
		}
	}
}

// SendBookingStatusUpdate отправляет обновление статуса заявки
func SendBookingStatusUpdate(userID uint, bookingID uint, status string) {
	wsManager.BroadcastToUser(userID, &WebSocketMessage{
		Type: BookingStatusUpdateType,
		Payload: map[string]interface{}{
			"booking_id": bookingID,
			"status":     status,
		},
	})
}

// SendTripStatusUpdate отправляет обновление состояния рейса
func SendTripStatusUpdate(userID uint, bookingID uint, tripID uint, status string) {
	wsManager.BroadcastToUser(userID, &WebSocketMessage{
		Type: TripStatusUpdateType,
		Payload: map[string]interface{}{
			"booking_id": bookingID,
			"trip_id":    tripID,
			"status":     status,
		},
	})
}

// StartManager запускает глобальный менеджер WebSocket
func StartManager() {
	wsManager.Start()
}
