package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/SereneMind/SereneMind_Chat/backend/chat-server/internal/config"
	"github.com/SereneMind/SereneMind_Chat/backend/chat-server/internal/idgen"
	"github.com/SereneMind/SereneMind_Chat/backend/chat-server/internal/pairing"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second    // 1フレームの書き込みに許容する時間
	pongWait       = 60 * time.Second    // pong応答を待つ時間
	pingPeriod     = (pongWait * 9) / 10 // pingの送信間隔。pongWaitより短いこと
	maxMessageSize = 16 * 1024           // クライアントから受け付ける最大フレームサイズ
	sendBufferSize = 32                  // 送信チャネルのバッファ長
)

// ChatHub は接続中の全クライアントを管理します
// pairing.Notifierを実装し、エンジンからのイベント配送を引き受けます
type ChatHub struct {
	clients map[string]*Client // connIDをキーとしたクライアントのマップ
	mu      sync.RWMutex       // 読み書きのロック
}

// Client は1つのWebSocket接続を表します
// 書き込みはすべてsendチャネル経由でwritePumpに集約されます
type Client struct {
	connID string
	conn   *websocket.Conn
	send   chan pairing.Event
}

// NewChatHub は新しいChatHubを作成します
func NewChatHub() *ChatHub {
	return &ChatHub{clients: make(map[string]*Client)}
}

// Send は特定の接続にイベントを送信します
// 送信バッファが詰まっている場合は破棄します（ベストエフォート配送）
func (h *ChatHub) Send(connID string, ev pairing.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	client, ok := h.clients[connID]
	if !ok {
		return
	}
	select {
	case client.send <- ev:
	default:
		log.Printf("send buffer full, dropping event: connId=%s, type=%s", connID, ev.Type)
	}
}

// Broadcast は接続中の全クライアントにイベントを送信します
func (h *ChatHub) Broadcast(ev pairing.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for connID, client := range h.clients {
		select {
		case client.send <- ev:
		default:
			log.Printf("send buffer full, dropping broadcast: connId=%s, type=%s", connID, ev.Type)
		}
	}
}

// register はクライアントをハブに登録します
func (h *ChatHub) register(connID string, conn *websocket.Conn) *Client {
	client := &Client{
		connID: connID,
		conn:   conn,
		send:   make(chan pairing.Event, sendBufferSize),
	}
	h.mu.Lock()
	h.clients[connID] = client
	h.mu.Unlock()
	return client
}

// unregister はクライアントをハブから外し、送信チャネルを閉じます
// チャネルを閉じることでwritePumpが終了します
func (h *ChatHub) unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client.connID]; !ok {
		return
	}
	delete(h.clients, client.connID)
	close(client.send)
}

// clientMessage はクライアントから受信するメッセージの構造
// ペイロードはタイプごとの構造体で検証してからエンジンに渡します
type clientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// クライアント → サーバーのペイロード定義
type authenticatePayload struct {
	Token string `json:"token"`
}

type messagePayload struct {
	RoomID string `json:"roomId"`
	Text   string `json:"text"`
}

type typingPayload struct {
	RoomID string `json:"roomId"`
}

type reportPayload struct {
	Reason string `json:"reason"`
}

// WebSocketHandler は匿名チャットのWebSocket接続を処理するハンドラー
type WebSocketHandler struct {
	engine   *pairing.Engine   // ペアリングとリレーのビジネスロジック
	hub      *ChatHub          // 接続中クライアントの管理とイベント配送
	chatCfg  config.ChatConfig // メッセージ長などの上限
	upgrader websocket.Upgrader
}

// NewWebSocketHandler は新しいWebSocketHandlerを作成します
// allowedOriginsが空の場合はすべてのオリジンを許可します
func NewWebSocketHandler(engine *pairing.Engine, hub *ChatHub, chatCfg config.ChatConfig, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		engine:  engine,
		hub:     hub,
		chatCfg: chatCfg,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return originAllowed(r, allowedOrigins)
			},
		},
	}
}

// originAllowed はUpgradeリクエストのOriginを許可リストと照合します
// Originヘッダーがないリクエスト（非ブラウザクライアント）は許可します
func originAllowed(r *http.Request, allowed []string) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(allowed) == 0 {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	for _, a := range allowed {
		if a == origin {
			return true
		}
		if au, err := url.Parse(a); err == nil && au.Host == u.Host && au.Scheme == u.Scheme {
			return true
		}
	}
	return false
}

// HandleChat はWebSocket接続を処理します
// 接続後、以下の処理を行います:
// 1. HTTPからWebSocketへのアップグレード
// 2. 接続の登録（ハブとレジストリの両方）
// 3. メッセージ受信ループの開始
// 4. 切断時の巻き戻し（キュー・ルームからの離脱と相手への通知）
func (h *WebSocketHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	connID := idgen.NewConnectionID()
	client := h.hub.register(connID, conn)
	h.engine.Register(connID)

	go client.writePump()

	defer func() {
		// エンジン側の巻き戻しを先に行う
		// 以後のペアリング試行がこの接続とマッチすることはない
		h.engine.HandleDisconnect(connID)
		// 接続はここでは閉じない。unregisterでsendチャネルが閉じられ、
		// writePumpが残りのイベントを書き切ってから閉じる
		h.hub.unregister(client)
	}()

	log.Printf("WebSocket connected: connId=%s", connID)

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: connId=%s, %v", connID, err)
			}
			break
		}
		if !h.dispatch(r.Context(), connID, msg) {
			break
		}
	}
}

// dispatch は受信メッセージをタイプごとに処理します
// falseを返した場合は受信ループを抜けて接続を閉じます
func (h *WebSocketHandler) dispatch(ctx context.Context, connID string, msg clientMessage) bool {
	switch msg.Type {
	case "authenticate":
		var p authenticatePayload
		if !h.decodePayload(connID, msg.Payload, &p) {
			// 認証の試行に失敗した未認証接続を開いたままにしない
			return false
		}
		// 認証失敗は接続に対して致命的。通知はエンジン側が送っている
		if err := h.engine.Authenticate(ctx, connID, p.Token); err != nil {
			return false
		}

	case "findStranger":
		h.engine.RequestPairing(connID)

	case "message":
		var p messagePayload
		if !h.decodePayload(connID, msg.Payload, &p) {
			return true
		}
		if err := validateRoomID(p.RoomID); err != nil {
			h.sendError(connID, err.Error())
			return true
		}
		if err := validateMessageText(p.Text, h.chatCfg.MaxMessageLen); err != nil {
			h.sendError(connID, err.Error())
			return true
		}
		h.engine.RelayMessage(connID, normalizeID(p.RoomID), p.Text)

	case "typing", "stopTyping":
		var p typingPayload
		if !h.decodePayload(connID, msg.Payload, &p) {
			return true
		}
		if err := validateRoomID(p.RoomID); err != nil {
			h.sendError(connID, err.Error())
			return true
		}
		h.engine.RelayTyping(connID, normalizeID(p.RoomID), msg.Type == "stopTyping")

	case "nextChat":
		h.engine.RequestNext(connID)

	case "report":
		var p reportPayload
		if !h.decodePayload(connID, msg.Payload, &p) {
			return true
		}
		if err := validateReason(p.Reason, h.chatCfg.MaxReasonLen); err != nil {
			h.sendError(connID, err.Error())
			return true
		}
		h.engine.SubmitReport(ctx, connID, p.Reason)

	case "ping":
		// ping/pongで接続を維持
		h.hub.Send(connID, pairing.Event{Type: pairing.EventPong})

	default:
		log.Printf("Unknown message type: connId=%s, type=%s", connID, msg.Type)
	}
	return true
}

// decodePayload はペイロードをタイプごとの構造体にデコードします
// 不正なペイロードはエンジンに渡す前にここで弾きます
func (h *WebSocketHandler) decodePayload(connID string, raw json.RawMessage, dst any) bool {
	if len(raw) == 0 {
		h.sendError(connID, "missing payload")
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		h.sendError(connID, "invalid payload")
		return false
	}
	return true
}

func (h *WebSocketHandler) sendError(connID, msg string) {
	h.hub.Send(connID, pairing.Event{Type: pairing.EventError, Payload: pairing.ErrorPayload{Message: msg}})
}

// writePump はハブからのイベントをWebSocket接続へ書き出します
// 接続ごとに1つだけ起動し、書き込みをこのgoroutineに集約することで
// イベントの順序を保ちます
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// ハブ側でチャネルが閉じられた
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
				log.Printf("write error: connId=%s, %v", c.connID, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
