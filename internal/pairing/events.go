package pairing

// Event はサーバーからクライアントへ送信するメッセージの構造
// すべてのイベントはこの形式でやり取りされます
type Event struct {
	Type    string `json:"type"`              // イベントタイプ (例: "chatStarted", "queueUpdate")
	Payload any    `json:"payload,omitempty"` // イベントのペイロード
}

// サーバー → クライアントのイベントタイプ
const (
	EventAuthenticated        = "authenticated"
	EventWaiting              = "waiting"
	EventQueueUpdate          = "queueUpdate"
	EventChatStarted          = "chatStarted"
	EventMessage              = "message"
	EventTyping               = "typing"
	EventStopTyping           = "stopTyping"
	EventStrangerDisconnected = "strangerDisconnected"
	EventReportSubmitted      = "reportSubmitted"
	EventError                = "error"
	EventPong                 = "pong"
)

// AuthenticatedPayload は認証結果のペイロード
type AuthenticatedPayload struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// WaitingPayload は待機中通知のペイロード
type WaitingPayload struct {
	Message string `json:"message"`
}

// QueueUpdatePayload は待機人数の全体ブロードキャストのペイロード
type QueueUpdatePayload struct {
	Count int `json:"count"`
}

// ChatStartedPayload はペアリング成立通知のペイロード
type ChatStartedPayload struct {
	RoomID string `json:"roomId"`
}

// MessagePayload はリレーされるチャットメッセージのペイロード
// 送信者の素性は隠し、常に "Stranger" として届けます
type MessagePayload struct {
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

// StrangerDisconnectedPayload は相手の離脱通知のペイロード
type StrangerDisconnectedPayload struct {
	Message string `json:"message"`
}

// ReportSubmittedPayload は通報受理通知のペイロード
type ReportSubmittedPayload struct {
	Message string `json:"message"`
}

// ErrorPayload はクライアントに見せるエラーのペイロード
type ErrorPayload struct {
	Message string `json:"message"`
}

// Notifier はイベントをクライアントへ届けるインターフェース
// トランスポート層（WebSocketハブ）が実装します
type Notifier interface {
	// Send は特定の接続にイベントを送信します
	// 宛先が既に切断されている場合は黙って破棄して構いません
	Send(connID string, ev Event)
	// Broadcast は接続中の全クライアントにイベントを送信します
	Broadcast(ev Event)
}
