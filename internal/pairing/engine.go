// Package pairing は匿名チャットのペアリングとリレーのコアを実装します
// 接続レジストリ・待機キュー・ルームのライフサイクルを1つのロック配下で扱い、
// 「同じ相手と二重にマッチする」「切断済みの接続とマッチする」といった競合を防ぎます
package pairing

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/SereneMind/SereneMind_Chat/backend/chat-server/internal/auth"
	"github.com/SereneMind/SereneMind_Chat/backend/chat-server/internal/idgen"
	"github.com/SereneMind/SereneMind_Chat/backend/chat-server/internal/models"
	"github.com/SereneMind/SereneMind_Chat/backend/chat-server/internal/report"
)

// クライアントに見せる定型メッセージ
const (
	msgWaiting            = "Waiting for a stranger to connect..."
	msgStrangerLeft       = "Stranger has left the chat."
	msgStrangerGone       = "Stranger has disconnected."
	msgReportAccepted     = "Report submitted successfully."
	msgNotAuthenticated   = "Not authenticated"
	msgInvalidRoom        = "Invalid room"
	msgAlreadyInChat      = "Already in a chat"
	msgNoPartnerToReport  = "No active chat to report"
	msgReportSubmitFailed = "Failed to submit report"
)

// Engine はペアリングとリレーのビジネスロジックを提供します
// レジストリとキューへの変更はすべてEngineのロック配下で直列化されます
// 外部I/O（資格情報の検証、通報の永続化）だけはロックの外で行います
type Engine struct {
	mu    sync.Mutex
	reg   *registry
	queue *waitingQueue

	verifier auth.Verifier
	sink     report.Sink
	notifier Notifier

	// テストから差し替えられるように関数として持つ
	newRoomID func() string
	now       func() time.Time
}

// NewEngine は新しいEngineを作成します
func NewEngine(verifier auth.Verifier, sink report.Sink, notifier Notifier) *Engine {
	return &Engine{
		reg:       newRegistry(),
		queue:     newWaitingQueue(),
		verifier:  verifier,
		sink:      sink,
		notifier:  notifier,
		newRoomID: idgen.NewRoomID,
		now:       time.Now,
	}
}

// Register は接続確立時に未認証状態のレコードを作成します
func (e *Engine) Register(connID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reg.register(connID)
}

// Authenticate は資格情報を検証し、成功すればIdentityを保存します
// 検証はロックの外で行うため、1つの接続の認証が他の接続の
// ペアリング判断を遅らせることはありません
// エラーを返した場合、呼び出し側は接続を強制的に閉じる必要があります
func (e *Engine) Authenticate(ctx context.Context, connID, credential string) error {
	identity, err := e.verifier.Verify(ctx, credential)
	if err != nil {
		log.Printf("auth failed: connId=%s, error=%v", connID, err)
		e.notifier.Send(connID, Event{
			Type:    EventAuthenticated,
			Payload: AuthenticatedPayload{Success: false, Error: err.Error()},
		})
		return err
	}

	e.mu.Lock()
	ok := e.reg.storeIdentity(connID, identity)
	e.mu.Unlock()
	if !ok {
		// 検証中に切断された
		return ErrConnectionNotFound
	}

	log.Printf("authenticated: connId=%s, userId=%s", connID, identity.UserID)
	e.notifier.Send(connID, Event{
		Type:    EventAuthenticated,
		Payload: AuthenticatedPayload{Success: true},
	})
	return nil
}

// RequestPairing は相手を探します
// 待機中の相手がいれば新しいルームを作って双方に通知し、
// いなければ自分をキューに入れて待機通知を返します
// 既にキューにいる場合は冪等に待機通知だけを返します
func (e *Engine) RequestPairing(connID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.requestPairingLocked(connID)
}

func (e *Engine) requestPairingLocked(connID string) error {
	conn, ok := e.reg.get(connID)
	if !ok {
		return ErrConnectionNotFound
	}
	switch conn.State {
	case StateUnauthenticated:
		e.sendError(connID, msgNotAuthenticated)
		return ErrNotAuthenticated
	case StatePaired:
		e.sendError(connID, msgAlreadyInChat)
		return ErrAlreadyPaired
	}

	if e.queue.contains(connID) {
		// 二重のfindStrangerは重複エントリにせず、待機中の応答だけ返す
		e.notifier.Send(connID, Event{Type: EventWaiting, Payload: WaitingPayload{Message: msgWaiting}})
		return nil
	}

	partnerID, found := e.queue.dequeueFirstAvailable(connID, e.reg.live)
	if !found {
		e.queue.enqueue(connID)
		e.notifier.Send(connID, Event{Type: EventWaiting, Payload: WaitingPayload{Message: msgWaiting}})
		e.broadcastQueueDepthLocked()
		return nil
	}

	roomID := e.newRoomID()
	e.reg.markPaired(connID, roomID, partnerID)
	e.reg.markPaired(partnerID, roomID, connID)

	started := Event{Type: EventChatStarted, Payload: ChatStartedPayload{RoomID: roomID}}
	e.notifier.Send(connID, started)
	e.notifier.Send(partnerID, started)
	e.broadcastQueueDepthLocked()

	log.Printf("chat started: roomId=%s, connId=%s, partnerId=%s", roomID, connID, partnerID)
	return nil
}

// RequestNext は現在のチャットを離れて新しい相手を探します
// 相手には離脱を通知し、ルームは即座に破棄されます
// キューに戻るのは要求した側だけで、残された側は自分で
// findStrangerを送り直すまで待機列には入りません
func (e *Engine) RequestNext(connID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	conn, ok := e.reg.get(connID)
	if !ok {
		return ErrConnectionNotFound
	}
	if conn.State != StatePaired {
		// ペアリング中でなければ何もしない
		return nil
	}

	partnerID := conn.PartnerID
	e.teardownRoomLocked(connID, partnerID)
	e.notifier.Send(partnerID, Event{
		Type:    EventStrangerDisconnected,
		Payload: StrangerDisconnectedPayload{Message: msgStrangerLeft},
	})

	return e.requestPairingLocked(connID)
}

// HandleDisconnect はトランスポート切断時に一度だけ呼ばれます
// キュー・ルームのメンバーシップを同期的に巻き戻すため、
// 以後のペアリング試行が閉じた接続とマッチすることはありません
func (e *Engine) HandleDisconnect(connID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	conn, ok := e.reg.get(connID)
	if !ok {
		return
	}

	removed := e.queue.remove(connID)

	if conn.State == StatePaired {
		partnerID := conn.PartnerID
		e.teardownRoomLocked(connID, partnerID)
		e.notifier.Send(partnerID, Event{
			Type:    EventStrangerDisconnected,
			Payload: StrangerDisconnectedPayload{Message: msgStrangerGone},
		})
	}

	e.reg.remove(connID)
	if removed {
		e.broadcastQueueDepthLocked()
	}
	log.Printf("disconnected: connId=%s", connID)
}

// teardownRoomLocked はルームを破棄し、両者をペアリング解除状態へ戻します
// ルームIDは使い捨てなので、破棄後に同じIDが再利用されることはありません
func (e *Engine) teardownRoomLocked(connID, partnerID string) {
	e.reg.markQueued(connID)
	e.reg.markQueued(partnerID)
}

// RelayMessage はチャットメッセージを相手にリレーします
// 申告されたルームIDが現在のルームと一致しない場合は配送せず、
// 送信者にだけエラーを返します
func (e *Engine) RelayMessage(connID, claimedRoomID, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	partnerID, err := e.roomPartnerLocked(connID, claimedRoomID)
	if err != nil {
		return err
	}

	e.notifier.Send(partnerID, Event{
		Type: EventMessage,
		Payload: MessagePayload{
			Sender:    "Stranger",
			Text:      text,
			Timestamp: e.now().UnixMilli(),
		},
	})
	return nil
}

// RelayTyping は入力中シグナルを相手にリレーします
// ベストエフォートであり、配送確認や再送はしません
func (e *Engine) RelayTyping(connID, claimedRoomID string, stop bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	partnerID, err := e.roomPartnerLocked(connID, claimedRoomID)
	if err != nil {
		return err
	}

	evType := EventTyping
	if stop {
		evType = EventStopTyping
	}
	e.notifier.Send(partnerID, Event{Type: evType})
	return nil
}

// roomPartnerLocked はルーム所属を検証して相手のconnIDを返します
func (e *Engine) roomPartnerLocked(connID, claimedRoomID string) (string, error) {
	conn, ok := e.reg.get(connID)
	if !ok {
		return "", ErrConnectionNotFound
	}
	if conn.State == StateUnauthenticated {
		e.sendError(connID, msgNotAuthenticated)
		return "", ErrNotAuthenticated
	}
	if conn.State != StatePaired || conn.RoomID != claimedRoomID {
		// ルーム破棄後に古いルームIDで送ってきたケースもここに落ちる
		e.sendError(connID, msgInvalidRoom)
		return "", ErrInvalidRoom
	}
	return conn.PartnerID, nil
}

// SubmitReport は現在の相手に対する通報をReport Sinkへ転送します
// Sinkへの書き込みはロックの外で行い、失敗してもチャットの状態には触れません
func (e *Engine) SubmitReport(ctx context.Context, connID, reason string) error {
	e.mu.Lock()
	conn, ok := e.reg.get(connID)
	if !ok {
		e.mu.Unlock()
		return ErrConnectionNotFound
	}
	if conn.State == StateUnauthenticated {
		e.mu.Unlock()
		e.sendError(connID, msgNotAuthenticated)
		return ErrNotAuthenticated
	}
	if conn.State != StatePaired {
		e.mu.Unlock()
		e.sendError(connID, msgNoPartnerToReport)
		return ErrNoPartnerToReport
	}
	partner, ok := e.reg.get(conn.PartnerID)
	if !ok {
		// ペアリング中なら相手は必ずレジストリにいるはず
		e.mu.Unlock()
		e.sendError(connID, msgNoPartnerToReport)
		return ErrNoPartnerToReport
	}
	rep := models.Report{
		ReporterID: conn.Identity.UserID,
		ReportedID: partner.Identity.UserID,
		Reason:     reason,
		Timestamp:  e.now().UnixMilli(),
	}
	e.mu.Unlock()

	if err := e.sink.Submit(ctx, rep); err != nil {
		log.Printf("report sink error: connId=%s, error=%v", connID, err)
		e.sendError(connID, msgReportSubmitFailed)
		return err
	}

	e.notifier.Send(connID, Event{
		Type:    EventReportSubmitted,
		Payload: ReportSubmittedPayload{Message: msgReportAccepted},
	})
	log.Printf("report submitted: reporter=%s, reported=%s", rep.ReporterID, rep.ReportedID)
	return nil
}

// QueueDepth は現在の待機人数を返します
func (e *Engine) QueueDepth() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queue.size()
}

// broadcastQueueDepthLocked は待機人数の変化を全クライアントに通知します
func (e *Engine) broadcastQueueDepthLocked() {
	e.notifier.Broadcast(Event{
		Type:    EventQueueUpdate,
		Payload: QueueUpdatePayload{Count: e.queue.size()},
	})
}

func (e *Engine) sendError(connID, msg string) {
	e.notifier.Send(connID, Event{Type: EventError, Payload: ErrorPayload{Message: msg}})
}
