package pairing

import (
	"log"

	"github.com/SereneMind/SereneMind_Chat/backend/chat-server/internal/models"
)

// State は接続の認証・ペアリング状態を表します
type State int

const (
	// StateUnauthenticated は認証前の状態
	StateUnauthenticated State = iota
	// StateQueued は認証済みかつ未ペアリングの状態
	// 実際に待機キューに入っているかどうかはキュー側で管理します
	StateQueued
	// StatePaired はルームに入って相手とつながっている状態
	StatePaired
	// StateClosed は終端状態。どの状態からも遷移し得ます
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "Unauthenticated"
	case StateQueued:
		return "Queued"
	case StatePaired:
		return "Paired"
	case StateClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// Connection は1つのライブ接続の登録情報です
// レジストリがライフタイムを通して排他的に所有します
type Connection struct {
	ID        string
	Identity  models.Identity // 認証成功後にのみ設定される
	State     State
	RoomID    string // StatePairedの間のみ有効
	PartnerID string // StatePairedの間のみ有効
}

// registry は全接続の認証・ペアリング状態の唯一の情報源です
// スレッドセーフではなく、Engineのロック配下でのみ操作します
type registry struct {
	conns map[string]*Connection
}

func newRegistry() *registry {
	return &registry{conns: make(map[string]*Connection)}
}

// register は接続時に未認証状態のレコードを作成します
func (r *registry) register(connID string) {
	r.conns[connID] = &Connection{ID: connID, State: StateUnauthenticated}
}

// get は接続レコードを取得します
func (r *registry) get(connID string) (*Connection, bool) {
	c, ok := r.conns[connID]
	return c, ok
}

// storeIdentity は認証成功後にIdentityを保存します
// 未認証の接続だけをQueued相当へ遷移させ、認証済みの接続への再認証は
// Identityの更新にとどめます。ペアリング中の接続をここで状態遷移させると、
// 相手だけがルームに取り残されてしまうためです
func (r *registry) storeIdentity(connID string, id models.Identity) bool {
	c, ok := r.conns[connID]
	if !ok {
		log.Printf("registry: storeIdentity on unknown connection: connId=%s", connID)
		return false
	}
	c.Identity = id
	if c.State == StateUnauthenticated {
		c.State = StateQueued
	}
	return true
}

// markPaired は接続をルーム入室状態へ遷移させます
// レコードが存在しない場合は何もせず診断ログのみ残します
func (r *registry) markPaired(connID, roomID, partnerID string) {
	c, ok := r.conns[connID]
	if !ok {
		log.Printf("registry: markPaired on unknown connection: connId=%s", connID)
		return
	}
	c.State = StatePaired
	c.RoomID = roomID
	c.PartnerID = partnerID
}

// markQueued は接続を未ペアリング状態へ戻します
func (r *registry) markQueued(connID string) {
	c, ok := r.conns[connID]
	if !ok {
		log.Printf("registry: markQueued on unknown connection: connId=%s", connID)
		return
	}
	c.State = StateQueued
	c.RoomID = ""
	c.PartnerID = ""
}

// remove はトランスポート切断時に一度だけ呼ばれ、レコードを破棄します
func (r *registry) remove(connID string) {
	c, ok := r.conns[connID]
	if !ok {
		return
	}
	c.State = StateClosed
	delete(r.conns, connID)
}

// live は接続がペアリング候補として有効かを返します
// 切断済み・ペアリング済みの接続は候補から外れます
func (r *registry) live(connID string) bool {
	c, ok := r.conns[connID]
	return ok && c.State == StateQueued
}
