package idgen

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

func newULID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), entropy).String()
}

// NewConnectionID は接続ごとに割り当てる一意なハンドルを生成します
func NewConnectionID() string {
	return "conn_" + newULID()
}

// NewRoomID はペアリングごとに使い捨てるルームIDを生成します
// ULIDなのでプロセス内で同じIDが再利用されることはありません
func NewRoomID() string {
	return "room_" + newULID()
}
