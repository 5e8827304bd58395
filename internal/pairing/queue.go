package pairing

// waitingQueue は認証済み・未ペアリングの接続を到着順に保持します
// 同じconnIDは高々1回しか現れません（冪等なenqueue）
// スレッドセーフではなく、Engineのロック配下でのみ操作します
type waitingQueue struct {
	order  []string
	member map[string]struct{}
}

func newWaitingQueue() *waitingQueue {
	return &waitingQueue{member: make(map[string]struct{})}
}

// enqueue は接続をキュー末尾に追加します
// 既に存在する場合は何もせずfalseを返します
func (q *waitingQueue) enqueue(connID string) bool {
	if _, ok := q.member[connID]; ok {
		return false
	}
	q.order = append(q.order, connID)
	q.member[connID] = struct{}{}
	return true
}

// contains は接続がキューに存在するかを返します
func (q *waitingQueue) contains(connID string) bool {
	_, ok := q.member[connID]
	return ok
}

// remove は接続をキューから取り除きます（冪等）
// 取り除いた場合はtrueを返します
func (q *waitingQueue) remove(connID string) bool {
	if _, ok := q.member[connID]; !ok {
		return false
	}
	delete(q.member, connID)
	for i, id := range q.order {
		if id == connID {
			q.order = append(q.order[:i], q.order[i+1:]...)
			break
		}
	}
	return true
}

// size は現在の待機人数を返します
func (q *waitingQueue) size() int {
	return len(q.order)
}

// dequeueFirstAvailable は先頭から走査し、excluding以外で
// liveが真となる最初の接続を取り出して返します
// 走査中に見つかった死んだエントリはそのまま掃除します
func (q *waitingQueue) dequeueFirstAvailable(excluding string, live func(connID string) bool) (string, bool) {
	kept := q.order[:0]
	var found string
	for i, id := range q.order {
		if found == "" && id != excluding && live(id) {
			found = id
			delete(q.member, id)
			continue
		}
		if found == "" && id != excluding && !live(id) {
			// レジストリ上で既にClosed/Pairedのエントリは捨てる
			delete(q.member, id)
			continue
		}
		kept = append(kept, q.order[i])
	}
	q.order = kept
	if found == "" {
		return "", false
	}
	return found, true
}
