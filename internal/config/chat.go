package config

const (
	defaultMaxMessageLen = 2000 // 1メッセージの最大文字数（バイト数ではなくrune数）
	defaultMaxReasonLen  = 1000 // 通報理由の最大文字数
	defaultReportListMax = 1000 // Redisに保持する通報レコードの上限
)

// ChatConfig は匿名チャット関連の設定を保持します
type ChatConfig struct {
	MaxMessageLen int // リレーするメッセージの最大長
	MaxReasonLen  int // 通報理由の最大長
	ReportListMax int // 通報リストの保持上限
}

func loadChatConfig() ChatConfig {
	return ChatConfig{
		MaxMessageLen: envInt("CHAT_MAX_MESSAGE_LEN", defaultMaxMessageLen),
		MaxReasonLen:  envInt("CHAT_MAX_REASON_LEN", defaultMaxReasonLen),
		ReportListMax: envInt("REPORT_LIST_MAX", defaultReportListMax),
	}
}
