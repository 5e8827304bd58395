// Package models はアプリケーションで使用するデータ構造を定義します
package models

// Identity は資格情報の検証によって得られるユーザーの安定した参照です
// このコアにとっては不透明な値であり、中身を解釈しません
type Identity struct {
	UserID string `json:"userId"`          // ユーザーの一意な識別子
	Email  string `json:"email,omitempty"` // メールアドレス（トークンに含まれる場合のみ）
}

// Report は匿名チャットでの通報レコードを表します
// 送信した時点で所有権はReport Sinkに移ります
type Report struct {
	ReporterID string `json:"reporterId"`     // 通報したユーザーのID
	ReportedID string `json:"reportedUserId"` // 通報されたユーザーのID
	Reason     string `json:"reason"`         // 通報理由（自由記述）
	Timestamp  int64  `json:"timestamp"`      // サーバー側で付与したUnixミリ秒
}
