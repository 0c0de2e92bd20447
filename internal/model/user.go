// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// パスワード登録ユーザーはPasswordHashを持ち、Google OAuthのみで
// 作成されたユーザーはPasswordHashが空文字列になる。
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasPassword はパスワード認証が可能なユーザーかどうかを返す。
// OAuth専用アカウントはパスワードログインできない。
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// Invite は招待制登録のための使い捨て招待を表す。
// 1メールアドレスにつき有効な招待は1件のみ。コードは全招待で一意。
// 登録完了と同時に削除され、更新されることはない。
type Invite struct {
	ID        string
	Email     string
	Code      string
	CreatedAt time.Time
}

// GoogleAuth はユーザーとGoogleアカウントの紐付け情報を表す。
// GoogleIDはGoogle側のsubject IDで、全紐付けの中で一意。
// トークンと表示属性はログインのたびに最新の値で上書きされる。
type GoogleAuth struct {
	ID           string
	UserID       string
	GoogleID     string
	Email        string
	Name         string
	Picture      string
	AccessToken  string
	RefreshToken string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
