// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/rediscover/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。
	// メールアドレスの一意制約違反の場合はErrDuplicateをラップしたエラーを返す。
	Create(ctx context.Context, user *model.User) error
}

// InviteRepository は招待データの永続化インターフェース。
type InviteRepository interface {
	// FindByEmail はメールアドレスで招待を検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.Invite, error)

	// FindByCode は招待コードで招待を検索する。見つからない場合はnilを返す。
	FindByCode(ctx context.Context, code string) (*model.Invite, error)

	// Create は招待を作成する。
	// メールアドレスの一意制約違反の場合はErrDuplicateEmailを、
	// コードの一意制約違反の場合はErrDuplicateをラップしたエラーを返す。
	Create(ctx context.Context, invite *model.Invite) error

	// DeleteByEmail は指定メールアドレスの招待を削除する。
	// 該当行が存在しなくてもエラーにしない（冪等）。
	DeleteByEmail(ctx context.Context, email string) error
}

// GoogleAuthRepository はGoogleアカウント紐付け情報の永続化インターフェース。
type GoogleAuthRepository interface {
	// FindByGoogleID はGoogle側のsubject IDで紐付けを検索する。見つからない場合はnilを返す。
	FindByGoogleID(ctx context.Context, googleID string) (*model.GoogleAuth, error)

	// Create は紐付けを作成する。
	// google_idの一意制約違反の場合はErrDuplicateをラップしたエラーを返す。
	Create(ctx context.Context, ga *model.GoogleAuth) error

	// UpdateTokens は既存紐付けのトークンと表示属性を上書きし、updated_atを更新する。
	UpdateTokens(ctx context.Context, ga *model.GoogleAuth) error
}

// WaitlistRepository は公開待ちリストの永続化インターフェース。
type WaitlistRepository interface {
	// FindByEmail はメールアドレスで登録を検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.WaitlistEntry, error)

	// Create は登録を作成する。
	// 一意制約違反の場合はErrDuplicateをラップしたエラーを返す。
	Create(ctx context.Context, entry *model.WaitlistEntry) error
}

// LocationRepository はリバースジオコーディング結果キャッシュの永続化インターフェース。
type LocationRepository interface {
	// FindByGeohash はgeohashでキャッシュ済みレコードを検索する。見つからない場合はnilを返す。
	FindByGeohash(ctx context.Context, geohash string) (*model.Location, error)

	// Create はレコードを作成する。
	// geohashの一意制約違反の場合はErrDuplicateをラップしたエラーを返す
	// （同一座標への並行リクエストで発生しうる）。
	Create(ctx context.Context, loc *model.Location) error
}

// LocationInfoRepository はAI生成ナラティブの永続化インターフェース。
type LocationInfoRepository interface {
	// FindByGeohash はgeohashでナラティブを検索する。見つからない場合はnilを返す。
	FindByGeohash(ctx context.Context, geohash string) (*model.LocationInfo, error)

	// Create はナラティブを作成する。
	// geohashの一意制約違反の場合はErrDuplicateをラップしたエラーを返す。
	Create(ctx context.Context, info *model.LocationInfo) error
}
