package waitlist

import (
	"context"
	"time"
)

// Repository はウェイティングリストリポジトリのインターフェース
type Repository interface {
	// Create は新しいエントリを作成する
	Create(ctx context.Context, entry *Entry) error

	// GetByID はIDからエントリを取得する
	GetByID(ctx context.Context, id string) (*Entry, error)

	// Delete はエントリを削除する
	Delete(ctx context.Context, id string) error

	// ListByDate は希望日のエントリを登録順に取得し、総件数と合わせて返す
	ListByDate(ctx context.Context, restaurantID string, date time.Time, limit, offset int) ([]*Entry, int, error)
}
