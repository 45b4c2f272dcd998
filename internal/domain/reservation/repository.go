package reservation

import (
	"context"
	"time"

	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/transaction"
)

// Repository は予約リポジトリのインターフェース
type Repository interface {
	// Create は新しい予約を作成する（トランザクション必須）
	// 同一テーブルのアクティブな予約と重なる場合は ErrTableUnavailable
	Create(ctx context.Context, tx transaction.Tx, reservation *Reservation) error

	// GetByID はIDから予約を取得する
	GetByID(ctx context.Context, id string) (*Reservation, error)

	// GetByIDForUpdate はIDから予約を行ロック付きで取得する（トランザクション必須）
	GetByIDForUpdate(ctx context.Context, tx transaction.Tx, id string) (*Reservation, error)

	// Update は予約を更新する（トランザクション必須）
	Update(ctx context.Context, tx transaction.Tx, reservation *Reservation) error

	// HasOverlap はテーブルに [start, end) と重なるアクティブな予約があるかを返す（トランザクション必須）
	// excludeID が空でなければその予約自身は除外する
	HasOverlap(ctx context.Context, tx transaction.Tx, tableID string, start, end time.Time, excludeID string) (bool, error)

	// ListActiveOverlapping はレストランの [start, end) と重なるアクティブな予約を取得する
	ListActiveOverlapping(ctx context.Context, restaurantID string, start, end time.Time) ([]*Reservation, error)

	// ListByDate は開始時刻がUTCの指定日に入る予約を開始時刻順に取得し、総件数と合わせて返す
	// 件数とページは同一スナップショットから読む
	ListByDate(ctx context.Context, restaurantID string, day time.Time, limit, offset int) ([]*Reservation, int, error)
}
