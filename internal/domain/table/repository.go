package table

import (
	"context"

	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/transaction"
)

// Repository はテーブルリポジトリのインターフェース
type Repository interface {
	// Create は新しいテーブルを作成する（番号重複時は ErrDuplicateTableNumber）
	Create(ctx context.Context, table *Table) error

	// GetByID はIDからテーブルを取得する
	GetByID(ctx context.Context, id string) (*Table, error)

	// ListByRestaurant はレストランのテーブルをテーブル番号順に取得する
	ListByRestaurant(ctx context.Context, restaurantID string) ([]*Table, error)

	// ListWithMinCapacity は定員が minCapacity 以上のテーブルを定員の小さい順に取得する
	ListWithMinCapacity(ctx context.Context, restaurantID string, minCapacity int) ([]*Table, error)

	// LockForUpdate はテーブル行を排他ロックする（トランザクション必須）
	LockForUpdate(ctx context.Context, tx transaction.Tx, id string) error
}
