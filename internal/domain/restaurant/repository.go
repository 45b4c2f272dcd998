package restaurant

import "context"

// Repository はレストランリポジトリのインターフェース
type Repository interface {
	// Create は新しいレストランを作成する
	Create(ctx context.Context, restaurant *Restaurant) error

	// GetByID はIDからレストランを取得する
	GetByID(ctx context.Context, id string) (*Restaurant, error)
}
