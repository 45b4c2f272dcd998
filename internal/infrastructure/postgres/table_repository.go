package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/restaurant"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/table"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/transaction"
)

const tableColumns = `id, restaurant_id, table_number, capacity, created_at`

type tableRow struct {
	ID           string    `db:"id"`
	RestaurantID string    `db:"restaurant_id"`
	TableNumber  string    `db:"table_number"`
	Capacity     int       `db:"capacity"`
	CreatedAt    time.Time `db:"created_at"`
}

func (r *tableRow) toEntity() *table.Table {
	return &table.Table{
		ID: r.ID, RestaurantID: r.RestaurantID, TableNumber: r.TableNumber,
		Capacity: r.Capacity, CreatedAt: r.CreatedAt.UTC(),
	}
}

func tableRowsToEntities(rows []tableRow) []*table.Table {
	tables := make([]*table.Table, len(rows))
	for i := range rows {
		tables[i] = rows[i].toEntity()
	}
	return tables
}

// TableRepository はテーブルのPostgreSQL実装
type TableRepository struct {
	db *sqlx.DB
}

// NewTableRepository は新しいTableRepositoryを作成する
func NewTableRepository(db *sqlx.DB) *TableRepository {
	return &TableRepository{db: db}
}

func (r *TableRepository) Create(ctx context.Context, t *table.Table) error {
	query := `INSERT INTO tables (restaurant_id, table_number, capacity, created_at) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, t.RestaurantID, t.TableNumber, t.Capacity, t.CreatedAt).Scan(&t.ID); err != nil {
		if isForeignKeyViolation(err) {
			return restaurant.ErrRestaurantNotFound
		}
		if mapped := mapPQError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("テーブル作成に失敗: %w", err)
	}
	return nil
}

func (r *TableRepository) GetByID(ctx context.Context, id string) (*table.Table, error) {
	var row tableRow
	query := `SELECT ` + tableColumns + ` FROM tables WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if isNotFound(err) {
			return nil, table.ErrTableNotFound
		}
		return nil, fmt.Errorf("テーブル取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *TableRepository) ListByRestaurant(ctx context.Context, restaurantID string) ([]*table.Table, error) {
	var rows []tableRow
	query := `SELECT ` + tableColumns + ` FROM tables WHERE restaurant_id = $1 ORDER BY table_number, id`
	if err := r.db.SelectContext(ctx, &rows, query, restaurantID); err != nil {
		if isInvalidID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("テーブル一覧取得に失敗: %w", err)
	}
	return tableRowsToEntities(rows), nil
}

// ListWithMinCapacity は最小定員のテーブルから順に返す（同定員はテーブル番号、ID順）
func (r *TableRepository) ListWithMinCapacity(ctx context.Context, restaurantID string, minCapacity int) ([]*table.Table, error) {
	var rows []tableRow
	query := `
		SELECT ` + tableColumns + `
		FROM tables
		WHERE restaurant_id = $1 AND capacity >= $2
		ORDER BY capacity ASC, table_number ASC, id ASC`
	if err := r.db.SelectContext(ctx, &rows, query, restaurantID, minCapacity); err != nil {
		if isInvalidID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("候補テーブル取得に失敗: %w", err)
	}
	return tableRowsToEntities(rows), nil
}

// LockForUpdate はテーブル行を FOR UPDATE でロックし、同一テーブルへの予約確定を直列化する
func (r *TableRepository) LockForUpdate(ctx context.Context, tx transaction.Tx, id string) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return errNoTx
	}
	var locked string
	if err := sqlxTx.GetContext(ctx, &locked, `SELECT id FROM tables WHERE id = $1 FOR UPDATE`, id); err != nil {
		if isNotFound(err) {
			return table.ErrTableNotFound
		}
		return fmt.Errorf("テーブルロックに失敗: %w", mapPQError(err))
	}
	return nil
}

var _ table.Repository = (*TableRepository)(nil)
