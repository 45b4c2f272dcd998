package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/restaurant"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/waitlist"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/pkg/interval"
)

const waitlistColumns = `id, restaurant_id, customer_name, phone, party_size, preferred_date, created_at`

type waitlistRow struct {
	ID            string    `db:"id"`
	RestaurantID  string    `db:"restaurant_id"`
	CustomerName  string    `db:"customer_name"`
	Phone         string    `db:"phone"`
	PartySize     int       `db:"party_size"`
	PreferredDate time.Time `db:"preferred_date"`
	CreatedAt     time.Time `db:"created_at"`
}

func (r *waitlistRow) toEntity() *waitlist.Entry {
	return &waitlist.Entry{
		ID: r.ID, RestaurantID: r.RestaurantID,
		CustomerName: r.CustomerName, Phone: r.Phone, PartySize: r.PartySize,
		PreferredDate: interval.DayStart(r.PreferredDate),
		CreatedAt:     r.CreatedAt.UTC(),
	}
}

// WaitlistRepository はウェイティングリストのPostgreSQL実装
type WaitlistRepository struct {
	db *sqlx.DB
}

// NewWaitlistRepository は新しいWaitlistRepositoryを作成する
func NewWaitlistRepository(db *sqlx.DB) *WaitlistRepository {
	return &WaitlistRepository{db: db}
}

func (r *WaitlistRepository) Create(ctx context.Context, e *waitlist.Entry) error {
	query := `
		INSERT INTO waitlist_entries (restaurant_id, customer_name, phone, party_size, preferred_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		e.RestaurantID, e.CustomerName, e.Phone, e.PartySize, e.PreferredDateString(), e.CreatedAt,
	).Scan(&e.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return restaurant.ErrRestaurantNotFound
		}
		return fmt.Errorf("ウェイティングリスト登録に失敗: %w", err)
	}
	return nil
}

func (r *WaitlistRepository) GetByID(ctx context.Context, id string) (*waitlist.Entry, error) {
	var row waitlistRow
	query := `SELECT ` + waitlistColumns + ` FROM waitlist_entries WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if isNotFound(err) {
			return nil, waitlist.ErrEntryNotFound
		}
		return nil, fmt.Errorf("ウェイティングリスト取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *WaitlistRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM waitlist_entries WHERE id = $1`, id)
	if isInvalidID(err) {
		return waitlist.ErrEntryNotFound
	}
	if err != nil {
		return fmt.Errorf("ウェイティングリスト削除に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return waitlist.ErrEntryNotFound
	}
	return nil
}

// ListByDate は件数とページを REPEATABLE READ の読み取り専用トランザクションで取得する
func (r *WaitlistRepository) ListByDate(ctx context.Context, restaurantID string, date time.Time, limit, offset int) ([]*waitlist.Entry, int, error) {
	day := interval.FormatDate(date)

	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, 0, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var total int
	countQuery := `SELECT COUNT(*) FROM waitlist_entries WHERE restaurant_id = $1 AND preferred_date = $2::date`
	if err := tx.GetContext(ctx, &total, countQuery, restaurantID, day); err != nil {
		if isInvalidID(err) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("ウェイティングリスト件数の取得に失敗: %w", err)
	}

	var rows []waitlistRow
	query := `
		SELECT ` + waitlistColumns + `
		FROM waitlist_entries
		WHERE restaurant_id = $1 AND preferred_date = $2::date
		ORDER BY created_at ASC, id ASC
		LIMIT $3 OFFSET $4`
	if err := tx.SelectContext(ctx, &rows, query, restaurantID, day, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("ウェイティングリスト一覧の取得に失敗: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("コミットに失敗: %w", err)
	}

	entries := make([]*waitlist.Entry, len(rows))
	for i := range rows {
		entries[i] = rows[i].toEntity()
	}
	return entries, total, nil
}

var _ waitlist.Repository = (*WaitlistRepository)(nil)
