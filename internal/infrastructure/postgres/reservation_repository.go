package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/transaction"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/pkg/interval"
)

const reservationColumns = `id, restaurant_id, table_id, customer_name, phone, party_size, start_at, end_at, status, notified, created_at, updated_at`

type reservationRow struct {
	ID           string    `db:"id"`
	RestaurantID string    `db:"restaurant_id"`
	TableID      string    `db:"table_id"`
	CustomerName string    `db:"customer_name"`
	Phone        string    `db:"phone"`
	PartySize    int       `db:"party_size"`
	StartAt      time.Time `db:"start_at"`
	EndAt        time.Time `db:"end_at"`
	Status       string    `db:"status"`
	Notified     bool      `db:"notified"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r *reservationRow) toEntity() *reservation.Reservation {
	return &reservation.Reservation{
		ID: r.ID, RestaurantID: r.RestaurantID, TableID: r.TableID,
		CustomerName: r.CustomerName, Phone: r.Phone, PartySize: r.PartySize,
		StartAt: r.StartAt.UTC(), EndAt: r.EndAt.UTC(),
		Status: reservation.Status(r.Status), Notified: r.Notified,
		CreatedAt: r.CreatedAt.UTC(), UpdatedAt: r.UpdatedAt.UTC(),
	}
}

func reservationRowsToEntities(rows []reservationRow) []*reservation.Reservation {
	result := make([]*reservation.Reservation, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result
}

// ReservationRepository は予約のPostgreSQL実装
type ReservationRepository struct {
	db *sqlx.DB
}

// NewReservationRepository は新しいReservationRepositoryを作成する
func NewReservationRepository(db *sqlx.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

func (r *ReservationRepository) Create(ctx context.Context, tx transaction.Tx, res *reservation.Reservation) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return errNoTx
	}
	query := `
		INSERT INTO reservations (restaurant_id, table_id, customer_name, phone, party_size, start_at, end_at, status, notified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`
	err := sqlxTx.QueryRowContext(ctx, query,
		res.RestaurantID, res.TableID, res.CustomerName, res.Phone, res.PartySize,
		res.StartAt, res.EndAt, string(res.Status), res.Notified, res.CreatedAt, res.UpdatedAt,
	).Scan(&res.ID)
	if err != nil {
		if mapped := mapPQError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("予約作成に失敗: %w", err)
	}
	return nil
}

func (r *ReservationRepository) GetByID(ctx context.Context, id string) (*reservation.Reservation, error) {
	var row reservationRow
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if isNotFound(err) {
			return nil, reservation.ErrReservationNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *ReservationRepository) GetByIDForUpdate(ctx context.Context, tx transaction.Tx, id string) (*reservation.Reservation, error) {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return nil, errNoTx
	}
	var row reservationRow
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1 FOR UPDATE`
	if err := sqlxTx.GetContext(ctx, &row, query, id); err != nil {
		if isNotFound(err) {
			return nil, reservation.ErrReservationNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", mapPQError(err))
	}
	return row.toEntity(), nil
}

func (r *ReservationRepository) Update(ctx context.Context, tx transaction.Tx, res *reservation.Reservation) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return errNoTx
	}
	query := `
		UPDATE reservations
		SET start_at = $1, end_at = $2, status = $3, notified = $4, updated_at = $5
		WHERE id = $6`
	result, err := sqlxTx.ExecContext(ctx, query, res.StartAt, res.EndAt, string(res.Status), res.Notified, res.UpdatedAt, res.ID)
	if err != nil {
		if mapped := mapPQError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("予約更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return reservation.ErrReservationNotFound
	}
	return nil
}

func (r *ReservationRepository) HasOverlap(ctx context.Context, tx transaction.Tx, tableID string, start, end time.Time, excludeID string) (bool, error) {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return false, errNoTx
	}
	query := `
		SELECT EXISTS (
			SELECT 1 FROM reservations
			WHERE table_id = $1
			  AND status IN ('pending', 'confirmed')
			  AND start_at < $3 AND end_at > $2
			  AND ($4::uuid IS NULL OR id <> $4::uuid)
		)`
	var exists bool
	if err := sqlxTx.GetContext(ctx, &exists, query, tableID, start, end, nullableID(excludeID)); err != nil {
		return false, fmt.Errorf("重複予約の確認に失敗: %w", mapPQError(err))
	}
	return exists, nil
}

func (r *ReservationRepository) ListActiveOverlapping(ctx context.Context, restaurantID string, start, end time.Time) ([]*reservation.Reservation, error) {
	var rows []reservationRow
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE restaurant_id = $1
		  AND status IN ('pending', 'confirmed')
		  AND start_at < $3 AND end_at > $2`
	if err := r.db.SelectContext(ctx, &rows, query, restaurantID, start, end); err != nil {
		if isInvalidID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("重複予約一覧の取得に失敗: %w", err)
	}
	return reservationRowsToEntities(rows), nil
}

// ListByDate は件数とページを REPEATABLE READ の読み取り専用トランザクションで取得する
func (r *ReservationRepository) ListByDate(ctx context.Context, restaurantID string, day time.Time, limit, offset int) ([]*reservation.Reservation, int, error) {
	from := interval.DayStart(day)
	to := from.Add(24 * time.Hour)

	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, 0, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var total int
	countQuery := `SELECT COUNT(*) FROM reservations WHERE restaurant_id = $1 AND start_at >= $2 AND start_at < $3`
	if err := tx.GetContext(ctx, &total, countQuery, restaurantID, from, to); err != nil {
		if isInvalidID(err) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("予約件数の取得に失敗: %w", err)
	}

	var rows []reservationRow
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE restaurant_id = $1 AND start_at >= $2 AND start_at < $3
		ORDER BY start_at ASC, id ASC
		LIMIT $4 OFFSET $5`
	if err := tx.SelectContext(ctx, &rows, query, restaurantID, from, to, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("予約一覧の取得に失敗: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("コミットに失敗: %w", err)
	}
	return reservationRowsToEntities(rows), total, nil
}

var _ reservation.Repository = (*ReservationRepository)(nil)
