package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/restaurant"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/pkg/interval"
)

type restaurantRow struct {
	ID                     string    `db:"id"`
	Name                   string    `db:"name"`
	OpenTime               string    `db:"open_time"`
	CloseTime              string    `db:"close_time"`
	TotalTables            int       `db:"total_tables"`
	PeakHourStart          *string   `db:"peak_hour_start"`
	PeakHourEnd            *string   `db:"peak_hour_end"`
	MaxPeakDurationMinutes *int      `db:"max_peak_duration_minutes"`
	CreatedAt              time.Time `db:"created_at"`
	UpdatedAt              time.Time `db:"updated_at"`
}

func (r *restaurantRow) toEntity() (*restaurant.Restaurant, error) {
	open, err := parseDBClock(r.OpenTime)
	if err != nil {
		return nil, err
	}
	closeAt, err := parseDBClock(r.CloseTime)
	if err != nil {
		return nil, err
	}
	res := &restaurant.Restaurant{
		ID: r.ID, Name: r.Name,
		OpenTime: open, CloseTime: closeAt,
		TotalTables:            r.TotalTables,
		MaxPeakDurationMinutes: r.MaxPeakDurationMinutes,
		CreatedAt:              r.CreatedAt.UTC(), UpdatedAt: r.UpdatedAt.UTC(),
	}
	if r.PeakHourStart != nil && r.PeakHourEnd != nil {
		start, err := parseDBClock(*r.PeakHourStart)
		if err != nil {
			return nil, err
		}
		end, err := parseDBClock(*r.PeakHourEnd)
		if err != nil {
			return nil, err
		}
		res.PeakHourStart, res.PeakHourEnd = &start, &end
	}
	return res, nil
}

// parseDBClock は TIME 列を文字列で受け取る（"HH:MM:SS"）
func parseDBClock(s string) (interval.ClockTime, error) {
	if len(s) < 5 {
		return 0, fmt.Errorf("時刻列の形式が不正: %q", s)
	}
	c, err := interval.ParseClockTime(s[:5])
	if err != nil {
		return 0, fmt.Errorf("時刻列の形式が不正: %q: %w", s, err)
	}
	return c, nil
}

func clockArg(c *interval.ClockTime) *string {
	if c == nil {
		return nil
	}
	s := c.String()
	return &s
}

// RestaurantRepository はレストランのPostgreSQL実装
type RestaurantRepository struct {
	db *sqlx.DB
}

// NewRestaurantRepository は新しいRestaurantRepositoryを作成する
func NewRestaurantRepository(db *sqlx.DB) *RestaurantRepository {
	return &RestaurantRepository{db: db}
}

func (r *RestaurantRepository) Create(ctx context.Context, res *restaurant.Restaurant) error {
	query := `
		INSERT INTO restaurants (name, open_time, close_time, total_tables, peak_hour_start, peak_hour_end, max_peak_duration_minutes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		res.Name, res.OpenTime.String(), res.CloseTime.String(), res.TotalTables,
		clockArg(res.PeakHourStart), clockArg(res.PeakHourEnd), res.MaxPeakDurationMinutes,
		res.CreatedAt, res.UpdatedAt,
	).Scan(&res.ID)
	if err != nil {
		return fmt.Errorf("レストラン作成に失敗: %w", err)
	}
	return nil
}

func (r *RestaurantRepository) GetByID(ctx context.Context, id string) (*restaurant.Restaurant, error) {
	query := `
		SELECT id, name, open_time::text AS open_time, close_time::text AS close_time, total_tables,
		       peak_hour_start::text AS peak_hour_start, peak_hour_end::text AS peak_hour_end,
		       max_peak_duration_minutes, created_at, updated_at
		FROM restaurants WHERE id = $1`
	var row restaurantRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if isNotFound(err) {
			return nil, restaurant.ErrRestaurantNotFound
		}
		return nil, fmt.Errorf("レストラン取得に失敗: %w", err)
	}
	return row.toEntity()
}

var _ restaurant.Repository = (*RestaurantRepository)(nil)
