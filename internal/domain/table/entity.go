package table

import "time"

// Table はテーブルエンティティを表す
type Table struct {
	ID           string    `json:"id"`
	RestaurantID string    `json:"restaurant_id"`
	TableNumber  string    `json:"table_number"`
	Capacity     int       `json:"capacity"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewTable は新しいテーブルを作成する
func NewTable(restaurantID, tableNumber string, capacity int) *Table {
	return &Table{
		RestaurantID: restaurantID,
		TableNumber:  tableNumber,
		Capacity:     capacity,
		CreatedAt:    time.Now(),
	}
}

// Validate はテーブルの検証を行う
func (t *Table) Validate() error {
	if t.RestaurantID == "" {
		return ErrRestaurantIDRequired
	}
	if t.TableNumber == "" {
		return ErrTableNumberRequired
	}
	if t.Capacity <= 0 {
		return ErrInvalidCapacity
	}
	return nil
}

// Fits は人数がテーブル定員以内かを返す
func (t *Table) Fits(partySize int) bool {
	return partySize <= t.Capacity
}

// BelongsTo は指定レストランのテーブルかを返す
func (t *Table) BelongsTo(restaurantID string) bool {
	return t.RestaurantID == restaurantID
}
