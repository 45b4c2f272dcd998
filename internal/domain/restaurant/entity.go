package restaurant

import (
	"time"

	"github.com/sanosuguru/go-restaurant-table-reservation/internal/pkg/interval"
)

// Restaurant はレストランエンティティを表す
type Restaurant struct {
	ID                     string
	Name                   string
	OpenTime               interval.ClockTime
	CloseTime              interval.ClockTime
	TotalTables            int
	PeakHourStart          *interval.ClockTime
	PeakHourEnd            *interval.ClockTime
	MaxPeakDurationMinutes *int
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// PeakPolicy はピーク時間帯の滞在上限設定
type PeakPolicy struct {
	Start              interval.ClockTime
	End                interval.ClockTime
	MaxDurationMinutes *int
}

// NewRestaurant は新しいレストランを作成する
func NewRestaurant(name string, open, close interval.ClockTime, totalTables int, peak *PeakPolicy) *Restaurant {
	now := time.Now()
	r := &Restaurant{
		Name:        name,
		OpenTime:    open,
		CloseTime:   close,
		TotalTables: totalTables,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if peak != nil {
		start, end := peak.Start, peak.End
		r.PeakHourStart = &start
		r.PeakHourEnd = &end
		r.MaxPeakDurationMinutes = peak.MaxDurationMinutes
	}
	return r
}

// Validate はレストランの検証を行う
func (r *Restaurant) Validate() error {
	if r.Name == "" {
		return ErrNameRequired
	}
	if r.TotalTables < 0 {
		return ErrInvalidTotalTables
	}
	if !r.OpenTime.Valid() || !r.CloseTime.Valid() || r.OpenTime >= r.CloseTime {
		return ErrInvalidOperatingHours
	}
	if (r.PeakHourStart == nil) != (r.PeakHourEnd == nil) {
		return ErrInvalidPeakWindow
	}
	if r.PeakHourStart != nil {
		if *r.PeakHourStart >= *r.PeakHourEnd || *r.PeakHourStart < r.OpenTime || *r.PeakHourEnd > r.CloseTime {
			return ErrInvalidPeakWindow
		}
	}
	if r.MaxPeakDurationMinutes != nil && *r.MaxPeakDurationMinutes <= 0 {
		return ErrInvalidPeakDuration
	}
	return nil
}

// WithinOperatingHours は [start, end) が開始日の営業時間内かを返す
func (r *Restaurant) WithinOperatingHours(start, end time.Time) bool {
	return interval.WithinOperatingHours(start, end, r.OpenTime, r.CloseTime)
}

// IsPeak は開始時刻がピーク時間帯 [start, end) に入るかを返す
func (r *Restaurant) IsPeak(start time.Time) bool {
	if r.PeakHourStart == nil || r.PeakHourEnd == nil {
		return false
	}
	m := interval.MinuteOfDay(start)
	return m >= *r.PeakHourStart && m < *r.PeakHourEnd
}

// EffectiveDuration はピーク上限を適用した滞在分数を返す
func (r *Restaurant) EffectiveDuration(start time.Time, requestedMinutes int) int {
	if r.MaxPeakDurationMinutes == nil || !r.IsPeak(start) {
		return requestedMinutes
	}
	if requestedMinutes > *r.MaxPeakDurationMinutes {
		return *r.MaxPeakDurationMinutes
	}
	return requestedMinutes
}
