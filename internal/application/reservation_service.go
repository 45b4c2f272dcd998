package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/restaurant"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/table"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/transaction"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/waitlist"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/infrastructure/cache"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/pkg/interval"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/pkg/logger"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/pkg/metrics"
)

// TableLocker はテーブル単位の補助ロック。取得できなくてもDBの行ロックで整合性は保たれる
type TableLocker interface {
	LockTable(ctx context.Context, tableID string) (unlock func(context.Context) error, err error)
}

// ReservationServiceDeps は ReservationService の依存
type ReservationServiceDeps struct {
	TxManager       transaction.Manager
	RestaurantRepo  restaurant.Repository
	TableRepo       table.Repository
	ReservationRepo reservation.Repository
	Availability    *AvailabilityService
	Waitlist        *WaitlistService
	Cache           *cache.Coordinator
	Notifier        Notifier
	// Locker は省略可能
	Locker  TableLocker
	Metrics *metrics.Metrics
}

// ReservationService は予約の受付と状態遷移を扱う
type ReservationService struct {
	txManager       transaction.Manager
	restaurantRepo  restaurant.Repository
	tableRepo       table.Repository
	reservationRepo reservation.Repository
	availability    *AvailabilityService
	waitlist        *WaitlistService
	cache           *cache.Coordinator
	notifier        Notifier
	locker          TableLocker
	metrics         *metrics.Metrics
}

// NewReservationService は新しいReservationServiceを作成する
func NewReservationService(d ReservationServiceDeps) *ReservationService {
	return &ReservationService{
		txManager:       d.TxManager,
		restaurantRepo:  d.RestaurantRepo,
		tableRepo:       d.TableRepo,
		reservationRepo: d.ReservationRepo,
		availability:    d.Availability,
		waitlist:        d.Waitlist,
		cache:           d.Cache,
		notifier:        d.Notifier,
		locker:          d.Locker,
		metrics:         d.Metrics,
	}
}

// CreateReservationInput は予約作成の入力。TableID が空なら自動でテーブルを割り当てる
type CreateReservationInput struct {
	RestaurantID    string
	CustomerName    string
	Phone           string
	PartySize       int
	StartAt         time.Time
	DurationMinutes int
	TableID         string
}

// BookingResult は予約作成の結果。空きがなければウェイティングリストに回される
type BookingResult struct {
	Reservation   *reservation.Reservation `json:"reservation,omitempty"`
	WaitlistEntry *waitlist.Entry          `json:"waitlist_entry,omitempty"`
	OnWaitlist    bool                     `json:"on_waitlist"`
}

// CreateReservation は予約を作成する
func (s *ReservationService) CreateReservation(ctx context.Context, input CreateReservationInput) (*BookingResult, error) {
	rest, err := s.restaurantRepo.GetByID(ctx, input.RestaurantID)
	if err != nil {
		return nil, err
	}
	if input.PartySize <= 0 {
		return nil, reservation.ErrInvalidPartySize
	}
	if !reservation.ValidDuration(input.DurationMinutes) {
		return nil, reservation.ErrInvalidWindow
	}

	// 営業時間は申込どおりの終了時刻で判定し、その後ピーク上限を適用する
	start := input.StartAt.UTC()
	if !rest.WithinOperatingHours(start, interval.EndAt(start, input.DurationMinutes)) {
		s.metrics.RecordReservation("rejected")
		return nil, restaurant.ErrOutsideOperatingHours
	}
	duration := rest.EffectiveDuration(start, input.DurationMinutes)
	end := interval.EndAt(start, duration)

	var tbl *table.Table
	if input.TableID != "" {
		tbl, err = s.resolveTable(ctx, input.RestaurantID, input.TableID, input.PartySize)
		if err != nil {
			s.metrics.RecordReservation("rejected")
			return nil, err
		}
	} else {
		candidates, err := s.availability.FindAvailableTables(ctx, input.RestaurantID, start, end, input.PartySize)
		if err != nil {
			return nil, err
		}
		if len(candidates) == 0 {
			return s.redirectToWaitlist(ctx, rest, input, start)
		}
		tbl = candidates[0]
	}

	res := reservation.NewReservation(input.RestaurantID, tbl.ID, input.CustomerName, input.Phone, input.PartySize, start, end)
	if err := res.Validate(); err != nil {
		return nil, err
	}

	err = s.withTableLock(ctx, tbl.ID, func(tx transaction.Tx) error {
		overlap, err := s.reservationRepo.HasOverlap(ctx, tx, tbl.ID, start, end, "")
		if err != nil {
			return err
		}
		if overlap {
			return reservation.ErrTableUnavailable
		}
		return s.reservationRepo.Create(ctx, tx, res)
	})
	if err != nil {
		if errors.Is(err, reservation.ErrTableUnavailable) {
			s.metrics.RecordReservation("conflict")
		} else {
			s.metrics.RecordReservation("error")
		}
		return nil, err
	}

	s.metrics.RecordReservation("created")
	logger.FromContext(ctx).Info("予約を作成",
		logger.ReservationID(res.ID),
		logger.RestaurantID(res.RestaurantID),
		logger.TableID(res.TableID),
		zap.Int("duration_minutes", duration),
	)
	s.notifier.NotifyConfirmation(ctx, res, rest.Name)
	s.cache.Invalidate(ctx, input.RestaurantID, cache.AllKinds...)
	return &BookingResult{Reservation: res}, nil
}

// resolveTable は指定テーブルの所属と定員を確認する
func (s *ReservationService) resolveTable(ctx context.Context, restaurantID, tableID string, partySize int) (*table.Table, error) {
	tbl, err := s.tableRepo.GetByID(ctx, tableID)
	if err != nil {
		return nil, err
	}
	if !tbl.BelongsTo(restaurantID) {
		return nil, table.ErrTableNotInRestaurant
	}
	if !tbl.Fits(partySize) {
		return nil, table.ErrCapacityExceeded
	}
	return tbl, nil
}

func (s *ReservationService) redirectToWaitlist(ctx context.Context, rest *restaurant.Restaurant, input CreateReservationInput, start time.Time) (*BookingResult, error) {
	entry, err := s.waitlist.add(ctx, rest, AddToWaitlistInput{
		RestaurantID:  rest.ID,
		CustomerName:  input.CustomerName,
		Phone:         input.Phone,
		PartySize:     input.PartySize,
		PreferredDate: start,
	})
	if err != nil {
		return nil, fmt.Errorf("ウェイティングリスト登録に失敗: %w", err)
	}
	s.metrics.RecordReservation("waitlisted")
	return &BookingResult{WaitlistEntry: entry, OnWaitlist: true}, nil
}

// withTableLock は補助ロックを取った上でトランザクション内でテーブル行をロックし fn を実行する
func (s *ReservationService) withTableLock(ctx context.Context, tableID string, fn func(tx transaction.Tx) error) error {
	if s.locker != nil {
		unlock, err := s.locker.LockTable(ctx, tableID)
		if err != nil {
			logger.FromContext(ctx).Warn("テーブルロックを取得できませんでした。DBロックのみで続行します",
				logger.TableID(tableID), zap.Error(err))
		} else {
			defer func() {
				if err := unlock(context.WithoutCancel(ctx)); err != nil {
					logger.FromContext(ctx).Warn("テーブルロックの解放に失敗", logger.TableID(tableID), zap.Error(err))
				}
			}()
		}
	}

	return transaction.Run(ctx, s.txManager, func(tx transaction.Tx) error {
		if err := s.tableRepo.LockForUpdate(ctx, tx, tableID); err != nil {
			return err
		}
		return fn(tx)
	})
}

// GetReservation は予約を取得する。他レストランの予約は存在しないものとして扱う
func (s *ReservationService) GetReservation(ctx context.Context, id, restaurantID string) (*reservation.Reservation, error) {
	res, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !res.BelongsTo(restaurantID) {
		return nil, reservation.ErrReservationNotFound
	}
	return res, nil
}

// ConfirmReservation は保留中の予約を確定する。確定通知は未送信の場合のみ送る
func (s *ReservationService) ConfirmReservation(ctx context.Context, id, restaurantID string) (*reservation.Reservation, error) {
	rest, err := s.restaurantRepo.GetByID(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	var res *reservation.Reservation
	var notify bool
	err = transaction.Run(ctx, s.txManager, func(tx transaction.Tx) error {
		r, err := s.lockOwned(ctx, tx, id, restaurantID)
		if err != nil {
			return err
		}
		if err := r.Confirm(); err != nil {
			return err
		}
		notify = r.MarkNotified()
		if err := s.reservationRepo.Update(ctx, tx, r); err != nil {
			return err
		}
		res = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordTransition("confirmed")
	if notify {
		s.notifier.NotifyConfirmation(ctx, res, rest.Name)
	}
	s.cache.Invalidate(ctx, restaurantID, cache.KindReservations)
	return res, nil
}

// CancelReservation は予約をキャンセルする。確定済みの予約もキャンセルできる
func (s *ReservationService) CancelReservation(ctx context.Context, id, restaurantID string) (*reservation.Reservation, error) {
	rest, err := s.restaurantRepo.GetByID(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	var res *reservation.Reservation
	err = transaction.Run(ctx, s.txManager, func(tx transaction.Tx) error {
		r, err := s.lockOwned(ctx, tx, id, restaurantID)
		if err != nil {
			return err
		}
		if err := r.Cancel(); err != nil {
			return err
		}
		if err := s.reservationRepo.Update(ctx, tx, r); err != nil {
			return err
		}
		res = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordTransition("cancelled")
	s.notifier.NotifyCancellation(ctx, res, rest.Name)
	s.cache.Invalidate(ctx, restaurantID, cache.AllKinds...)
	return res, nil
}

// ModifyReservationInput は予約変更の入力。nil の項目は現在の値を引き継ぐ
type ModifyReservationInput struct {
	ID              string
	RestaurantID    string
	StartAt         *time.Time
	DurationMinutes *int
}

// ModifyReservation は保留中の予約の時間枠を同じテーブルのまま変更する
func (s *ReservationService) ModifyReservation(ctx context.Context, input ModifyReservationInput) (*reservation.Reservation, error) {
	rest, err := s.restaurantRepo.GetByID(ctx, input.RestaurantID)
	if err != nil {
		return nil, err
	}
	current, err := s.GetReservation(ctx, input.ID, input.RestaurantID)
	if err != nil {
		return nil, err
	}
	if !current.IsPending() {
		return nil, reservation.ErrReservationNotPending
	}

	start := current.StartAt
	if input.StartAt != nil {
		start = input.StartAt.UTC()
	}
	duration := current.DurationMinutes()
	if input.DurationMinutes != nil {
		if !reservation.ValidDuration(*input.DurationMinutes) {
			return nil, reservation.ErrInvalidWindow
		}
		duration = *input.DurationMinutes
	}
	if !rest.WithinOperatingHours(start, interval.EndAt(start, duration)) {
		return nil, restaurant.ErrOutsideOperatingHours
	}
	end := interval.EndAt(start, rest.EffectiveDuration(start, duration))

	var res *reservation.Reservation
	err = s.withTableLock(ctx, current.TableID, func(tx transaction.Tx) error {
		r, err := s.lockOwned(ctx, tx, input.ID, input.RestaurantID)
		if err != nil {
			return err
		}
		if !r.IsPending() {
			return reservation.ErrReservationNotPending
		}
		overlap, err := s.reservationRepo.HasOverlap(ctx, tx, r.TableID, start, end, r.ID)
		if err != nil {
			return err
		}
		if overlap {
			return reservation.ErrTableUnavailable
		}
		if err := r.Reschedule(start, end); err != nil {
			return err
		}
		if err := s.reservationRepo.Update(ctx, tx, r); err != nil {
			return err
		}
		res = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordTransition("modified")
	s.cache.Invalidate(ctx, input.RestaurantID, cache.AllKinds...)
	return res, nil
}

// lockOwned は予約を行ロック付きで取得し、レストランの所有を確認する
func (s *ReservationService) lockOwned(ctx context.Context, tx transaction.Tx, id, restaurantID string) (*reservation.Reservation, error) {
	r, err := s.reservationRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if !r.BelongsTo(restaurantID) {
		return nil, reservation.ErrReservationNotFound
	}
	return r, nil
}

// ListReservationsForDate は開始時刻がUTCの指定日に入る予約を開始時刻順にページングして返す
func (s *ReservationService) ListReservationsForDate(ctx context.Context, restaurantID string, date time.Time, page, pageSize int) (*Page[*reservation.Reservation], error) {
	page, pageSize = normalizePage(page, pageSize)
	key := cache.ReservationsKey(restaurantID, date, page, pageSize)
	return cache.GetOrLoad(ctx, s.cache, cache.KindReservations, key, func(ctx context.Context) (*Page[*reservation.Reservation], error) {
		if _, err := s.restaurantRepo.GetByID(ctx, restaurantID); err != nil {
			return nil, err
		}
		items, total, err := s.reservationRepo.ListByDate(ctx, restaurantID, date, pageSize, offsetOf(page, pageSize))
		if err != nil {
			return nil, err
		}
		return newPage(items, total, page, pageSize), nil
	})
}
