package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/restaurant"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/waitlist"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/pkg/logger"
)

// WaitlistService はウェイティングリストを管理する。空きが出ても自動で予約には昇格しない
type WaitlistService struct {
	waitlistRepo   waitlist.Repository
	restaurantRepo restaurant.Repository
	notifier       Notifier
}

// NewWaitlistService は新しいWaitlistServiceを作成する
func NewWaitlistService(wr waitlist.Repository, rr restaurant.Repository, n Notifier) *WaitlistService {
	return &WaitlistService{waitlistRepo: wr, restaurantRepo: rr, notifier: n}
}

// AddToWaitlistInput はウェイティングリスト登録の入力
type AddToWaitlistInput struct {
	RestaurantID  string
	CustomerName  string
	Phone         string
	PartySize     int
	PreferredDate time.Time
}

// AddToWaitlist はエントリを登録し、登録通知を送る
func (s *WaitlistService) AddToWaitlist(ctx context.Context, input AddToWaitlistInput) (*waitlist.Entry, error) {
	rest, err := s.restaurantRepo.GetByID(ctx, input.RestaurantID)
	if err != nil {
		return nil, err
	}
	return s.add(ctx, rest, input)
}

func (s *WaitlistService) add(ctx context.Context, rest *restaurant.Restaurant, input AddToWaitlistInput) (*waitlist.Entry, error) {
	entry := waitlist.NewEntry(rest.ID, input.CustomerName, input.Phone, input.PartySize, input.PreferredDate)
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	if err := s.waitlistRepo.Create(ctx, entry); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("ウェイティングリストに登録",
		logger.RestaurantID(rest.ID),
		logger.WaitlistID(entry.ID),
		zap.String("preferred_date", entry.PreferredDateString()),
	)
	s.notifier.NotifyWaitlisted(ctx, entry, rest.Name)
	return entry, nil
}

// ListWaitlist は希望日のエントリを登録順にページングして返す
func (s *WaitlistService) ListWaitlist(ctx context.Context, restaurantID string, date time.Time, page, pageSize int) (*Page[*waitlist.Entry], error) {
	page, pageSize = normalizePage(page, pageSize)
	entries, total, err := s.waitlistRepo.ListByDate(ctx, restaurantID, date, pageSize, offsetOf(page, pageSize))
	if err != nil {
		return nil, err
	}
	return newPage(entries, total, page, pageSize), nil
}

// RemoveFromWaitlist はエントリを削除する。他レストランのエントリは存在しないものとして扱う
func (s *WaitlistService) RemoveFromWaitlist(ctx context.Context, id, restaurantID string) error {
	entry, err := s.waitlistRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !entry.BelongsTo(restaurantID) {
		return waitlist.ErrEntryNotFound
	}
	return s.waitlistRepo.Delete(ctx, id)
}
