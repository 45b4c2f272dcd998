package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/restaurant"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/table"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/waitlist"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/pkg/interval"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/pkg/logger"
)

// ErrorResponse はエラーレスポンスの統一フォーマット
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// statusTable はドメインエラーとHTTPステータスの対応
var statusTable = []struct {
	status int
	errs   []error
}{
	{http.StatusNotFound, []error{
		restaurant.ErrRestaurantNotFound,
		table.ErrTableNotFound,
		reservation.ErrReservationNotFound,
		waitlist.ErrEntryNotFound,
	}},
	{http.StatusConflict, []error{
		reservation.ErrTableUnavailable,
		table.ErrDuplicateTableNumber,
	}},
	{http.StatusBadRequest, []error{
		restaurant.ErrOutsideOperatingHours,
		reservation.ErrInvalidWindow,
		table.ErrTableNotInRestaurant,
		table.ErrCapacityExceeded,
		reservation.ErrReservationNotPending,
		reservation.ErrReservationAlreadyCancelled,
		restaurant.ErrNameRequired,
		restaurant.ErrInvalidTotalTables,
		restaurant.ErrInvalidOperatingHours,
		restaurant.ErrInvalidPeakWindow,
		restaurant.ErrInvalidPeakDuration,
		table.ErrRestaurantIDRequired,
		table.ErrTableNumberRequired,
		table.ErrInvalidCapacity,
		reservation.ErrRestaurantIDRequired,
		reservation.ErrTableIDRequired,
		reservation.ErrCustomerNameRequired,
		reservation.ErrPhoneRequired,
		reservation.ErrInvalidPartySize,
		waitlist.ErrRestaurantIDRequired,
		waitlist.ErrCustomerNameRequired,
		waitlist.ErrPhoneRequired,
		waitlist.ErrInvalidPartySize,
		interval.ErrInvalidClockTime,
		interval.ErrInvalidDate,
	}},
}

// StatusFor はエラーに対応するHTTPステータスを返す。未知のエラーは500
func StatusFor(err error) int {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	for _, entry := range statusTable {
		for _, target := range entry.errs {
			if errors.Is(err, target) {
				return entry.status
			}
		}
	}
	return http.StatusInternalServerError
}

// CustomHTTPErrorHandler はカスタムエラーハンドラー
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := StatusFor(err)
	message := "内部サーバーエラー"

	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		if m, ok := he.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(code)
		}
	case code < http.StatusInternalServerError:
		message = err.Error()
	}

	// エラーログを出力（5xx エラーの場合）
	if code >= http.StatusInternalServerError {
		logger.Error("サーバーエラー",
			zap.Int("status", code),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err),
		)
		message = "内部サーバーエラー"
	}

	var respErr error
	if c.Request().Method == http.MethodHead {
		respErr = c.NoContent(code)
	} else {
		respErr = c.JSON(code, ErrorResponse{Error: message, Code: code})
	}
	if respErr != nil {
		logger.Error("エラーレスポンス送信失敗", zap.Error(respErr))
	}
}
