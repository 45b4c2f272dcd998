package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-restaurant-table-reservation/internal/application"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/pkg/interval"
)

// bindAndValidate はリクエストをバインドして検証する
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "リクエストの形式が不正です")
	}
	return c.Validate(req)
}

// parseStartTime は RFC3339 の時刻をUTCで返す
func parseStartTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, echo.NewHTTPError(http.StatusBadRequest, "開始時刻の形式が不正です")
	}
	return t.UTC(), nil
}

// parseClockPtr は任意指定の "HH:MM" を解釈する
func parseClockPtr(s string) (*interval.ClockTime, error) {
	if s == "" {
		return nil, nil
	}
	c, err := interval.ParseClockTime(s)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func formatClockPtr(c *interval.ClockTime) *string {
	if c == nil {
		return nil
	}
	s := c.String()
	return &s
}

// PageResponse はページングされた一覧のレスポンス
type PageResponse[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

func toPageResponse[S, T any](p *application.Page[S], convert func(S) T) PageResponse[T] {
	data := make([]T, len(p.Data))
	for i, item := range p.Data {
		data[i] = convert(item)
	}
	return PageResponse[T]{
		Data:       data,
		Total:      p.Total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: p.TotalPages,
	}
}

// ListQuery は日付指定の一覧取得クエリ
type ListQuery struct {
	Date     string `query:"date" validate:"required,date"`
	Page     int    `query:"page" validate:"omitempty,gte=1,lte=1000000"`
	PageSize int    `query:"page_size" validate:"omitempty,gte=1,lte=100"`
}
