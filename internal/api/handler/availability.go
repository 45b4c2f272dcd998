package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-restaurant-table-reservation/internal/application"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/pkg/interval"
)

type AvailabilityHandler struct {
	availability AvailabilityServiceInterface
	timeSlots    TimeSlotServiceInterface
}

func NewAvailabilityHandler(availability AvailabilityServiceInterface, timeSlots TimeSlotServiceInterface) *AvailabilityHandler {
	return &AvailabilityHandler{availability: availability, timeSlots: timeSlots}
}

type AvailabilityQuery struct {
	StartTime       string `query:"start_time" validate:"required,datetime=2006-01-02T15:04:05Z07:00" example:"2025-03-14T19:00:00Z"`
	DurationMinutes int    `query:"duration_minutes" validate:"required,gt=0,lte=1440" example:"90"`
	PartySize       int    `query:"party_size" validate:"required,gt=0" example:"4"`
}

type AvailabilityResponse struct {
	StartTime       string          `json:"start_time"`
	DurationMinutes int             `json:"duration_minutes"`
	PartySize       int             `json:"party_size"`
	AvailableTables []TableResponse `json:"available_tables"`
}

// Availability godoc
// @Summary 空きテーブルを照会
// @Tags availability
// @Produce json
// @Param id path string true "レストランID"
// @Param start_time query string true "開始時刻（RFC3339）"
// @Param duration_minutes query int true "滞在分数"
// @Param party_size query int true "人数"
// @Success 200 {object} AvailabilityResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /restaurants/{id}/availability [get]
func (h *AvailabilityHandler) Availability(c echo.Context) error {
	var q AvailabilityQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}
	start, err := parseStartTime(q.StartTime)
	if err != nil {
		return err
	}
	tables, err := h.availability.AvailableTables(c.Request().Context(), application.AvailabilityInput{
		RestaurantID:    c.Param("id"),
		StartAt:         start,
		DurationMinutes: q.DurationMinutes,
		PartySize:       q.PartySize,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, AvailabilityResponse{
		StartTime:       interval.FormatISO(start),
		DurationMinutes: q.DurationMinutes,
		PartySize:       q.PartySize,
		AvailableTables: toTableResponses(tables),
	})
}

type TimeSlotsQuery struct {
	Date            string `query:"date" validate:"required,date" example:"2025-03-14"`
	PartySize       int    `query:"party_size" validate:"required,gt=0" example:"4"`
	DurationMinutes int    `query:"duration_minutes" validate:"required,gt=0,lte=1440" example:"90"`
	IntervalMinutes int    `query:"interval_minutes" validate:"omitempty,gt=0,lte=1440" example:"30"`
}

type TimeSlotsResponse struct {
	Date  string   `json:"date"`
	Slots []string `json:"slots"`
}

// TimeSlots godoc
// @Summary 予約可能な開始時刻を列挙
// @Tags availability
// @Produce json
// @Param id path string true "レストランID"
// @Param date query string true "日付（YYYY-MM-DD）"
// @Param party_size query int true "人数"
// @Param duration_minutes query int true "滞在分数"
// @Param interval_minutes query int false "刻み（分）" default(30)
// @Success 200 {object} TimeSlotsResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /restaurants/{id}/time-slots [get]
func (h *AvailabilityHandler) TimeSlots(c echo.Context) error {
	var q TimeSlotsQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}
	date, err := interval.ParseDate(q.Date)
	if err != nil {
		return err
	}
	slots, err := h.timeSlots.TimeSlots(c.Request().Context(), application.TimeSlotsInput{
		RestaurantID:    c.Param("id"),
		Date:            date,
		PartySize:       q.PartySize,
		DurationMinutes: q.DurationMinutes,
		IntervalMinutes: q.IntervalMinutes,
	})
	if err != nil {
		return err
	}
	resp := TimeSlotsResponse{Date: q.Date, Slots: make([]string, len(slots))}
	for i, s := range slots {
		resp.Slots[i] = interval.FormatISO(s)
	}
	return c.JSON(http.StatusOK, resp)
}
