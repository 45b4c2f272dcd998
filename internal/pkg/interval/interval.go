// Package interval は予約枠の時刻計算を扱う。
// 日付の境界はすべてUTCで判定する。
package interval

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

const (
	// DateLayout は日付のみの表現
	DateLayout = "2006-01-02"
	// ISOLayout はミリ秒精度のUTC時刻表現（キャッシュキーに使用）
	ISOLayout = "2006-01-02T15:04:05.000Z"

	minutesPerDay = 24 * 60
)

var (
	ErrInvalidClockTime = errors.New("時刻はHH:MM形式で指定してください")
	ErrInvalidDate      = errors.New("日付はYYYY-MM-DD形式で指定してください")
)

// ClockTime は0時からの経過分で表す日内時刻
type ClockTime int

// Clock は時と分からClockTimeを作成する
func Clock(hour, minute int) ClockTime {
	return ClockTime(hour*60 + minute)
}

// ParseClockTime は "HH:MM" をClockTimeに変換する。"24:00" は閉店時刻として許可する
func ParseClockTime(s string) (ClockTime, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, ErrInvalidClockTime
	}
	h, err := strconv.Atoi(s[:2])
	if err != nil {
		return 0, ErrInvalidClockTime
	}
	m, err := strconv.Atoi(s[3:])
	if err != nil {
		return 0, ErrInvalidClockTime
	}
	if h < 0 || m < 0 || m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, ErrInvalidClockTime
	}
	return Clock(h, m), nil
}

// String は "HH:MM" 形式で返す
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// Valid は日内の時刻として妥当かを返す
func (c ClockTime) Valid() bool {
	return c >= 0 && c <= minutesPerDay
}

// On は指定日（UTC）におけるこの時刻の瞬間を返す
func (c ClockTime) On(day time.Time) time.Time {
	return DayStart(day).Add(time.Duration(c) * time.Minute)
}

// MarshalText はJSONでも "HH:MM" として扱うための実装
func (c ClockTime) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText は "HH:MM" を読み込む
func (c *ClockTime) UnmarshalText(b []byte) error {
	v, err := ParseClockTime(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// MinuteOfDay はUTCでの日内経過分を返す
func MinuteOfDay(t time.Time) ClockTime {
	u := t.UTC()
	return Clock(u.Hour(), u.Minute())
}

// DayStart はUTCでのその日の0時を返す
func DayStart(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// EndAt は開始時刻と分数から終了時刻を返す
func EndAt(start time.Time, minutes int) time.Time {
	return start.Add(time.Duration(minutes) * time.Minute)
}

// Minutes は期間を整数分に丸める
func Minutes(d time.Duration) int {
	return int(d.Round(time.Minute) / time.Minute)
}

// Overlaps は半開区間 [aStart, aEnd) と [bStart, bEnd) が重なるかを返す
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// WithinOperatingHours は [start, end) が開始日の営業時間内に収まるかを返す。
// 空の区間や逆転した区間は収まらないものとする
func WithinOperatingHours(start, end time.Time, open, close ClockTime) bool {
	if !start.Before(end) {
		return false
	}
	day := DayStart(start)
	return !start.Before(open.On(day)) && !end.After(close.On(day))
}

// ParseDate は "YYYY-MM-DD" をUTCの0時として解釈する
func ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

// FormatDate はUTCの日付を "YYYY-MM-DD" で返す
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// FormatISO はUTCのミリ秒精度で返す
func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}
