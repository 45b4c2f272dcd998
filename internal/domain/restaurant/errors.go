package restaurant

import "errors"

// Restaurant ドメインのエラー定義
var (
	ErrRestaurantNotFound    = errors.New("レストランが見つかりません")
	ErrNameRequired          = errors.New("レストラン名は必須です")
	ErrInvalidTotalTables    = errors.New("テーブル総数は0以上である必要があります")
	ErrInvalidOperatingHours = errors.New("開店時刻は閉店時刻より前である必要があります")
	ErrInvalidPeakWindow     = errors.New("ピーク時間帯は営業時間内で開始と終了を両方指定してください")
	ErrInvalidPeakDuration   = errors.New("ピーク時の滞在上限は1分以上である必要があります")
	ErrOutsideOperatingHours = errors.New("予約時間が営業時間外です")
)
