package reservation

import "errors"

// Reservation ドメインのエラー定義
var (
	ErrReservationNotFound         = errors.New("予約が見つかりません")
	ErrReservationNotPending       = errors.New("予約は保留中ではありません")
	ErrReservationAlreadyCancelled = errors.New("予約は既にキャンセルされています")
	ErrTableUnavailable            = errors.New("指定時間にテーブルは利用できません")
	ErrInvalidWindow               = errors.New("予約の開始時刻は終了時刻より前である必要があります")
	ErrRestaurantIDRequired        = errors.New("レストランIDは必須です")
	ErrTableIDRequired             = errors.New("テーブルIDは必須です")
	ErrCustomerNameRequired        = errors.New("顧客名は必須です")
	ErrPhoneRequired               = errors.New("電話番号は必須です")
	ErrInvalidPartySize            = errors.New("人数は1以上である必要があります")
)
