package waitlist

import "errors"

// Waitlist ドメインのエラー定義
var (
	ErrEntryNotFound        = errors.New("ウェイティングリストのエントリが見つかりません")
	ErrRestaurantIDRequired = errors.New("レストランIDは必須です")
	ErrCustomerNameRequired = errors.New("顧客名は必須です")
	ErrPhoneRequired        = errors.New("電話番号は必須です")
	ErrInvalidPartySize     = errors.New("人数は1以上である必要があります")
)
