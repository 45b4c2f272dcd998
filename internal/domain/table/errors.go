package table

import "errors"

// Table ドメインのエラー定義
var (
	ErrTableNotFound        = errors.New("テーブルが見つかりません")
	ErrTableNotInRestaurant = errors.New("テーブルは指定レストランに属していません")
	ErrCapacityExceeded     = errors.New("人数がテーブルの定員を超えています")
	ErrDuplicateTableNumber = errors.New("同じテーブル番号が既に存在します")
	ErrRestaurantIDRequired = errors.New("レストランIDは必須です")
	ErrTableNumberRequired  = errors.New("テーブル番号は必須です")
	ErrInvalidCapacity      = errors.New("定員は1以上である必要があります")
)
