package application

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxPage を超えるページ番号は丸める。OFFSET の桁あふれを防ぐ
	MaxPage = 1_000_000
)

// Page はページングされた一覧の結果
type Page[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

// normalizePage はページ番号とサイズに既定値と上限を適用する
func normalizePage(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

func newPage[T any](data []T, total, page, pageSize int) *Page[T] {
	if data == nil {
		data = []T{}
	}
	return &Page[T]{
		Data:       data,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}
}

func offsetOf(page, pageSize int) int {
	return (page - 1) * pageSize
}
