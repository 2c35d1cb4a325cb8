package payload

// Sort order constants.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

type (
	// ListReqQuery is the shared pagination query. Additional filters are
	// defined inline on each handler's request struct; embedding breaks gin
	// binding validation.
	ListReqQuery struct {
		PageIndex *int `form:"page_index" binding:"required"`
		PageSize  *int `form:"page_size" binding:"required"`
	}
	ListResp[T any] struct {
		Rows  []T   `json:"rows"`
		Count int64 `json:"count"`
	}
)
