package domain

// Page is one fetched batch of catalog results plus pagination metadata.
type Page[T any] struct {
	Items        []T `json:"items"`
	PageNumber   int `json:"page"`
	TotalPages   int `json:"totalPages"`
	TotalResults int `json:"totalResults"`
}

// HasMore reports whether a later page exists.
func (p Page[T]) HasMore() bool {
	return p.PageNumber < p.TotalPages
}
