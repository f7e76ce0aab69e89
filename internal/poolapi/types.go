package poolapi

import "gravex-pools/internal/domain"

// Response is the pool API envelope.
type Response struct {
	ID      string   `json:"id"`
	Success bool     `json:"success"`
	Msg     string   `json:"msg,omitempty"`
	Data    PageData `json:"data"`
}

// PageData is one page of pool records.
type PageData struct {
	Count       int                 `json:"count"`
	Data        []domain.PoolRecord `json:"data"`
	HasNextPage bool                `json:"hasNextPage"`
}
