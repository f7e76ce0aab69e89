package server

import (
	"gravex-pools/internal/domain"
	"gravex-pools/internal/poolquery"
)

// Frame is one result pushed to a stream client.
type Frame struct {
	Key          string                 `json:"key"`
	Phase        string                 `json:"phase"`
	Size         int                    `json:"size"`
	Count        int                    `json:"count"`
	IsLoadEnded  bool                   `json:"isLoadEnded"`
	IsValidating bool                   `json:"isValidating"`
	IsLoading    bool                   `json:"isLoading"`
	Error        string                 `json:"error,omitempty"`
	UpdatedAt    int64                  `json:"updatedAt,omitempty"` // ms
	Data         []domain.FormattedPool `json:"data"`
	SelectedPool *domain.FormattedPool  `json:"selectedPool,omitempty"`
}

// NewFrame converts a query result for the wire.
func NewFrame(res poolquery.Result) Frame {
	f := Frame{
		Key:          res.Key,
		Phase:        res.Phase.String(),
		Size:         res.Size,
		Count:        len(res.FormattedData),
		IsLoadEnded:  res.IsLoadEnded,
		IsValidating: res.IsValidating,
		IsLoading:    res.IsLoading,
		Data:         res.FormattedData,
		SelectedPool: res.FormattedSelectedPool,
	}
	if f.Data == nil {
		f.Data = []domain.FormattedPool{}
	}
	if res.Error != nil {
		f.Error = res.Error.Error()
	}
	if !res.UpdatedAt.IsZero() {
		f.UpdatedAt = res.UpdatedAt.UnixMilli()
	}
	return f
}

// Client operations.
const (
	OpLoadMore = "loadMore"
	OpFocus    = "focus"
	OpRefresh  = "refresh"
)

// ClientMessage is a frame sent by a stream client.
type ClientMessage struct {
	Op string `json:"op"`
}
