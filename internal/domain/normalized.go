package domain

// NormalizedPool is a PoolRecord with APR fields recomputed.
// Day/Week/Month inside Record carry the recomputed values.
type NormalizedPool struct {
	Record PoolRecord

	// TotalApr is the sum of fee and reward APR per window.
	TotalApr AprWindows
	// FeeApr is the fee-only APR per window.
	FeeApr AprWindows
	// RewardApr is the summed reward APR per window.
	RewardApr AprWindows
}

// AprWindows holds one percentage per rolling window.
type AprWindows struct {
	Day   float64 `json:"day"`
	Week  float64 `json:"week"`
	Month float64 `json:"month"`
}

// ID returns the pool id.
func (p NormalizedPool) ID() string {
	return p.Record.ID
}
