package domain

// PoolSnapshot is one observation of a pool taken from a refreshed query.
// Corresponds to pool_snapshots table in PostgreSQL and ClickHouse.
type PoolSnapshot struct {
	QueryHash  string  // idhash.QueryHash of the query key
	PoolID     string  // pool address
	MintA      string  // pool mint A
	MintB      string  // pool mint B
	TVL        float64 // total value locked (USD)
	Price      float64 // mint A price in mint B
	Volume24h  float64 // 24h volume (USD)
	Apr24h     float64 // total APR, 24h window (%)
	Apr7d      float64 // total APR, 7d window (%)
	Apr30d     float64 // total APR, 30d window (%)
	CapturedAt int64   // capture timestamp (ms)
}

// TrackedQuery records a pool query whose results are being snapshotted.
// Corresponds to tracked_queries table in PostgreSQL.
type TrackedQuery struct {
	QueryHash string // idhash.QueryHash of Key
	Key       string // cache key (endpoint plus canonical params)
	BaseMint  string // canonical base mint
	QuoteMint string // canonical quote mint, may be empty
	PoolType  string // wire pool type, e.g. "allFarm"
	SortField string
	SortOrder string
	PageSize  int
	CreatedAt int64 // first seen (ms)
}
