// Package reporting renders stored pool snapshots for export.
package reporting

import (
	"fmt"
	"strings"

	"gravex-pools/internal/domain"
)

// RenderSnapshotsCSV renders pool snapshots as CSV string.
func RenderSnapshotsCSV(snaps []*domain.PoolSnapshot) string {
	var sb strings.Builder

	// Header
	sb.WriteString("pool_id,query_hash,captured_at,mint_a,mint_b,")
	sb.WriteString("tvl,price,volume_24h,apr_24h,apr_7d,apr_30d\n")

	// Rows
	for _, s := range snaps {
		sb.WriteString(fmt.Sprintf("%s,%s,%d,%s,%s,%.2f,%.8f,%.2f,%.4f,%.4f,%.4f\n",
			s.PoolID,
			s.QueryHash,
			s.CapturedAt,
			s.MintA,
			s.MintB,
			s.TVL,
			s.Price,
			s.Volume24h,
			s.Apr24h,
			s.Apr7d,
			s.Apr30d,
		))
	}

	return sb.String()
}
