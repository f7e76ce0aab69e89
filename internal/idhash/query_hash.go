package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// QueryHash computes a deterministic query_hash for a pool query cache key.
// Formula: SHA256(key)
// Returns hex-encoded hash (64 characters).
func QueryHash(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:])
}

// SnapshotKey computes the natural key of one pool snapshot.
// Formula: SHA256(query_hash|pool_id|captured_at)
func SnapshotKey(queryHash, poolID string, capturedAt int64) string {
	data := fmt.Sprintf("%s|%s|%d", queryHash, poolID, capturedAt)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
