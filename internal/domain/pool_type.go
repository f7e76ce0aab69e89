package domain

import "fmt"

// PoolFetchType selects which pool kinds the search endpoint returns.
type PoolFetchType string

const (
	PoolFetchAll          PoolFetchType = "all"
	PoolFetchStandard     PoolFetchType = "standard"
	PoolFetchConcentrated PoolFetchType = "concentrated"
)

// String returns the string representation of PoolFetchType.
func (t PoolFetchType) String() string {
	return string(t)
}

// IsValid checks if the fetch type is a known value.
func (t PoolFetchType) IsValid() bool {
	return t == PoolFetchAll || t == PoolFetchStandard || t == PoolFetchConcentrated
}

// WireValue returns the poolType query value. Farm-only searches use the
// "<type>Farm" form.
func (t PoolFetchType) WireValue(showFarms bool) string {
	if showFarms {
		return string(t) + "Farm"
	}
	return string(t)
}

// ParsePoolFetchType parses a fetch type, accepting the empty string as all.
func ParsePoolFetchType(s string) (PoolFetchType, error) {
	if s == "" {
		return PoolFetchAll, nil
	}
	t := PoolFetchType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("unknown pool type %q", s)
	}
	return t, nil
}

// SortOrder is the direction of the pool sort field.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// IsValid checks if the sort order is asc or desc.
func (o SortOrder) IsValid() bool {
	return o == SortAsc || o == SortDesc
}
