// Package poolquery is the paginated pool query engine: it builds cache keys
// from canonical mint pairs and exposes the fetched pools as normalized and
// formatted collections.
package poolquery

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gravex-pools/internal/domain"
	"gravex-pools/internal/mint"
)

// Query defaults.
const (
	DefaultSort            = "default"
	DefaultPageSize        = 100
	DefaultRefreshInterval = time.Minute
)

// ErrInvalidParams is returned for unknown pool types or sort orders.
var ErrInvalidParams = errors.New("invalid query params")

// URLConfig locates the pool search endpoint.
type URLConfig struct {
	Host               string
	PoolSearchMintPath string
}

// DefaultURLConfig returns the public pool API endpoint.
func DefaultURLConfig() URLConfig {
	return URLConfig{
		Host:               "https://api-v3.raydium.io",
		PoolSearchMintPath: "/pools/info/mint",
	}
}

// Endpoint returns host and path joined.
func (c URLConfig) Endpoint() string {
	return strings.TrimRight(c.Host, "/") + c.PoolSearchMintPath
}

// Params describes one pool query. Use DefaultParams as a starting point:
// the zero value has ShouldFetch unset and is inactive.
type Params struct {
	Mint1     string
	Mint2     string
	PoolID    string
	Type      domain.PoolFetchType
	Sort      string
	Order     domain.SortOrder
	PageSize  int
	ShowFarms bool
	// RefreshInterval drives dedup, focus throttling and passive refresh.
	RefreshInterval time.Duration
	// ShouldFetch gates every request. A query with ShouldFetch false has
	// no key: it is inactive and its result stays empty.
	ShouldFetch bool
}

// DefaultParams returns params with every default applied and fetching on.
func DefaultParams() Params {
	return Params{
		Type:            domain.PoolFetchAll,
		Sort:            DefaultSort,
		Order:           domain.SortDesc,
		PageSize:        DefaultPageSize,
		RefreshInterval: DefaultRefreshInterval,
		ShouldFetch:     true,
	}
}

// withDefaults fills empty fields and validates enumerations.
func (p Params) withDefaults() (Params, error) {
	if p.Type == "" {
		p.Type = domain.PoolFetchAll
	}
	if !p.Type.IsValid() {
		return p, fmt.Errorf("%w: pool type %q", ErrInvalidParams, p.Type)
	}
	if p.Sort == "" {
		p.Sort = DefaultSort
	}
	if p.Order == "" {
		p.Order = domain.SortDesc
	}
	if !p.Order.IsValid() {
		return p, fmt.Errorf("%w: sort order %q", ErrInvalidParams, p.Order)
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.RefreshInterval <= 0 {
		p.RefreshInterval = DefaultRefreshInterval
	}
	return p, nil
}

// BuildKey returns the cache key of a query, or "" when the query is
// inactive (no mints or fetching disabled). Identical queries yield
// identical keys whatever the mint argument order.
func BuildKey(cfg URLConfig, pair mint.Pair, p Params) string {
	if pair.IsEmpty() || !p.ShouldFetch {
		return ""
	}

	var b strings.Builder
	b.WriteString(cfg.Endpoint())
	b.WriteString("?mint1=")
	b.WriteString(url.QueryEscape(pair.Base))
	b.WriteString("&mint2=")
	b.WriteString(url.QueryEscape(pair.Quote))
	b.WriteString("&poolType=")
	b.WriteString(url.QueryEscape(p.Type.WireValue(p.ShowFarms)))
	b.WriteString("&poolSortField=")
	b.WriteString(url.QueryEscape(p.Sort))
	b.WriteString("&sortType=")
	b.WriteString(url.QueryEscape(string(p.Order)))
	b.WriteString("&pageSize=")
	b.WriteString(strconv.Itoa(p.PageSize))
	return b.String()
}

// PageURL returns the request URL of a 0-based page. The API counts pages from 1.
func PageURL(key string, page int) string {
	return key + "&page=" + strconv.Itoa(page+1)
}

// ResolveKey canonicalizes the mints of p and builds its key.
func ResolveKey(cfg URLConfig, p Params) (string, mint.Pair, Params, error) {
	p, err := p.withDefaults()
	if err != nil {
		return "", mint.Pair{}, p, err
	}
	pair, err := mint.Canonicalize(p.Mint1, p.Mint2)
	if err != nil {
		return "", mint.Pair{}, p, err
	}
	return BuildKey(cfg, pair, p), pair, p, nil
}
