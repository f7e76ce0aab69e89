package server

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"gravex-pools/internal/domain"
	"gravex-pools/internal/poolquery"
)

// ParseParams reads query params from a request URL on top of defaults.
// Recognized keys: mint1, mint2, poolId, type, sort, order, pageSize, farms.
func ParseParams(values url.Values, defaults poolquery.Params) (poolquery.Params, error) {
	p := defaults
	p.Mint1 = values.Get("mint1")
	p.Mint2 = values.Get("mint2")
	p.PoolID = values.Get("poolId")

	if v := values.Get("type"); v != "" {
		t, err := domain.ParsePoolFetchType(v)
		if err != nil {
			return p, err
		}
		p.Type = t
	}
	if v := values.Get("sort"); v != "" {
		p.Sort = v
	}
	if v := values.Get("order"); v != "" {
		o := domain.SortOrder(strings.ToLower(v))
		if !o.IsValid() {
			return p, fmt.Errorf("unknown sort order %q", v)
		}
		p.Order = o
	}
	if v := values.Get("pageSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return p, fmt.Errorf("invalid pageSize %q", v)
		}
		p.PageSize = n
	}
	if v := values.Get("farms"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return p, fmt.Errorf("invalid farms %q", v)
		}
		p.ShowFarms = b
	}
	return p, nil
}
