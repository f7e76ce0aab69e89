package projection

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"gravex-pools/internal/domain"
)

const secondsPerWeek = 7 * 24 * 60 * 60

const (
	minPriceDecimals = 2
	maxPriceDecimals = 12
)

var (
	thousand = decimal.NewFromInt(1_000)
	million  = decimal.NewFromInt(1_000_000)
	billion  = decimal.NewFromInt(1_000_000_000)
	hundred  = decimal.NewFromInt(100)
)

// Format builds the display projection of p. It only accepts a
// NormalizedPool, so a formatted pool can never be formatted again.
// The output depends on p alone.
func Format(p domain.NormalizedPool) domain.FormattedPool {
	r := p.Record
	decimals := RecommendDecimal(r.Price, r.MintB.Decimals)

	rewards := make([]string, 0, len(r.Day.RewardApr))
	for _, v := range r.Day.RewardApr {
		rewards = append(rewards, formatPercent(v))
	}

	return domain.FormattedPool{
		ID:               r.ID,
		Kind:             r.Type,
		PoolName:         PoolName(r.MintA, r.MintB),
		MintA:            r.MintA.Address,
		MintB:            r.MintB.Address,
		Price:            dec(r.Price).StringFixed(int32(decimals)),
		RecommendDecimal: decimals,
		FeeRate:          formatPercent(r.FeeRate * 100),
		TVL:              formatUSD(r.TVL),
		Volume24h:        formatUSD(r.Day.Volume),
		Volume7d:         formatUSD(r.Week.Volume),
		Apr24h:           formatPercent(p.TotalApr.Day),
		Apr7d:            formatPercent(p.TotalApr.Week),
		Apr30d:           formatPercent(p.TotalApr.Month),
		WeeklyRewards:    weeklyRewards(r.RewardInfos),
		IsOpenBook:       hasTag(r.PoolTags, domain.PoolTagOpenBook),
		HasActiveFarm:    r.FarmOngoingCount > 0,
		IsRewardEnded:    len(r.RewardInfos) > 0 && r.FarmOngoingCount == 0 && r.FarmUpcomingCount == 0,
		AllApr: domain.FormattedAprSet{
			Fee:     formatPercent(p.FeeApr.Day),
			Rewards: rewards,
			Total:   formatPercent(p.TotalApr.Day),
		},
	}
}

// FormatAll formats pools in order.
func FormatAll(pools []domain.NormalizedPool) []domain.FormattedPool {
	out := make([]domain.FormattedPool, len(pools))
	for i, p := range pools {
		out[i] = Format(p)
	}
	return out
}

// PoolName joins the symbols of both mints as "A - B". A mint without a
// symbol is shown by its shortened address.
func PoolName(a, b domain.MintInfo) string {
	return displaySymbol(a) + " - " + displaySymbol(b)
}

// RecommendDecimal returns the number of decimals needed to show price with
// four significant digits, bounded by the quote mint decimals.
func RecommendDecimal(price float64, quoteDecimals int) int {
	limit := maxPriceDecimals
	if quoteDecimals > 0 && quoteDecimals < limit {
		limit = quoteDecimals
	}
	if limit < minPriceDecimals {
		limit = minPriceDecimals
	}
	if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return minPriceDecimals
	}
	if price >= 1 {
		if price >= 1_000 {
			return minPriceDecimals
		}
		return min(4, limit)
	}

	// Leading zeros after the decimal point, plus four significant digits.
	zeros := int(math.Floor(-math.Log10(price)))
	return max(minPriceDecimals, min(zeros+4, limit))
}

func weeklyRewards(infos []domain.RewardInfo) []domain.WeeklyReward {
	out := make([]domain.WeeklyReward, 0, len(infos))
	for _, ri := range infos {
		perSecond, err := decimal.NewFromString(strings.TrimSpace(ri.PerSecond))
		if err != nil {
			perSecond = decimal.Zero
		}
		amount := perSecond.
			Mul(decimal.NewFromInt(secondsPerWeek)).
			Shift(-int32(ri.Mint.Decimals))

		out = append(out, domain.WeeklyReward{
			Mint:   ri.Mint.Address,
			Symbol: displaySymbol(ri.Mint),
			Amount: formatAmount(amount),
		})
	}
	return out
}

func displaySymbol(m domain.MintInfo) string {
	if s := strings.TrimSpace(m.Symbol); s != "" {
		return s
	}
	return shortAddress(m.Address)
}

func shortAddress(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:4] + "..." + addr[len(addr)-4:]
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// formatUSD renders v as a compact dollar amount: $12.35, $950.12K, $1.23M, $4.50B.
func formatUSD(v float64) string {
	d := dec(v)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	switch {
	case d.GreaterThanOrEqual(billion):
		return sign + "$" + d.Div(billion).StringFixed(2) + "B"
	case d.GreaterThanOrEqual(million):
		return sign + "$" + d.Div(million).StringFixed(2) + "M"
	case d.GreaterThanOrEqual(thousand):
		return sign + "$" + d.Div(thousand).StringFixed(2) + "K"
	default:
		return sign + "$" + d.StringFixed(2)
	}
}

func formatPercent(v float64) string {
	return dec(v).StringFixed(2) + "%"
}

// formatAmount keeps two decimals for whole amounts and six below one.
func formatAmount(d decimal.Decimal) string {
	if d.Abs().GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return d.StringFixed(2)
	}
	return d.Round(6).String()
}

// dec converts a float to a decimal, mapping NaN and infinities to zero.
func dec(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}
