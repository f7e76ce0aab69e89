// Package projection turns raw pool records into APR-annotated and
// display-ready shapes.
package projection

import (
	"github.com/shopspring/decimal"

	"gravex-pools/internal/domain"
)

// Days per rolling window, used to annualize fee yield.
const (
	dayWindowDays   = 1
	weekWindowDays  = 7
	monthWindowDays = 30
	daysPerYear     = 365
)

const aprPrecision = 8

// Normalize recomputes the APR fields of rec. Fee APR missing from a window
// is derived from its fee volume and the pool TVL; total APR is fee APR plus
// every reward APR. rec is not modified.
func Normalize(rec domain.PoolRecord) domain.NormalizedPool {
	r := copyRecord(rec)
	tvl := dec(r.TVL)

	var out domain.NormalizedPool
	out.FeeApr.Day, out.RewardApr.Day, out.TotalApr.Day = normalizePeriod(&r.Day, tvl, dayWindowDays)
	out.FeeApr.Week, out.RewardApr.Week, out.TotalApr.Week = normalizePeriod(&r.Week, tvl, weekWindowDays)
	out.FeeApr.Month, out.RewardApr.Month, out.TotalApr.Month = normalizePeriod(&r.Month, tvl, monthWindowDays)
	out.Record = r

	return out
}

// NormalizeAll normalizes records in order. Records without an id are
// dropped; records sharing an id are all kept.
func NormalizeAll(records []domain.PoolRecord) []domain.NormalizedPool {
	out := make([]domain.NormalizedPool, 0, len(records))
	for _, rec := range records {
		if rec.ID == "" {
			continue
		}
		out = append(out, Normalize(rec))
	}
	return out
}

func normalizePeriod(s *domain.PeriodStats, tvl decimal.Decimal, days int64) (fee, reward, total float64) {
	feeApr := dec(s.FeeApr)
	if feeApr.IsZero() && s.VolumeFee > 0 && tvl.IsPositive() {
		feeApr = dec(s.VolumeFee).
			Div(tvl).
			Mul(hundred).
			Mul(decimal.NewFromInt(daysPerYear)).
			Div(decimal.NewFromInt(days))
	}

	rewardApr := decimal.Zero
	for _, v := range s.RewardApr {
		rewardApr = rewardApr.Add(dec(v))
	}
	totalApr := feeApr.Add(rewardApr)

	fee = feeApr.Round(aprPrecision).InexactFloat64()
	reward = rewardApr.Round(aprPrecision).InexactFloat64()
	total = totalApr.Round(aprPrecision).InexactFloat64()

	s.FeeApr = fee
	s.Apr = total
	return fee, reward, total
}

func copyRecord(rec domain.PoolRecord) domain.PoolRecord {
	r := rec
	r.MintA = copyMint(rec.MintA)
	r.MintB = copyMint(rec.MintB)
	r.Day = copyPeriod(rec.Day)
	r.Week = copyPeriod(rec.Week)
	r.Month = copyPeriod(rec.Month)
	r.PoolTags = append([]string(nil), rec.PoolTags...)

	if rec.RewardInfos != nil {
		r.RewardInfos = make([]domain.RewardInfo, len(rec.RewardInfos))
		for i, ri := range rec.RewardInfos {
			ri.Mint = copyMint(ri.Mint)
			r.RewardInfos[i] = ri
		}
	}
	if rec.LPMint != nil {
		lp := copyMint(*rec.LPMint)
		r.LPMint = &lp
	}
	if rec.Config != nil {
		cfg := *rec.Config
		r.Config = &cfg
	}
	return r
}

func copyMint(m domain.MintInfo) domain.MintInfo {
	m.Tags = append([]string(nil), m.Tags...)
	return m
}

func copyPeriod(p domain.PeriodStats) domain.PeriodStats {
	p.RewardApr = append([]float64(nil), p.RewardApr...)
	return p
}
