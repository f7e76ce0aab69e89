package domain

// PoolRecord is a pool item as returned by the pool search API (v3 shape).
// Only ID is required; every other field may be absent.
type PoolRecord struct {
	Type              string       `json:"type"` // "Standard" | "Concentrated"
	ProgramID         string       `json:"programId"`
	ID                string       `json:"id"`
	MintA             MintInfo     `json:"mintA"`
	MintB             MintInfo     `json:"mintB"`
	Price             float64      `json:"price"`
	MintAmountA       float64      `json:"mintAmountA"`
	MintAmountB       float64      `json:"mintAmountB"`
	FeeRate           float64      `json:"feeRate"` // fraction, 0.0025 = 0.25%
	OpenTime          string       `json:"openTime"`
	TVL               float64      `json:"tvl"`
	Day               PeriodStats  `json:"day"`
	Week              PeriodStats  `json:"week"`
	Month             PeriodStats  `json:"month"`
	PoolTags          []string     `json:"pooltype"`
	RewardInfos       []RewardInfo `json:"rewardDefaultInfos"`
	FarmUpcomingCount int          `json:"farmUpcomingCount"`
	FarmOngoingCount  int          `json:"farmOngoingCount"`
	FarmFinishedCount int          `json:"farmFinishedCount"`
	MarketID          string       `json:"marketId,omitempty"`
	LPMint            *MintInfo    `json:"lpMint,omitempty"`
	LPPrice           float64      `json:"lpPrice,omitempty"`
	LPAmount          float64      `json:"lpAmount,omitempty"`
	Config            *PoolConfig  `json:"config,omitempty"`
}

// MintInfo describes one token of a pool.
type MintInfo struct {
	ChainID   int      `json:"chainId"`
	Address   string   `json:"address"`
	ProgramID string   `json:"programId"`
	LogoURI   string   `json:"logoURI"`
	Symbol    string   `json:"symbol"`
	Name      string   `json:"name"`
	Decimals  int      `json:"decimals"`
	Tags      []string `json:"tags"`
}

// PeriodStats holds rolling volume and yield figures for one window.
// APR values are percentages (12.5 = 12.5%).
type PeriodStats struct {
	Volume      float64   `json:"volume"`
	VolumeQuote float64   `json:"volumeQuote"`
	VolumeFee   float64   `json:"volumeFee"`
	Apr         float64   `json:"apr"`
	FeeApr      float64   `json:"feeApr"`
	PriceMin    float64   `json:"priceMin"`
	PriceMax    float64   `json:"priceMax"`
	RewardApr   []float64 `json:"rewardApr"`
}

// RewardInfo is a farm reward emitted to pool liquidity providers.
type RewardInfo struct {
	Mint      MintInfo `json:"mint"`
	PerSecond string   `json:"perSecond"` // raw units, decimal string
	StartTime int64    `json:"startTime,omitempty"`
	EndTime   int64    `json:"endTime,omitempty"`
}

// PoolConfig is the fee configuration of concentrated and CPMM pools.
type PoolConfig struct {
	ID              string  `json:"id"`
	Index           int     `json:"index"`
	ProtocolFeeRate float64 `json:"protocolFeeRate"`
	TradeFeeRate    float64 `json:"tradeFeeRate"`
	TickSpacing     int     `json:"tickSpacing,omitempty"`
	FundFeeRate     float64 `json:"fundFeeRate"`
}

// Pool tag values carried in PoolRecord.PoolTags.
const (
	PoolTagOpenBook = "OpenBookMarket"
)

// Pool kinds carried in PoolRecord.Type.
const (
	PoolKindStandard     = "Standard"
	PoolKindConcentrated = "Concentrated"
)
