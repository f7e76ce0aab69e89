package domain

// FormattedPool is the display projection of a NormalizedPool.
// All string fields are ready to render; the transform is one-way.
type FormattedPool struct {
	ID               string          `json:"id"`
	Kind             string          `json:"kind"`
	PoolName         string          `json:"poolName"`
	MintA            string          `json:"mintA"`
	MintB            string          `json:"mintB"`
	Price            string          `json:"price"`
	RecommendDecimal int             `json:"recommendDecimal"`
	FeeRate          string          `json:"feeRate"`
	TVL              string          `json:"tvl"`
	Volume24h        string          `json:"volume24h"`
	Volume7d         string          `json:"volume7d"`
	Apr24h           string          `json:"apr24h"`
	Apr7d            string          `json:"apr7d"`
	Apr30d           string          `json:"apr30d"`
	WeeklyRewards    []WeeklyReward  `json:"weeklyRewards"`
	IsOpenBook       bool            `json:"isOpenBook"`
	HasActiveFarm    bool            `json:"hasActiveFarm"`
	IsRewardEnded    bool            `json:"isRewardEnded"`
	AllApr           FormattedAprSet `json:"allApr"`
}

// WeeklyReward is the amount of a reward token emitted per week.
type WeeklyReward struct {
	Mint   string `json:"mint"`
	Symbol string `json:"symbol"`
	Amount string `json:"amount"`
}

// FormattedAprSet breaks one window's APR into its parts.
type FormattedAprSet struct {
	Fee     string   `json:"fee"`
	Rewards []string `json:"rewards"`
	Total   string   `json:"total"`
}
