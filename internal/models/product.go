package models

// Decision classifies product health after a simulation run.
type Decision string

const (
	DecisionApproved Decision = "APPROVED"
	DecisionAdjust   Decision = "ADJUST"
	DecisionBlocked  Decision = "BLOCKED"
)

// Month flags for the waterfall.
const (
	MonthFlagGreen = "GREEN"
	MonthFlagRed   = "RED"
)

// TakeProfitEntry is one rung of the capitalization take-profit ladder.
// Once Triggered it is permanently inert.
type TakeProfitEntry struct {
	PriceTrigger float64 `json:"price_trigger"`
	SellPct      float64 `json:"sell_pct"` // fraction of the pool, 0..1
	Triggered    bool    `json:"triggered"`
	TriggerMonth *int    `json:"trigger_month,omitempty"`
}

// MiningBucketConfig parameterizes the mining waterfall for one bucket.
type MiningBucketConfig struct {
	AllocatedUSD       float64           `json:"allocated_usd"`
	Miner              MinerSpec         `json:"miner"`
	MinerCount         int               `json:"miner_count"`
	ElectricityRate    float64           `json:"electricity_rate"`
	HostingFeePerKWMon float64           `json:"hosting_fee_per_kw_month"`
	Uptime             float64           `json:"uptime"`
	CurtailmentPct     float64           `json:"curtailment_pct"`
	TenorMonths        int               `json:"tenor_months"`
	BaseYieldAPR       float64           `json:"base_yield_apr"`
	BonusYieldAPR      float64           `json:"bonus_yield_apr"`
	CalibrationUptime  float64           `json:"calibration_uptime_factor"`
	CalibrationProdAdj float64           `json:"calibration_production_adj"`
	TakeProfitLadder   []TakeProfitEntry `json:"take_profit_ladder,omitempty"`
}

// WaterfallMonth is one month of the mining cashflow waterfall.
type WaterfallMonth struct {
	Month               int     `json:"month"`
	BTCPriceUSD         float64 `json:"btc_price_usd"`
	BTCProduced         float64 `json:"btc_produced"`
	BTCSellOpex         float64 `json:"btc_sell_opex"`
	BTCForYield         float64 `json:"btc_for_yield"`
	BTCToCapitalization float64 `json:"btc_to_capitalization"`
	OpexUSD             float64 `json:"opex_usd"`
	YieldPaidUSD        float64 `json:"yield_paid_usd"`
	YieldAPRApplied     float64 `json:"yield_apr_applied"`
	TakeProfitSoldUSD   float64 `json:"take_profit_sold_usd"`
	CapitalizationBTC   float64 `json:"capitalization_btc"`
	CapitalizationUSD   float64 `json:"capitalization_usd"`
	OpexCoverageRatio   float64 `json:"opex_coverage_ratio"`
	YieldFulfillment    float64 `json:"yield_fulfillment"`
	HealthScore         float64 `json:"health_score"`
	Flag                string  `json:"flag"`
}

// WaterfallMetrics summarizes a full waterfall run.
type WaterfallMetrics struct {
	FinalHealthScore       float64 `json:"final_health_score"`
	TotalBTCProduced       float64 `json:"total_btc_produced"`
	TotalBTCSold           float64 `json:"total_btc_sold"`
	CumulativeYieldPaidUSD float64 `json:"cumulative_yield_paid_usd"`
	AvgMonthlyYieldUSD     float64 `json:"avg_monthly_yield_usd"`
	EffectiveAPR           float64 `json:"effective_apr"`
	RedFlagMonths          int     `json:"red_flag_months"`
	CapitalizationBTCFinal float64 `json:"capitalization_btc_final"`
	CapitalizationUSDFinal float64 `json:"capitalization_usd_final"`
	AvgOpexCoverageRatio   float64 `json:"avg_opex_coverage_ratio"`
}

// WaterfallResult is the full output of the mining waterfall engine.
type WaterfallResult struct {
	MonthlyWaterfall []WaterfallMonth `json:"monthly_waterfall"`
	Metrics          WaterfallMetrics `json:"metrics"`
	Flags            []string         `json:"flags"`
	Decision         Decision         `json:"decision"`
	DecisionReasons  []string         `json:"decision_reasons"`
}

// APRScheduleEntry overrides the yield bucket APR for a month range (inclusive).
type APRScheduleEntry struct {
	FromMonth int     `json:"from_month"`
	ToMonth   int     `json:"to_month"`
	APR       float64 `json:"apr"`
}

// YieldBucketConfig parameterizes the deterministic yield bucket.
type YieldBucketConfig struct {
	AllocatedUSD float64            `json:"allocated_usd"`
	BaseAPR      float64            `json:"base_apr"`
	APRSchedule  []APRScheduleEntry `json:"apr_schedule,omitempty"`
}

// YieldBucketMonth is one month of compounding yield bucket state.
type YieldBucketMonth struct {
	Month              int     `json:"month"`
	APRApplied         float64 `json:"apr_applied"`
	MonthlyYieldUSD    float64 `json:"monthly_yield_usd"`
	CumulativeYieldUSD float64 `json:"cumulative_yield_usd"`
	BucketValueUSD     float64 `json:"bucket_value_usd"`
}

// YieldBucketResult is the yield bucket output.
type YieldBucketResult struct {
	MonthlyData []YieldBucketMonth `json:"monthly_data"`
	Metrics     struct {
		AllocatedUSD  float64 `json:"allocated_usd"`
		FinalValueUSD float64 `json:"final_value_usd"`
		TotalYieldUSD float64 `json:"total_yield_usd"`
		EffectiveAPR  float64 `json:"effective_apr"`
	} `json:"metrics"`
}

// StrikeLadderEntry is one rung of the holding bucket's extra-yield ladder.
type StrikeLadderEntry struct {
	StrikePrice float64 `json:"strike_price"`
	BTCSharePct float64 `json:"btc_share_pct"` // share of the extra-yield BTC, 0..100
}

// StrikeStatus tracks a single-fire strike through a simulation run.
type StrikeStatus struct {
	StrikePrice float64 `json:"strike_price"`
	BTCAmount   float64 `json:"btc_amount"`
	Sold        bool    `json:"sold"`
	SellMonth   *int    `json:"sell_month,omitempty"`
	RealizedUSD float64 `json:"realized_usd"`
}

// HoldingBucketConfig parameterizes the BTC holding bucket.
type HoldingBucketConfig struct {
	AllocatedUSD       float64             `json:"allocated_usd"`
	BuyingPriceUSD     float64             `json:"buying_price_usd"`
	TargetSellPriceUSD float64             `json:"target_sell_price_usd"`
	CapitalReconPct    float64             `json:"capital_recon_pct"` // 0..100
	ExtraYieldStrikes  []StrikeLadderEntry `json:"extra_yield_strikes,omitempty"`
}

// HoldingBucketMonth is one month of holding bucket state.
type HoldingBucketMonth struct {
	Month                  int     `json:"month"`
	BTCPriceUSD            float64 `json:"btc_price_usd"`
	BTCQuantity            float64 `json:"btc_quantity"`
	CapitalReconBTC        float64 `json:"capital_recon_btc"`
	ExtraYieldBTC          float64 `json:"extra_yield_btc"`
	BucketValueUSD         float64 `json:"bucket_value_usd"`
	UnrealizedPnLUSD       float64 `json:"unrealized_pnl_usd"`
	ReconRealizedUSD       float64 `json:"recon_realized_usd"`
	ExtraYieldRealizedUSD  float64 `json:"extra_yield_realized_usd"`
	ExtraYieldThisMonthUSD float64 `json:"extra_yield_this_month_usd"`
	ReconSold              bool    `json:"recon_sold"`
}

// HoldingBucketMetrics summarizes the holding bucket run.
type HoldingBucketMetrics struct {
	AllocatedUSD       float64        `json:"allocated_usd"`
	BuyingPriceUSD     float64        `json:"buying_price_usd"`
	TargetSellPriceUSD float64        `json:"target_sell_price_usd"`
	BTCQuantity        float64        `json:"btc_quantity"`
	CapitalReconPct    float64        `json:"capital_recon_pct"`
	CapitalReconBTC    float64        `json:"capital_recon_btc"`
	TargetHit          bool           `json:"target_hit"`
	SellMonth          *int           `json:"sell_month,omitempty"`
	SellPriceUSD       *float64       `json:"sell_price_usd,omitempty"`
	ReconRealizedUSD   float64        `json:"recon_realized_usd"`
	ExtraYieldBTC      float64        `json:"extra_yield_btc"`
	ExtraYieldStrikes  []StrikeStatus `json:"extra_yield_strikes"`
	ExtraYieldTotalUSD float64        `json:"extra_yield_total_usd"`
	FinalValueUSD      float64        `json:"final_value_usd"`
	TotalReturnPct     float64        `json:"total_return_pct"`
}

// HoldingBucketResult is the holding bucket output.
type HoldingBucketResult struct {
	MonthlyData []HoldingBucketMonth `json:"monthly_data"`
	Metrics     HoldingBucketMetrics `json:"metrics"`
}

// CommercialFeesConfig holds optional product-level fee percentages (0-100 scale).
type CommercialFeesConfig struct {
	UpfrontPct     float64 `json:"upfront_commercial_pct"`
	ManagementPct  float64 `json:"management_fees_pct"`
	PerformancePct float64 `json:"performance_fees_pct"`
}

// CommercialFeesResult is the commercial fee breakdown for a scenario.
type CommercialFeesResult struct {
	UpfrontFeeUSD          float64            `json:"upfront_fee_usd"`
	UpfrontFeeBreakdown    map[string]float64 `json:"upfront_fee_breakdown"`
	ManagementFeesMonthly  []float64          `json:"management_fees_monthly"`
	ManagementFeesTotalUSD float64            `json:"management_fees_total_usd"`
	PerformanceFeeUSD      float64            `json:"performance_fee_usd"`
	PerformanceFeeBaseUSD  float64            `json:"performance_fee_base_usd"`
	TotalCommercialUSD     float64            `json:"total_commercial_value_usd"`
}

// MultiBucketConfig is the full three-bucket product configuration.
type MultiBucketConfig struct {
	CapitalRaisedUSD float64              `json:"capital_raised_usd"`
	TenorMonths      int                  `json:"tenor_months"`
	Yield            YieldBucketConfig    `json:"yield_bucket"`
	Holding          HoldingBucketConfig  `json:"btc_holding_bucket"`
	Mining           MiningBucketConfig   `json:"mining_bucket"`
	Commercial       CommercialFeesConfig `json:"commercial"`
}

// PortfolioMonth sums the three buckets' mark-to-market values.
type PortfolioMonth struct {
	Month             int     `json:"month"`
	YieldValueUSD     float64 `json:"yield_value_usd"`
	HoldingValueUSD   float64 `json:"holding_value_usd"`
	MiningValueUSD    float64 `json:"mining_value_usd"`
	TotalPortfolioUSD float64 `json:"total_portfolio_usd"`
}

// BTCUnderManagementMonth tracks BTC held across buckets for one month.
type BTCUnderManagementMonth struct {
	Month                  int     `json:"month"`
	BTCPriceUSD            float64 `json:"btc_price_usd"`
	HoldingBTC             float64 `json:"holding_btc"`
	HoldingValueUSD        float64 `json:"holding_value_usd"`
	HoldingSold            bool    `json:"holding_sold"`
	HoldingStrikeThisMonth bool    `json:"holding_strike_this_month"`
	MiningCapBTC           float64 `json:"mining_cap_btc"`
	MiningCapValueUSD      float64 `json:"mining_cap_value_usd"`
	TotalBTC               float64 `json:"total_btc"`
	TotalValueUSD          float64 `json:"total_value_usd"`
	HoldingAppreciationUSD float64 `json:"holding_appreciation_usd"`
	HoldingAppreciationPct float64 `json:"holding_appreciation_pct"`
}

// BTCUnderManagementMetrics summarizes BTC under management over the run.
type BTCUnderManagementMetrics struct {
	FinalTotalBTC             float64  `json:"final_total_btc"`
	FinalTotalValueUSD        float64  `json:"final_total_value_usd"`
	FinalHoldingBTC           float64  `json:"final_holding_btc"`
	FinalMiningCapBTC         float64  `json:"final_mining_cap_btc"`
	PeakBTCQty                float64  `json:"peak_btc_qty"`
	PeakBTCValueUSD           float64  `json:"peak_btc_value_usd"`
	HoldingTargetStruck       bool     `json:"holding_target_struck"`
	HoldingStrikeMonth        *int     `json:"holding_strike_month,omitempty"`
	HoldingStrikePriceUSD     *float64 `json:"holding_strike_price_usd,omitempty"`
	MiningTotalBTCAccumulated float64  `json:"mining_total_btc_accumulated"`
}

// PortfolioMetrics are net and gross product-level figures.
type PortfolioMetrics struct {
	CapitalRaisedUSD         float64 `json:"capital_raised_usd"`
	FinalPortfolioUSD        float64 `json:"final_portfolio_usd"`
	TotalReturnPct           float64 `json:"total_return_pct"`
	TotalYieldPaidUSD        float64 `json:"total_yield_paid_usd"`
	EffectiveAPR             float64 `json:"effective_apr"`
	CapitalPreservationRatio float64 `json:"capital_preservation_ratio"`
	GrossFinalPortfolioUSD   float64 `json:"gross_final_portfolio_usd"`
	GrossTotalReturnPct      float64 `json:"gross_total_return_pct"`
}

// MultiBucketResult is the orchestrator output for one scenario.
type MultiBucketResult struct {
	RunID                  string                    `json:"run_id"`
	YieldBucket            YieldBucketResult         `json:"yield_bucket"`
	HoldingBucket          HoldingBucketResult       `json:"btc_holding_bucket"`
	MiningBucket           WaterfallResult           `json:"mining_bucket"`
	Commercial             *CommercialFeesResult     `json:"commercial,omitempty"`
	MonthlyPortfolio       []PortfolioMonth          `json:"monthly_portfolio"`
	BTCUnderManagement     []BTCUnderManagementMonth `json:"btc_under_management"`
	BTCUnderManagementMeta BTCUnderManagementMetrics `json:"btc_under_management_metrics"`
	Metrics                PortfolioMetrics          `json:"metrics"`
	Decision               Decision                  `json:"decision"`
	DecisionReasons        []string                  `json:"decision_reasons"`
}
