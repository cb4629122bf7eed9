package models

// CollateralStrikeEntry is one rung of the collateral strike ladder (0-100 pct).
type CollateralStrikeEntry struct {
	StrikePrice float64 `json:"strike_price"`
	BTCSellPct  float64 `json:"btc_sell_pct"`
}

// CollateralStrikeStatus tracks one single-fire collateral strike.
type CollateralStrikeStatus struct {
	StrikePrice  float64 `json:"strike_price"`
	BTCSellPct   float64 `json:"btc_sell_pct"`
	Triggered    bool    `json:"triggered"`
	TriggerMonth *int    `json:"trigger_month,omitempty"`
	BTCSold      float64 `json:"btc_sold"`
	USDReceived  float64 `json:"usd_received"`
	DebtRepaid   float64 `json:"debt_repaid"`
}

// CollateralConfig parameterizes the BTC-as-collateral product.
type CollateralConfig struct {
	CapitalRaisedUSD      float64                 `json:"capital_raised_usd"`
	BTCAllocationPct      float64                 `json:"btc_allocation_pct"` // 0..100
	BuyingPriceUSD        float64                 `json:"buying_price_usd"`
	CollateralLTVPct      float64                 `json:"collateral_ltv_pct"`
	BorrowingAPR          float64                 `json:"borrowing_apr"`
	LiquidationLTVPct     float64                 `json:"liquidation_ltv_pct"`
	Miner                 MinerSpec               `json:"miner"`
	MinerCount            int                     `json:"miner_count"`
	ElectricityRate       float64                 `json:"electricity_rate"`
	HostingFeePerKWMon    float64                 `json:"hosting_fee_per_kw_month"`
	Uptime                float64                 `json:"uptime"`
	CurtailmentPct        float64                 `json:"curtailment_pct"`
	TenorMonths           int                     `json:"tenor_months"`
	StrikeLadder          []CollateralStrikeEntry `json:"strike_ladder,omitempty"`
	ReserveYieldAPR       float64                 `json:"reserve_yield_apr"`
	BaseYieldAPR          float64                 `json:"base_yield_apr"`
	BonusYieldAPR         float64                 `json:"bonus_yield_apr"`
	EarlyCloseThreshold   float64                 `json:"early_close_threshold_pct"` // fraction of capital
	Commercial            CommercialFeesConfig    `json:"commercial"`
}

// CollateralMonth is one month of collateral product state.
type CollateralMonth struct {
	Month                     int     `json:"month"`
	BTCPriceUSD               float64 `json:"btc_price_usd"`
	BTCMined                  float64 `json:"btc_mined"`
	BTCCollateral             float64 `json:"btc_collateral"`
	CollateralValueUSD        float64 `json:"collateral_value_usd"`
	StablecoinReserve         float64 `json:"stablecoin_reserve"`
	StablecoinDebt            float64 `json:"stablecoin_debt"`
	MintedForOpex             float64 `json:"minted_for_opex"`
	InterestUSD               float64 `json:"interest_usd"`
	MgmtFeeUSD                float64 `json:"mgmt_fee_usd"`
	ReserveYieldUSD           float64 `json:"reserve_yield_usd"`
	CumulativeReserveYieldUSD float64 `json:"cumulative_reserve_yield_usd"`
	YieldPaidUSD              float64 `json:"yield_paid_usd"`
	YieldFromReserveUSD       float64 `json:"yield_from_reserve_usd"`
	YieldFromBTCSaleUSD       float64 `json:"yield_from_btc_sale_usd"`
	YieldBTCSold              float64 `json:"yield_btc_sold"`
	YieldObligationUSD        float64 `json:"yield_obligation_usd"`
	YieldAPRApplied           float64 `json:"yield_apr_applied"`
	YieldFulfillment          float64 `json:"yield_fulfillment"`
	CumulativeYieldPaidUSD    float64 `json:"cumulative_yield_paid_usd"`
	BonusYieldActive          bool    `json:"bonus_yield_active"`
	OpexUSD                   float64 `json:"opex_usd"`
	OpexFromReserve           float64 `json:"opex_from_reserve"`
	OpexShortfall             bool    `json:"opex_shortfall"`
	LTVPct                    float64 `json:"ltv_pct"`
	LiquidationRisk           bool    `json:"liquidation_risk"`
	NetEquityUSD              float64 `json:"net_equity_usd"`
	StrikeSoldBTC             float64 `json:"strike_sold_btc"`
	StrikeReceivedUSD         float64 `json:"strike_received_usd"`
	StrikeDebtRepaid          float64 `json:"strike_debt_repaid"`
}

// CollateralStrikeEvent records one strike ladder firing.
type CollateralStrikeEvent struct {
	Month            int     `json:"month"`
	StrikePrice      float64 `json:"strike_price"`
	BTCPriceUSD      float64 `json:"btc_price_usd"`
	BTCSold          float64 `json:"btc_sold"`
	USDReceived      float64 `json:"usd_received"`
	DebtRepaid       float64 `json:"debt_repaid"`
	SurplusToReserve float64 `json:"surplus_to_reserve"`
	RemainingDebt    float64 `json:"remaining_debt"`
	RemainingBTC     float64 `json:"remaining_btc"`
}

// CollateralProductionMonth is the mining production detail for one month.
type CollateralProductionMonth struct {
	Month          int     `json:"month"`
	BTCPriceUSD    float64 `json:"btc_price_usd"`
	BTCProduced    float64 `json:"btc_produced"`
	OpexUSD        float64 `json:"opex_usd"`
	ElecCostUSD    float64 `json:"elec_cost_usd"`
	HostingFeeUSD  float64 `json:"hosting_fee_usd"`
	MaintenanceUSD float64 `json:"maintenance_usd"`
}

// CollateralMetrics summarizes a collateral product run.
type CollateralMetrics struct {
	CapitalRaisedUSD        float64  `json:"capital_raised_usd"`
	EffectiveCapitalUSD     float64  `json:"effective_capital_usd"`
	BTCPurchased            float64  `json:"btc_purchased"`
	BTCPurchasePriceUSD     float64  `json:"btc_purchase_price_usd"`
	InitialReserveUSD       float64  `json:"initial_stablecoin_reserve"`
	MinerCapexUSD           float64  `json:"miner_capex_usd"`
	MintedForCapexUSD       float64  `json:"minted_for_capex_usd"`
	FinalBTCCollateral      float64  `json:"final_btc_collateral"`
	FinalCollateralValueUSD float64  `json:"final_collateral_value_usd"`
	FinalStablecoinDebt     float64  `json:"final_stablecoin_debt"`
	FinalStablecoinReserve  float64  `json:"final_stablecoin_reserve"`
	FinalNetEquityUSD       float64  `json:"final_net_equity_usd"`
	FinalLTVPct             float64  `json:"final_ltv_pct"`
	TotalBTCMined           float64  `json:"total_btc_mined"`
	TotalOpexPaidUSD        float64  `json:"total_opex_paid_usd"`
	TotalInterestPaidUSD    float64  `json:"total_interest_paid_usd"`
	TotalDebtRepaidUSD      float64  `json:"total_debt_repaid_usd"`
	TotalReserveYieldUSD    float64  `json:"total_reserve_yield_usd"`
	ReserveYieldAPR         float64  `json:"reserve_yield_apr"`
	TotalReturnPct          float64  `json:"total_return_pct"`
	TotalYieldPaidUSD       float64  `json:"total_yield_paid_usd"`
	CumulativeYieldPaidUSD  float64  `json:"cumulative_yield_paid_usd"`
	BaseYieldAPR            float64  `json:"base_yield_apr"`
	BonusYieldAPR           float64  `json:"bonus_yield_apr"`
	CombinedYieldAPR        float64  `json:"combined_yield_apr"`
	EffectiveYieldAPR       float64  `json:"effective_yield_apr"`
	EarlyCloseTriggered     bool     `json:"early_close_triggered"`
	EarlyCloseMonth         *int     `json:"early_close_month,omitempty"`
	EarlyCloseThreshold     float64  `json:"early_close_threshold_pct"`
	CumulativeYieldPct      float64  `json:"cumulative_yield_pct"`
	LiquidationRiskMonths   int      `json:"liquidation_risk_months"`
	MaxLTVPct               float64  `json:"max_ltv_pct"`
	MinLTVPct               float64  `json:"min_ltv_pct"`
	StrikesTriggered        int      `json:"strikes_triggered"`
	StrikesTotal            int      `json:"strikes_total"`
	UpfrontFeeUSD           float64  `json:"upfront_fee_usd"`
	TotalMgmtFeesUSD        float64  `json:"total_mgmt_fees_usd"`
	PerformanceFeeUSD       float64  `json:"performance_fee_usd"`
	TotalCommercialUSD      float64  `json:"total_commercial_usd"`
	EffectiveMonths         int      `json:"effective_months"`
}

// CollateralResult is the full output of the collateral product engine.
type CollateralResult struct {
	RunID              string                      `json:"run_id"`
	MonthlyData        []CollateralMonth           `json:"monthly_data"`
	Metrics            CollateralMetrics           `json:"metrics"`
	StrikeEvents       []CollateralStrikeEvent     `json:"strike_events"`
	MiningProduction   []CollateralProductionMonth `json:"mining_production"`
	StrikeLadderStatus []CollateralStrikeStatus    `json:"strike_ladder_status"`
}
