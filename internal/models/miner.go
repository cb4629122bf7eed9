package models

// MinerSpec describes a single ASIC miner model.
type MinerSpec struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	HashrateTH     float64 `json:"hashrate_th"`
	PowerW         float64 `json:"power_w"`
	PriceUSD       float64 `json:"price_usd"`
	LifetimeMonths int     `json:"lifetime_months"`
	MaintenancePct float64 `json:"maintenance_pct"`
}

// EfficiencyJPerTH returns the miner's energy efficiency in J/TH (W per TH/s).
func (m MinerSpec) EfficiencyJPerTH() float64 {
	if m.HashrateTH <= 0 {
		return 0
	}
	return m.PowerW / m.HashrateTH
}

// MinerMonthlyCashflow is one month of simulated miner economics.
type MinerMonthlyCashflow struct {
	Month                int     `json:"month"`
	BTCPriceUSD          float64 `json:"btc_price_usd"`
	HashpriceBTCPerPHDay float64 `json:"hashprice_btc_per_ph_day"`
	BTCMined             float64 `json:"btc_mined"`
	ElecKWh              float64 `json:"elec_kwh"`
	ElecCostUSD          float64 `json:"elec_cost_usd"`
	GrossRevenueUSD      float64 `json:"gross_revenue_usd"`
	MaintenanceUSD       float64 `json:"maintenance_usd"`
	NetUSD               float64 `json:"net_usd"`
	DepreciationUSD      float64 `json:"depreciation_usd"`
	EBITUSD              float64 `json:"ebit_usd"`
	NetBTC               float64 `json:"net_btc"`
	CumulativeNetUSD     float64 `json:"cumulative_net_usd"`
	CumulativeEBITUSD    float64 `json:"cumulative_ebit_usd"`
}

// MinerSimResult is the full output of a miner economics run.
type MinerSimResult struct {
	MonthlyCashflows        []MinerMonthlyCashflow `json:"monthly_cashflows"`
	TotalBTCMined           float64                `json:"total_btc_mined"`
	TotalRevenueUSD         float64                `json:"total_revenue_usd"`
	TotalElectricityCostUSD float64                `json:"total_electricity_cost_usd"`
	TotalNetUSD             float64                `json:"total_net_usd"`
	TotalEBITUSD            float64                `json:"total_ebit_usd"`
	// BreakEvenMonth is the first month cumulative EBIT turns non-negative,
	// nil when the miner never breaks even within the horizon.
	BreakEvenMonth *int `json:"break_even_month"`
}
