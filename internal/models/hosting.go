package models

// HostingSiteSpec describes a hosting facility for mining hardware.
type HostingSiteSpec struct {
	ID                       string  `json:"id"`
	Name                     string  `json:"name"`
	ElectricityRateUSDPerKWh float64 `json:"electricity_price_usd_per_kwh"`
	HostingFeeUSDPerKWMonth  float64 `json:"hosting_fee_usd_per_kw_month"`
	UptimeExpectation        float64 `json:"uptime_expectation"`
	CurtailmentPct           float64 `json:"curtailment_pct"`
	CapacityMWAvailable      float64 `json:"capacity_mw_available"`
}

// HostingAllocation assigns a number of miners of one model to a site.
type HostingAllocation struct {
	SiteID     string `json:"site_id"`
	MinerID    string `json:"miner_id"`
	MinerCount int    `json:"miner_count"`
}

// SiteMinerBreakdown is one miner line within a site's allocation breakdown.
type SiteMinerBreakdown struct {
	MinerID   string  `json:"miner_id"`
	MinerName string  `json:"miner_name"`
	Count     int     `json:"count"`
	PowerKW   float64 `json:"power_kw"`
}

// SiteBreakdown aggregates all miners allocated to a single site.
type SiteBreakdown struct {
	SiteName     string               `json:"site_name"`
	TotalPowerKW float64              `json:"total_power_kw"`
	CapacityKW   float64              `json:"capacity_kw"`
	Miners       []SiteMinerBreakdown `json:"miners"`
}

// AllocationReport contains blended hosting metrics and soft warnings.
type AllocationReport struct {
	BlendedElectricityRate float64                  `json:"blended_electricity_rate"`
	BlendedUptime          float64                  `json:"blended_uptime"`
	TotalPowerKW           float64                  `json:"total_power_kw"`
	Warnings               []string                 `json:"warnings"`
	PerSiteBreakdown       map[string]SiteBreakdown `json:"per_site_breakdown"`
}

// OpsHistoryEntry is one month of observed fleet performance.
type OpsHistoryEntry struct {
	Month       string  `json:"month"`
	BTCProduced float64 `json:"btc_produced"`
	Uptime      float64 `json:"uptime"`
	EnergyKWh   float64 `json:"energy_kwh"`
}

// CalibrationMonth compares predicted vs observed production for one month.
type CalibrationMonth struct {
	Month              string  `json:"month"`
	PredictedBTC       float64 `json:"predicted_btc"`
	ActualBTC          float64 `json:"actual_btc"`
	VariancePct        float64 `json:"variance_pct"`
	PredictedEnergyKWh float64 `json:"predicted_energy_kwh"`
	ActualEnergyKWh    float64 `json:"actual_energy_kwh"`
	ActualUptime       float64 `json:"actual_uptime"`
}

// CalibrationResult carries correction factors for later simulation runs.
type CalibrationResult struct {
	RealizedUptimeFactor     float64            `json:"realized_uptime_factor"`
	RealizedEfficiencyFactor float64            `json:"realized_efficiency_factor"`
	ProductionAdjustment     float64            `json:"production_adjustment"`
	Flags                    []string           `json:"flags"`
	MonthlyComparison        []CalibrationMonth `json:"monthly_comparison"`
	VarianceP50              float64            `json:"variance_p50"`
	VarianceP90              float64            `json:"variance_p90"`
}
