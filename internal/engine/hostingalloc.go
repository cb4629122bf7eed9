package engine

import (
	"fmt"
	"sort"

	"github.com/loicricci/Hearstconnect/internal/models"
	"github.com/loicricci/Hearstconnect/internal/utils"
)

// ComputeAllocation validates a fleet allocation across hosting sites and
// derives the power-weighted blended electricity rate and uptime. Capacity
// overruns, single-site concentration, and low uptime surface as warnings
// rather than errors so a draft allocation can still be simulated.
func ComputeAllocation(
	allocations []models.HostingAllocation,
	sites map[string]models.HostingSiteSpec,
	miners map[string]models.MinerSpec,
) *models.AllocationReport {
	report := &models.AllocationReport{
		PerSiteBreakdown: map[string]models.SiteBreakdown{},
	}

	totalPowerKW := 0.0
	weightedElec := 0.0
	weightedUptime := 0.0

	for _, alloc := range allocations {
		site, siteOK := sites[alloc.SiteID]
		miner, minerOK := miners[alloc.MinerID]
		if !siteOK || !minerOK {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("Missing site %s or miner %s", alloc.SiteID, alloc.MinerID))
			continue
		}

		allocPowerKW := miner.PowerW * float64(alloc.MinerCount) / 1000.0

		breakdown, ok := report.PerSiteBreakdown[alloc.SiteID]
		if !ok {
			breakdown = models.SiteBreakdown{
				SiteName:   site.Name,
				CapacityKW: site.CapacityMWAvailable * 1000.0,
			}
		}
		breakdown.TotalPowerKW += allocPowerKW
		breakdown.Miners = append(breakdown.Miners, models.SiteMinerBreakdown{
			MinerID:   alloc.MinerID,
			MinerName: miner.Name,
			Count:     alloc.MinerCount,
			PowerKW:   allocPowerKW,
		})
		report.PerSiteBreakdown[alloc.SiteID] = breakdown

		totalPowerKW += allocPowerKW
		weightedElec += allocPowerKW * site.ElectricityRateUSDPerKWh
		weightedUptime += allocPowerKW * site.UptimeExpectation
	}

	// Deterministic warning order regardless of map iteration.
	siteIDs := make([]string, 0, len(report.PerSiteBreakdown))
	for id := range report.PerSiteBreakdown {
		siteIDs = append(siteIDs, id)
	}
	sort.Strings(siteIDs)

	for _, id := range siteIDs {
		info := report.PerSiteBreakdown[id]
		if info.TotalPowerKW > info.CapacityKW {
			report.Warnings = append(report.Warnings, fmt.Sprintf(
				"CAPACITY EXCEEDED at %s: %.1f kW allocated vs %.1f kW available",
				info.SiteName, info.TotalPowerKW, info.CapacityKW))
		}
	}

	if len(report.PerSiteBreakdown) == 1 && totalPowerKW > 0 {
		report.Warnings = append(report.Warnings,
			"Single-site concentration risk: all miners at one location")
	}

	for _, id := range siteIDs {
		site := sites[id]
		if site.UptimeExpectation < 0.90 {
			report.Warnings = append(report.Warnings, fmt.Sprintf(
				"Low uptime at %s: %.0f%%", site.Name, site.UptimeExpectation*100))
		}
	}

	if totalPowerKW > 0 {
		report.BlendedElectricityRate = utils.RoundRate(weightedElec / totalPowerKW)
		report.BlendedUptime = utils.RoundRate(weightedUptime / totalPowerKW)
	}
	report.TotalPowerKW = utils.RoundUSD(totalPowerKW)
	return report
}
