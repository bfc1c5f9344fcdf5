package timeline

import (
	"fmt"
	"sort"
	"strings"
)

var severityRank = map[string]int{
	SeverityTotalWar: 3, SeverityWar: 2, SeverityLimited: 1,
}

// ForecastSummary renders the condensed event outlook injected into
// forecast prompts: economic events, wars grouped by country, and the
// permanent safe havens.
func (t *Timeline) ForecastSummary(currentYear, lookahead int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== EVENT FORECAST (Year %d, next %d years) ===\n", currentYear, lookahead)

	events := t.EconomicEvents(currentYear, lookahead)
	if len(events) > 0 {
		b.WriteString("\n## Upcoming Economic Events\n")
		for _, ev := range events {
			status := fmt.Sprintf("starts %d", ev.StartYear)
			if ev.StartYear <= currentYear {
				status = "ACTIVE NOW"
			}
			span := fmt.Sprintf("%d-%d", ev.StartYear, ev.EndYear)
			if ev.StartYear == ev.EndYear {
				span = fmt.Sprintf("%d", ev.StartYear)
			}
			fmt.Fprintf(&b, "  [%s] %s (%s)\n", span, ev.Description, status)
		}
	} else {
		b.WriteString("\n## Economic Outlook: Stable (no major events expected)\n")
	}

	wars := t.UpcomingWars(currentYear, lookahead)
	if len(wars) > 0 {
		b.WriteString("\n## Upcoming/Active Wars\n")
		byCountry := make(map[string][]WarPeriod)
		for _, wp := range wars {
			byCountry[wp.Country] = append(byCountry[wp.Country], wp)
		}
		countries := make([]string, 0, len(byCountry))
		for c := range byCountry {
			countries = append(countries, c)
		}
		sort.Strings(countries)

		for _, country := range countries {
			wps := byCountry[country]
			citySet := make(map[string]bool)
			worst := wps[0]
			minStart, maxEnd := wps[0].StartYear, wps[0].EndYear
			active := false
			for _, wp := range wps {
				citySet[wp.CityName] = true
				if severityRank[wp.Severity] > severityRank[worst.Severity] {
					worst = wp
				}
				if wp.StartYear < minStart {
					minStart = wp.StartYear
				}
				if wp.EndYear > maxEnd {
					maxEnd = wp.EndYear
				}
				if wp.StartYear <= currentYear && currentYear <= wp.EndYear {
					active = true
				}
			}
			cities := make([]string, 0, len(citySet))
			for c := range citySet {
				cities = append(cities, c)
			}
			sort.Strings(cities)
			cityStr := strings.Join(cities[:min(len(cities), 5)], ", ")
			if len(cities) > 5 {
				cityStr += fmt.Sprintf(" +%d more", len(cities)-5)
			}
			status := fmt.Sprintf("starts %d", minStart)
			if active {
				status = "ACTIVE"
			}
			fmt.Fprintf(&b, "  %s [%d-%d] %s (%s)\n    Cities: %s\n",
				country, minStart, maxEnd, worst.Severity, status, cityStr)
		}
	} else {
		b.WriteString("\n## War Outlook: Peaceful (no conflicts expected)\n")
	}

	if len(t.havens) > 0 {
		b.WriteString("\n## Permanent Safe Havens (never at war)\n")
		for _, sh := range t.havens {
			fmt.Fprintf(&b, "  %s (%s)\n", sh.Name, sh.Country)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// AssetRiskReport renders the per-city risk analysis for prompt
// injection, at-risk locations first.
func AssetRiskReport(risks []CityRisk, currentYear int) string {
	if len(risks) == 0 {
		return "(no player asset locations known)"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "=== PLAYER ASSET WAR RISK ANALYSIS (Year %d) ===\n", currentYear)

	icons := map[RiskLevel]string{
		RiskCritical: "!!!", RiskHigh: "!! ", RiskMedium: "!  ", RiskLow: ".  ", RiskSafe: "   ",
	}

	var atRisk, safe []CityRisk
	for _, r := range risks {
		if r.Level == RiskSafe {
			safe = append(safe, r)
		} else {
			atRisk = append(atRisk, r)
		}
	}

	if len(atRisk) > 0 {
		b.WriteString("\n## AT-RISK LOCATIONS\n")
		for _, r := range atRisk {
			icon := icons[r.Level]
			if r.Level == RiskCritical {
				fmt.Fprintf(&b, "  %s %s (%s): CURRENTLY IN CONFLICT\n", icon, r.CityName, r.Country)
			} else {
				fmt.Fprintf(&b, "  %s %s (%s): %s (%.0f years until conflict)\n",
					icon, r.CityName, r.Country, r.Level, r.YearsUntilConflict)
			}
			for _, wp := range r.UpcomingWars[:min(len(r.UpcomingWars), 3)] {
				fmt.Fprintf(&b, "       -> %d %s ~ %d %s: %s (%s)\n",
					wp.StartYear, monthName(wp.StartMonth),
					wp.EndYear, monthName(wp.EndMonth),
					wp.Severity, wp.SeverityNote())
			}
		}
	} else {
		b.WriteString("\n## All player locations are SAFE from future conflicts\n")
	}

	if len(safe) > 0 {
		names := make([]string, len(safe))
		for i, r := range safe {
			names[i] = r.CityName
		}
		fmt.Fprintf(&b, "\n## Safe locations: %s\n", strings.Join(names, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}
