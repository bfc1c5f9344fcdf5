// Package timeline loads the war and economic forecast data extracted
// from the game's scripted turn events, and answers questions the save
// database cannot: what conflicts and downturns are coming, and how
// exposed the player's cities are.
package timeline

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
)

// Severity labels as they appear in the timeline data.
const (
	SeverityTotalWar = "TOTAL_WAR"
	SeverityWar      = "WAR"
	SeverityLimited  = "LIMITED"
)

var severityNotes = map[string]string{
	SeverityTotalWar: "total war: no sales, factories at risk of destruction",
	SeverityWar:      "war: no sales",
	SeverityLimited:  "limited: sales reduced by 50%",
}

var monthNames = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

func monthName(m int) string {
	if m >= 1 && m <= 12 {
		return monthNames[m-1]
	}
	return strconv.Itoa(m)
}

// WarPeriod is one span of conflict in one city.
type WarPeriod struct {
	CityID     int
	CityName   string
	Country    string
	StartYear  int
	StartMonth int
	EndYear    int
	EndMonth   int
	Severity   string
}

// SeverityNote expands the severity code into its gameplay effect.
func (w WarPeriod) SeverityNote() string {
	if n, ok := severityNotes[w.Severity]; ok {
		return n
	}
	return w.Severity
}

func (w WarPeriod) String() string {
	return fmt.Sprintf("%s (%s): %d %s ~ %d %s [%s]",
		w.CityName, w.Country,
		w.StartYear, monthName(w.StartMonth),
		w.EndYear, monthName(w.EndMonth), w.Severity)
}

// EconomicEvent is a sustained run of an indicator past its threshold:
// a demand downturn, gas spike, interest spike, or stock crash.
type EconomicEvent struct {
	Type        string
	StartYear   int
	EndYear     int
	PeakValue   float64
	Description string
}

// RiskLevel grades a city's exposure to upcoming conflict.
type RiskLevel string

const (
	RiskCritical RiskLevel = "CRITICAL"
	RiskHigh     RiskLevel = "HIGH"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskLow      RiskLevel = "LOW"
	RiskSafe     RiskLevel = "SAFE"
)

var riskOrder = map[RiskLevel]int{
	RiskCritical: 0, RiskHigh: 1, RiskMedium: 2, RiskLow: 3, RiskSafe: 4,
}

// CityRisk is the conflict outlook for one city.
type CityRisk struct {
	CityID             int
	CityName           string
	Country            string
	UpcomingWars       []WarPeriod
	Level              RiskLevel
	YearsUntilConflict float64
}

// SafeHaven is a city the event script never puts at war.
type SafeHaven struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
}

// DefaultLookahead is the forecast horizon in years.
const DefaultLookahead = 15

type cityWars struct {
	Name    string      `json:"name"`
	Country string      `json:"country"`
	Periods []warPeriod `json:"periods"`
}

// warPeriod decodes the compact [startYear, startMonth, endYear,
// endMonth, severity] array form used in the data file.
type warPeriod struct {
	sy, sm, ey, em int
	severity       string
}

func (p *warPeriod) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if len(raw) != 5 {
		return fmt.Errorf("timeline: war period has %d elements, want 5", len(raw))
	}
	for i, dst := range []*int{&p.sy, &p.sm, &p.ey, &p.em} {
		if err := json.Unmarshal(raw[i], dst); err != nil {
			return fmt.Errorf("timeline: war period element %d: %w", i, err)
		}
	}
	return json.Unmarshal(raw[4], &p.severity)
}

type fileFormat struct {
	WarTimeline      map[string]cityWars           `json:"war_timeline"`
	EconomicTimeline map[string]map[string]float64 `json:"economic_timeline"`
	SafeHavens       []SafeHaven                   `json:"safe_havens"`
}

// Timeline is the parsed forecast data. Immutable after Load.
type Timeline struct {
	wars       []WarPeriod
	warsByCity map[int][]WarPeriod
	cityNames  map[int]cityWars
	econ       map[int]map[string]float64
	events     []EconomicEvent
	havens     []SafeHaven
}

// Load reads and parses the timeline JSON at path.
func Load(path string) (*Timeline, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("timeline: read: %w", err)
	}
	var f fileFormat
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("timeline: parse: %w", err)
	}

	t := &Timeline{
		warsByCity: make(map[int][]WarPeriod),
		cityNames:  make(map[int]cityWars),
		econ:       make(map[int]map[string]float64),
		havens:     f.SafeHavens,
	}
	for cidStr, info := range f.WarTimeline {
		cid, err := strconv.Atoi(cidStr)
		if err != nil {
			return nil, fmt.Errorf("timeline: bad city id %q: %w", cidStr, err)
		}
		t.cityNames[cid] = info
		for _, p := range info.Periods {
			wp := WarPeriod{
				CityID:     cid,
				CityName:   info.Name,
				Country:    info.Country,
				StartYear:  p.sy,
				StartMonth: p.sm,
				EndYear:    p.ey,
				EndMonth:   p.em,
				Severity:   p.severity,
			}
			t.wars = append(t.wars, wp)
			t.warsByCity[cid] = append(t.warsByCity[cid], wp)
		}
	}
	for yStr, vals := range f.EconomicTimeline {
		y, err := strconv.Atoi(yStr)
		if err != nil {
			return nil, fmt.Errorf("timeline: bad year %q: %w", yStr, err)
		}
		t.econ[y] = vals
	}
	t.detectEconomicEvents()
	return t, nil
}

// Threshold rules for the four economic indicators.
var econRules = []struct {
	key       string
	threshold float64
	below     bool
	eventType string
	describe  func(peak float64) string
}{
	{"buyrate", 0.90, true, "downturn", func(v float64) string {
		return fmt.Sprintf("demand downturn (buyrate bottoms at %.4f)", v)
	}},
	{"gas", 2.0, false, "gas_spike", func(v float64) string {
		return fmt.Sprintf("gas price spike (gas peaks at %.4f)", v)
	}},
	{"interest", 1.06, false, "interest_spike", func(v float64) string {
		return fmt.Sprintf("interest rate spike (interest peaks at %.4f)", v)
	}},
	{"stockrate", 0.90, true, "stock_crash", func(v float64) string {
		return fmt.Sprintf("stock market crash (stockrate bottoms at %.4f)", v)
	}},
}

// detectEconomicEvents scans each indicator year by year and collapses
// consecutive threshold breaches into single events with their peak.
func (t *Timeline) detectEconomicEvents() {
	years := make([]int, 0, len(t.econ))
	for y := range t.econ {
		years = append(years, y)
	}
	sort.Ints(years)
	if len(years) == 0 {
		return
	}

	for _, rule := range econRules {
		inEvent := false
		var startY int
		var peak float64

		for _, y := range years {
			val, ok := t.econ[y][rule.key]
			if !ok {
				continue
			}
			triggered := val > rule.threshold
			if rule.below {
				triggered = val < rule.threshold
			}

			switch {
			case triggered && !inEvent:
				inEvent = true
				startY = y
				peak = val
			case triggered && inEvent:
				if rule.below {
					if val < peak {
						peak = val
					}
				} else if val > peak {
					peak = val
				}
			case !triggered && inEvent:
				t.events = append(t.events, EconomicEvent{
					Type:        rule.eventType,
					StartYear:   startY,
					EndYear:     y - 1,
					PeakValue:   peak,
					Description: rule.describe(peak),
				})
				inEvent = false
			}
		}
		if inEvent {
			t.events = append(t.events, EconomicEvent{
				Type:        rule.eventType,
				StartYear:   startY,
				EndYear:     years[len(years)-1],
				PeakValue:   peak,
				Description: rule.describe(peak),
			})
		}
	}
}

// UpcomingWars returns wars starting within lookahead years, plus any
// already in progress, ordered by start date then city.
func (t *Timeline) UpcomingWars(currentYear, lookahead int) []WarPeriod {
	endYear := currentYear + lookahead
	var out []WarPeriod
	for _, wp := range t.wars {
		switch {
		case wp.StartYear >= currentYear && wp.StartYear <= endYear:
			out = append(out, wp)
		case wp.StartYear < currentYear && wp.EndYear >= currentYear:
			out = append(out, wp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.StartYear != b.StartYear {
			return a.StartYear < b.StartYear
		}
		if a.StartMonth != b.StartMonth {
			return a.StartMonth < b.StartMonth
		}
		return a.CityName < b.CityName
	})
	return out
}

// ActiveWars returns wars in progress at the given year and month.
func (t *Timeline) ActiveWars(year, month int) []WarPeriod {
	if month < 1 {
		month = 1
	}
	now := year*12 + month
	var out []WarPeriod
	for _, wp := range t.wars {
		start := wp.StartYear*12 + wp.StartMonth
		end := wp.EndYear*12 + wp.EndMonth
		if start <= now && now <= end {
			out = append(out, wp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CityName < out[j].CityName })
	return out
}

// EconomicEvents returns events overlapping the lookahead window,
// ordered by start year.
func (t *Timeline) EconomicEvents(currentYear, lookahead int) []EconomicEvent {
	endYear := currentYear + lookahead
	var out []EconomicEvent
	for _, ev := range t.events {
		switch {
		case ev.StartYear >= currentYear && ev.StartYear <= endYear:
			out = append(out, ev)
		case ev.StartYear < currentYear && ev.EndYear >= currentYear:
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartYear < out[j].StartYear })
	return out
}

// Snapshot returns the raw economic indicators for one year, or nil.
func (t *Timeline) Snapshot(year int) map[string]float64 {
	return t.econ[year]
}

// SafeHavens lists cities the event script never puts at war.
func (t *Timeline) SafeHavens() []SafeHaven {
	return t.havens
}

// CityRisk grades one city's conflict exposure over the lookahead
// window. Unknown cities and safe havens come back SAFE.
func (t *Timeline) CityRisk(cityID, currentYear, lookahead int) CityRisk {
	info, known := t.cityNames[cityID]
	if !known {
		for _, sh := range t.havens {
			if sh.ID == cityID {
				return CityRisk{
					CityID: cityID, CityName: sh.Name, Country: sh.Country,
					Level: RiskSafe, YearsUntilConflict: 999,
				}
			}
		}
		return CityRisk{
			CityID: cityID, CityName: fmt.Sprintf("Unknown_%d", cityID),
			Country: "Unknown", Level: RiskSafe, YearsUntilConflict: 999,
		}
	}

	var upcoming []WarPeriod
	for _, wp := range t.warsByCity[cityID] {
		if wp.EndYear >= currentYear && wp.StartYear <= currentYear+lookahead {
			upcoming = append(upcoming, wp)
		}
	}
	if len(upcoming) == 0 {
		return CityRisk{
			CityID: cityID, CityName: info.Name, Country: info.Country,
			Level: RiskSafe, YearsUntilConflict: 999,
		}
	}

	// Mid-year estimate for distance to the next conflict.
	currentTime := float64(currentYear) + 0.5
	yearsUntil := 0.0
	haveFuture := false
	for _, wp := range upcoming {
		if wp.StartYear < currentYear {
			continue
		}
		d := float64(wp.StartYear) + float64(wp.StartMonth)/12 - currentTime
		if !haveFuture || d < yearsUntil {
			yearsUntil = d
			haveFuture = true
		}
	}

	active := false
	for _, wp := range upcoming {
		if wp.StartYear*12+wp.StartMonth <= currentYear*12+6 &&
			wp.EndYear*12+wp.EndMonth >= currentYear*12+1 {
			active = true
			break
		}
	}

	var level RiskLevel
	switch {
	case active:
		level = RiskCritical
		yearsUntil = 0
	case yearsUntil <= 2:
		level = RiskHigh
	case yearsUntil <= 5:
		level = RiskMedium
	case yearsUntil <= 10:
		level = RiskLow
	default:
		level = RiskSafe
	}
	if yearsUntil < 0 {
		yearsUntil = 0
	}
	return CityRisk{
		CityID: cityID, CityName: info.Name, Country: info.Country,
		UpcomingWars: upcoming, Level: level, YearsUntilConflict: yearsUntil,
	}
}

// AssetRisks analyzes every city the player holds assets in, worst
// risk first. Duplicate city IDs are collapsed.
func (t *Timeline) AssetRisks(cityIDs []int, currentYear, lookahead int) []CityRisk {
	seen := make(map[int]bool)
	var out []CityRisk
	for _, cid := range cityIDs {
		if seen[cid] {
			continue
		}
		seen[cid] = true
		out = append(out, t.CityRisk(cid, currentYear, lookahead))
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if riskOrder[a.Level] != riskOrder[b.Level] {
			return riskOrder[a.Level] < riskOrder[b.Level]
		}
		return a.YearsUntilConflict < b.YearsUntilConflict
	})
	return out
}
