package timeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = `{
  "war_timeline": {
    "101": {
      "name": "Berlin",
      "country": "Germany",
      "periods": [
        [1914, 8, 1918, 11, "WAR"],
        [1939, 9, 1945, 5, "TOTAL_WAR"]
      ]
    },
    "102": {
      "name": "Paris",
      "country": "France",
      "periods": [
        [1914, 8, 1918, 11, "LIMITED"]
      ]
    }
  },
  "economic_timeline": {
    "1928": {"buyrate": 1.02, "gas": 1.0, "interest": 1.02, "stockrate": 1.05},
    "1929": {"buyrate": 0.85, "gas": 1.0, "interest": 1.02, "stockrate": 0.60},
    "1930": {"buyrate": 0.70, "gas": 1.0, "interest": 1.08, "stockrate": 0.55},
    "1931": {"buyrate": 0.95, "gas": 1.0, "interest": 1.02, "stockrate": 0.95}
  },
  "safe_havens": [
    {"id": 200, "name": "Zurich", "country": "Switzerland"}
  ]
}`

func load(t *testing.T) *Timeline {
	t.Helper()
	path := filepath.Join(t.TempDir(), "timeline.json")
	require.NoError(t, os.WriteFile(path, []byte(fixture), 0644))
	tl, err := Load(path)
	require.NoError(t, err)
	return tl
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestEconomicEventRuns(t *testing.T) {
	tl := load(t)
	events := tl.EconomicEvents(1928, DefaultLookahead)

	var downturn, crash, interest *EconomicEvent
	for i := range events {
		switch events[i].Type {
		case "downturn":
			downturn = &events[i]
		case "stock_crash":
			crash = &events[i]
		case "interest_spike":
			interest = &events[i]
		}
	}

	require.NotNil(t, downturn)
	assert.Equal(t, 1929, downturn.StartYear)
	assert.Equal(t, 1930, downturn.EndYear)
	assert.Equal(t, 0.70, downturn.PeakValue) // bottom, not first breach

	require.NotNil(t, crash)
	assert.Equal(t, 0.55, crash.PeakValue)

	require.NotNil(t, interest)
	assert.Equal(t, 1930, interest.StartYear)
	assert.Equal(t, 1930, interest.EndYear)
}

func TestUpcomingWarsIncludesOngoing(t *testing.T) {
	tl := load(t)

	// A war already in progress stays visible.
	wars := tl.UpcomingWars(1916, DefaultLookahead)
	require.Len(t, wars, 2)
	assert.Equal(t, "Berlin", wars[0].CityName) // name breaks the tie
	assert.Equal(t, "Paris", wars[1].CityName)

	// Far outside any window.
	assert.Empty(t, tl.UpcomingWars(1960, DefaultLookahead))
}

func TestActiveWars(t *testing.T) {
	tl := load(t)
	assert.Len(t, tl.ActiveWars(1916, 6), 2)
	assert.Len(t, tl.ActiveWars(1940, 1), 1)
	assert.Empty(t, tl.ActiveWars(1925, 1))
}

func TestCityRiskLevels(t *testing.T) {
	tl := load(t)

	assert.Equal(t, RiskCritical, tl.CityRisk(101, 1915, DefaultLookahead).Level)

	high := tl.CityRisk(101, 1938, DefaultLookahead)
	assert.Equal(t, RiskHigh, high.Level)
	assert.InDelta(t, 1.25, high.YearsUntilConflict, 0.01)

	assert.Equal(t, RiskMedium, tl.CityRisk(101, 1935, DefaultLookahead).Level)
	assert.Equal(t, RiskLow, tl.CityRisk(101, 1930, DefaultLookahead).Level)
	assert.Equal(t, RiskSafe, tl.CityRisk(101, 1950, DefaultLookahead).Level)
}

func TestCityRiskSafeHavenAndUnknown(t *testing.T) {
	tl := load(t)

	haven := tl.CityRisk(200, 1938, DefaultLookahead)
	assert.Equal(t, RiskSafe, haven.Level)
	assert.Equal(t, "Zurich", haven.CityName)

	unknown := tl.CityRisk(999, 1938, DefaultLookahead)
	assert.Equal(t, RiskSafe, unknown.Level)
	assert.Equal(t, "Unknown_999", unknown.CityName)
}

func TestAssetRisksSortedWorstFirst(t *testing.T) {
	tl := load(t)
	risks := tl.AssetRisks([]int{200, 101, 102, 101}, 1938, DefaultLookahead)

	require.Len(t, risks, 3) // duplicate 101 collapsed
	assert.Equal(t, "Berlin", risks[0].CityName)
	assert.Equal(t, RiskHigh, risks[0].Level)
	assert.Equal(t, RiskSafe, risks[len(risks)-1].Level)
}

func TestForecastSummary(t *testing.T) {
	tl := load(t)
	out := tl.ForecastSummary(1928, DefaultLookahead)

	assert.Contains(t, out, "EVENT FORECAST (Year 1928")
	assert.Contains(t, out, "demand downturn")
	assert.Contains(t, out, "Germany [1939-1945] TOTAL_WAR (starts 1939)")
	assert.Contains(t, out, "Zurich (Switzerland)")
}

func TestAssetRiskReport(t *testing.T) {
	tl := load(t)
	risks := tl.AssetRisks([]int{101, 200}, 1938, DefaultLookahead)
	out := AssetRiskReport(risks, 1938)

	assert.Contains(t, out, "AT-RISK LOCATIONS")
	assert.Contains(t, out, "Berlin (Germany): HIGH")
	assert.Contains(t, out, "Safe locations: Zurich")

	assert.Equal(t, "(no player asset locations known)", AssetRiskReport(nil, 1938))
}
