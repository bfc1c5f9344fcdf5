package design

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplacement(t *testing.T) {
	// 80mm bore, 90mm stroke, 4 cylinders: 0.7854*64*9*4 = 1809.6 -> 1810.
	assert.Equal(t, 1810, Displacement(80, 90, 4))
	assert.Equal(t, 0, Displacement(0, 90, 4))
}

func TestHP(t *testing.T) {
	// 200Nm at 5252rpm is exactly 200hp by the conversion constant.
	assert.Equal(t, 200, HP(200, 5252))
	assert.Equal(t, 0, HP(200, 0))
}

func TestSimulateBoreScalesTorqueWithDisplacement(t *testing.T) {
	e := Engine{BoreMM: 80, StrokeMM: 90, Cylinders: 4, TorqueNm: 150, RPM: 4000, HP: HP(150, 4000)}
	sim := SimulateBore(e, 88)
	assert.Empty(t, sim.Err)
	assert.Greater(t, sim.NewCC, sim.OldCC)
	assert.Greater(t, sim.EstTorque, sim.OldTorque)
	assert.Greater(t, sim.EstHP, sim.OldHP)
	// More displacement burns more fuel; the sign is a consumption
	// increase. 80->88mm on 80x90x4: 1810cc->2190cc, +17.4%.
	assert.InDelta(t, 17.35, sim.FuelImpactPct, 0.01)
}

func TestSimulateBoreZeroDisplacement(t *testing.T) {
	sim := SimulateBore(Engine{}, 88)
	assert.NotEmpty(t, sim.Err)
}

func TestSimulateStrokeTradesRPMForTorque(t *testing.T) {
	e := Engine{BoreMM: 80, StrokeMM: 90, Cylinders: 4, TorqueNm: 150, RPM: 4000, HP: HP(150, 4000)}
	sim := SimulateStroke(e, 100)
	assert.Empty(t, sim.Err)
	assert.Greater(t, sim.EstTorque, sim.OldTorque)
	assert.Less(t, sim.EstRPM, sim.OldRPM)
}

func TestStalenessFreshDesign(t *testing.T) {
	s := CalcStaleness(1930, 1929, 1929, 1929, 1929)
	assert.Equal(t, UrgencyNone, s.Urgency)
	assert.Equal(t, 1.0, s.BuyerDivisor)
	assert.Equal(t, 100.0, s.PercentRetained)
}

func TestStalenessComponentThresholds(t *testing.T) {
	// 13-year-old components sit just past the 12-year grace window.
	s := CalcStaleness(1930, 1930, 1917, 1917, 1917)
	for _, c := range s.Components {
		if c.Name == "vehicle" {
			assert.Equal(t, 0.0, c.Penalty)
			continue
		}
		assert.InDelta(t, 0.05, c.Penalty, 1e-9, c.Name)
	}
	assert.Equal(t, UrgencyLow, s.Urgency)
}

func TestStalenessVehicleCurve(t *testing.T) {
	// A 6-year-old body crosses the (age+4) > 9 threshold.
	s := CalcStaleness(1930, 1924, 1930, 1930, 1930)
	assert.Greater(t, s.Components[0].Penalty, 0.0)
	assert.Greater(t, s.BuyerDivisor, 1.0)
}

func TestStalenessCriticalAncientFleet(t *testing.T) {
	s := CalcStaleness(1950, 1930, 1930, 1930, 1930)
	assert.Equal(t, UrgencyCritical, s.Urgency)
	assert.Less(t, s.PercentRetained, 50.0)
}

func TestEstimateModCost(t *testing.T) {
	assert.Equal(t, 15, EstimateModCost(100000, false, false, false).TotalPercent)
	assert.Equal(t, 20, EstimateModCost(100000, false, true, false).TotalPercent)
	assert.Equal(t, 25, EstimateModCost(100000, true, false, false).TotalPercent)
	assert.Equal(t, 25, EstimateModCost(100000, true, true, false).TotalPercent)

	chassis := EstimateModCost(100000, true, true, true)
	assert.Equal(t, 100, chassis.TotalPercent)
	assert.Equal(t, 100000, chassis.EstimatedCost)
}

func TestCheckTorque(t *testing.T) {
	over := CheckTorque(300, 250)
	assert.False(t, over.Compatible)
	assert.Equal(t, 50, over.OverflowNm)
	assert.Contains(t, over.Warning, "exceeds")

	ok := CheckTorque(200, 250)
	assert.True(t, ok.Compatible)
	assert.Equal(t, 50, ok.HeadroomNm)
	assert.Empty(t, ok.Warning)

	unknown := CheckTorque(200, 0)
	assert.True(t, unknown.Compatible)
	assert.NotEmpty(t, unknown.Warning)
}

func TestCompareRatings(t *testing.T) {
	deltas := CompareRatings(
		[]string{"power", "reliability", "missing"},
		map[string]float64{"power": 80, "reliability": 70},
		map[string]float64{"power": 80, "reliability": 62},
	)
	assert.Len(t, deltas, 2)
	assert.False(t, deltas[0].Degraded)
	assert.True(t, deltas[1].Degraded)
	assert.Equal(t, -8.0, deltas[1].Delta)
}

func TestTopSpeedAndAcceleration(t *testing.T) {
	v := TopSpeed(100, 0.45, 25)
	assert.Greater(t, v, 100.0)
	assert.Less(t, v, 300.0)
	assert.Equal(t, 0.0, TopSpeed(0, 0.45, 25))

	a := Acceleration(200, 1200, 3.5, 4)
	assert.Greater(t, a, 0.0)
	assert.Equal(t, 0.0, Acceleration(0, 1200, 3.5, 4))
}

func TestReportRender(t *testing.T) {
	st := CalcStaleness(1950, 1930, 1930, 1930, 1930)
	mc := EstimateModCost(80000, true, false, false)
	r := Report{
		Vehicle:   &Vehicle{Name: "Comet", Trim: "Deluxe", Type: "Sedan", YearBuilt: 1930, HP: 60, TorqueNm: 120, RPM: 3600, WeightKg: 1100, TopSpeed: 120},
		Staleness: &st,
		ModCost:   &mc,
	}
	out := r.Render()
	assert.Contains(t, out, "Comet Deluxe")
	assert.Contains(t, out, "Urgency: critical")
	assert.Contains(t, out, "Total: 25%")
	assert.True(t, strings.HasPrefix(out, "## Vehicle"))
}

func TestReportRenderEmpty(t *testing.T) {
	assert.Equal(t, "(no computed results)", Report{}.Render())
}
