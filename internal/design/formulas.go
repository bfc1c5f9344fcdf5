// Package design holds the deterministic engineering math for vehicle,
// engine, chassis, and gearbox designs: displacement, horsepower,
// staleness penalties, modification costs, and what-if simulations.
// None of it touches the database or a model; advisors feed it numbers
// and hand the formatted results to the LLM as ground truth.
package design

import (
	"fmt"
	"math"
)

// Engine is the subset of engine design data the formulas use.
type Engine struct {
	ID        int
	Name      string
	BoreMM    float64
	StrokeMM  float64
	Cylinders int
	HP        int
	TorqueNm  int
	RPM       int
	YearBuilt int
}

// Vehicle is the subset of a car design the advisor reports on.
type Vehicle struct {
	ID         int
	Name       string
	Trim       string
	Type       string
	YearBuilt  int
	DesignCost int
	HP         int
	TorqueNm   int
	RPM        int
	WeightKg   int
	TopSpeed   int
}

// Displacement computes engine capacity in cc from bore and stroke in
// millimeters: 0.7854 * (bore/10)^2 * (stroke/10) * cylinders.
func Displacement(boreMM, strokeMM float64, cylinders int) int {
	boreCM := boreMM / 10.0
	strokeCM := strokeMM / 10.0
	cc := 0.7854 * boreCM * boreCM * strokeCM * float64(cylinders)
	return int(math.Round(cc))
}

// HP derives horsepower from torque and RPM: torque * rpm / 5252.
func HP(torqueNm, rpm int) int {
	if rpm <= 0 {
		return 0
	}
	return int(math.Round(float64(torqueNm) * float64(rpm) / 5252.0))
}

// BoreSim is the predicted effect of a bore change.
type BoreSim struct {
	OldBore, NewBore   float64
	OldCC, NewCC       int
	OldTorque, EstTorque int
	OldHP, EstHP       int
	FuelImpactPct      float64 // positive means higher consumption
	Err                string
}

// SimulateBore predicts the displacement, torque, and HP shift from a
// bore change. Torque scales with displacement; fuel economy moves
// inversely.
func SimulateBore(e Engine, newBore float64) BoreSim {
	oldCC := Displacement(e.BoreMM, e.StrokeMM, e.Cylinders)
	newCC := Displacement(newBore, e.StrokeMM, e.Cylinders)
	if oldCC <= 0 {
		return BoreSim{Err: "current displacement is zero; check bore, stroke, and cylinder data"}
	}

	ratio := float64(newCC) / float64(oldCC)
	estTorque := int(math.Round(float64(e.TorqueNm) * ratio))
	return BoreSim{
		OldBore:       e.BoreMM,
		NewBore:       newBore,
		OldCC:         oldCC,
		NewCC:         newCC,
		OldTorque:     e.TorqueNm,
		EstTorque:     estTorque,
		OldHP:         e.HP,
		EstHP:         HP(estTorque, e.RPM),
		FuelImpactPct: (1 - 1/ratio) * 100,
	}
}

// StrokeSim is the predicted effect of a stroke change. Unlike bore,
// stroke trades torque against RPM.
type StrokeSim struct {
	OldStroke, NewStroke float64
	OldCC, NewCC         int
	OldTorque, EstTorque int
	OldRPM, EstRPM       int
	OldHP, EstHP         int
	Err                  string
}

// SimulateStroke predicts the effect of a stroke change: displacement
// and torque rise with stroke while RPM falls in proportion to piston
// travel, so the HP outcome depends on which effect wins.
func SimulateStroke(e Engine, newStroke float64) StrokeSim {
	oldCC := Displacement(e.BoreMM, e.StrokeMM, e.Cylinders)
	newCC := Displacement(e.BoreMM, newStroke, e.Cylinders)
	if oldCC <= 0 || e.StrokeMM <= 0 {
		return StrokeSim{Err: "current displacement or stroke is zero; check engine data"}
	}

	ccRatio := float64(newCC) / float64(oldCC)
	strokeRatio := newStroke / e.StrokeMM
	estTorque := int(math.Round(float64(e.TorqueNm) * ccRatio))
	estRPM := int(math.Round(float64(e.RPM) / strokeRatio))
	return StrokeSim{
		OldStroke: e.StrokeMM,
		NewStroke: newStroke,
		OldCC:     oldCC,
		NewCC:     newCC,
		OldTorque: e.TorqueNm,
		EstTorque: estTorque,
		OldRPM:    e.RPM,
		EstRPM:    estRPM,
		OldHP:     e.HP,
		EstHP:     HP(estTorque, estRPM),
	}
}

// TopSpeed estimates top speed in km/h from power against drag.
// Frontal area arrives in the game's internal square-foot unit.
func TopSpeed(hp int, dragCoeff, areaSqFt float64) float64 {
	if hp <= 0 || dragCoeff <= 0 || areaSqFt <= 0 {
		return 0
	}
	powerW := float64(hp) * 745.7
	denom := dragCoeff * 0.5 * 1.225 * areaSqFt * 0.0929
	if denom <= 0 {
		return 0
	}
	vMS := math.Cbrt(powerW / denom)
	return math.Round(vMS*3.6*10) / 10
}

// Acceleration estimates the 0-100 km/h time in seconds from torque
// through the first gear.
func Acceleration(torqueNm int, weightKg, loRatio float64, gears int) float64 {
	if weightKg <= 0 || loRatio <= 0 || torqueNm <= 0 {
		return 0
	}
	gearFactor := math.Pow(float64(max(gears, 1)), 0.15)
	force := float64(torqueNm) * loRatio * gearFactor / weightKg
	if force <= 0 {
		return 0
	}
	return math.Round(28.0/force*10) / 10
}

// Urgency grades how badly a design needs replacement.
type Urgency string

const (
	UrgencyNone     Urgency = "none"
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

// ComponentAge is one component's contribution to staleness.
type ComponentAge struct {
	Name    string
	Age     int
	Penalty float64
}

// Staleness is the combined aging analysis for a vehicle and its
// components.
type Staleness struct {
	CollectiveAge   float64
	BuyerDivisor    float64
	PercentRetained float64
	Components      []ComponentAge
	Urgency         Urgency
}

// componentStaleness ages an engine, chassis, or gearbox: free until
// 12 years, then 0.05/year, with a further 0.25/year past 15.
func componentStaleness(age int) float64 {
	p := 0.0
	if age > 12 {
		p += float64(age-12) * 0.05
	}
	if age > 15 {
		p += float64(age-15) * 0.25
	}
	return p
}

// vehicleStaleness ages the car body itself: ((age+4)/10)^1.6 once
// age+4 exceeds 9, zero before.
func vehicleStaleness(age int) float64 {
	effective := age + 4
	if effective <= 9 {
		return 0
	}
	return math.Pow(float64(effective)/10.0, 1.6)
}

// CalcStaleness computes the buyer rating divisor for a vehicle from
// the design years of the car and its three major components. Buyers
// divide their perceived ratings by collectiveAge^1.2 once any penalty
// accrues.
func CalcStaleness(currentYear, carYear, engineYear, chassisYear, gearboxYear int) Staleness {
	carAge := currentYear - carYear
	engineAge := currentYear - engineYear
	chassisAge := currentYear - chassisYear
	gearboxAge := currentYear - gearboxYear

	comps := []ComponentAge{
		{Name: "vehicle", Age: carAge, Penalty: vehicleStaleness(carAge)},
		{Name: "engine", Age: engineAge, Penalty: componentStaleness(engineAge)},
		{Name: "chassis", Age: chassisAge, Penalty: componentStaleness(chassisAge)},
		{Name: "gearbox", Age: gearboxAge, Penalty: componentStaleness(gearboxAge)},
	}

	collective := 1.0
	for _, c := range comps {
		collective += c.Penalty
	}

	divisor := 1.0
	if collective > 1.0 {
		divisor = math.Pow(collective, 1.2)
	}

	s := Staleness{
		CollectiveAge:   roundTo(collective, 3),
		BuyerDivisor:    roundTo(divisor, 3),
		PercentRetained: roundTo(100.0/divisor, 1),
		Components:      comps,
	}
	switch {
	case divisor >= 3.0:
		s.Urgency = UrgencyCritical
	case divisor >= 2.0:
		s.Urgency = UrgencyHigh
	case divisor >= 1.5:
		s.Urgency = UrgencyMedium
	case divisor > 1.0:
		s.Urgency = UrgencyLow
	default:
		s.Urgency = UrgencyNone
	}
	return s
}

// ModCost estimates the cost of a New Generation refresh as a share of
// the original design cost.
type ModCost struct {
	TotalPercent  int
	EstimatedCost int
	Breakdown     string
}

// EstimateModCost applies the refresh cost schedule: 15% base, +5% for
// a gearbox swap, +10% for an engine swap (which drags the gearbox
// along), and a flat 100% when the chassis changes.
func EstimateModCost(designCost int, engineChange, gearboxChange, chassisChange bool) ModCost {
	if chassisChange {
		return ModCost{
			TotalPercent:  100,
			EstimatedCost: designCost,
			Breakdown: fmt.Sprintf(
				"Chassis change costs 100%% (effectively a new design).\nEstimated cost: $%d", designCost),
		}
	}

	total := 15
	detail := "Base new generation: 15%"
	switch {
	case engineChange && gearboxChange:
		total += 10
		detail += "\nEngine + gearbox change: +10%"
	case engineChange:
		total += 10
		detail += "\nEngine change: +5% (gearbox automatically included, +5%)"
	case gearboxChange:
		total += 5
		detail += "\nGearbox change: +5%"
	}

	cost := int(math.Round(float64(designCost) * float64(total) / 100))
	return ModCost{
		TotalPercent:  total,
		EstimatedCost: cost,
		Breakdown:     fmt.Sprintf("%s\nTotal: %d%% -> estimated cost: $%d", detail, total, cost),
	}
}

// RatingDelta is one rating's drift between design time and now.
type RatingDelta struct {
	Name     string
	Static   float64
	Current  float64
	Delta    float64
	Degraded bool
}

// CompareRatings pairs static (design-time) ratings with current ones;
// a negative delta is aging-induced decay. Keys missing from current
// are skipped. Output follows the order of names.
func CompareRatings(names []string, static, current map[string]float64) []RatingDelta {
	var out []RatingDelta
	for _, name := range names {
		s, okS := static[name]
		c, okC := current[name]
		if !okS || !okC {
			continue
		}
		d := roundTo(c-s, 2)
		out = append(out, RatingDelta{
			Name:     name,
			Static:   s,
			Current:  c,
			Delta:    d,
			Degraded: d < 0,
		})
	}
	return out
}

// TorqueCheck reports whether an engine overloads its gearbox.
type TorqueCheck struct {
	Compatible       bool
	EngineTorque     int
	GearboxMaxTorque int
	OverflowNm       int
	OverflowPercent  float64
	HeadroomNm       int
	HeadroomPercent  float64
	Warning          string
}

// CheckTorque flags engine torque exceeding the gearbox's rated input,
// which the game punishes with quality and reliability penalties.
func CheckTorque(engineTorque, gearboxMax int) TorqueCheck {
	if gearboxMax <= 0 {
		return TorqueCheck{
			Compatible:       true,
			EngineTorque:     engineTorque,
			GearboxMaxTorque: gearboxMax,
			Warning:          "gearbox max torque unknown (0); compatibility cannot be judged",
		}
	}

	overflow := engineTorque - gearboxMax
	if overflow > 0 {
		pct := roundTo(float64(overflow)/float64(gearboxMax)*100, 1)
		return TorqueCheck{
			Compatible:       false,
			EngineTorque:     engineTorque,
			GearboxMaxTorque: gearboxMax,
			OverflowNm:       overflow,
			OverflowPercent:  pct,
			Warning: fmt.Sprintf(
				"engine torque (%dNm) exceeds gearbox max (%dNm) by %.1f%%; quality and reliability ratings take a penalty",
				engineTorque, gearboxMax, pct),
		}
	}

	headroom := -overflow
	return TorqueCheck{
		Compatible:       true,
		EngineTorque:     engineTorque,
		GearboxMaxTorque: gearboxMax,
		HeadroomNm:       headroom,
		HeadroomPercent:  roundTo(float64(headroom)/float64(gearboxMax)*100, 1),
	}
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
