package agent

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"gearsight/internal/design"
	"gearsight/internal/gamedata"
	"gearsight/internal/graph"
	"gearsight/internal/llm"
	"gearsight/internal/memory"
	"gearsight/internal/savedb"
)

const (
	maxDesignContextRunes = 8000
	maxTechContextRunes   = 4000
)

func truncateRunes(s string, max int) string {
	if runes := []rune(s); len(runes) > max {
		return string(runes[:max]) + "\n...(truncated)"
	}
	return s
}

// designAdvisor collects the player's active vehicle designs, runs the
// deterministic engineering math over them, gathers the unlocked
// component library, and has the model synthesize advice from those
// numbers.
func (a *Agent) designAdvisor(ctx context.Context, s *gamedata.State) (graph.NodeKey, error) {
	currentYear := s.Year
	if currentYear == 0 {
		currentYear = 1900
	}

	rows, designContext := a.fetchVehicles(ctx)
	skillRND, techContext := a.fetchTechComponents(ctx, currentYear)
	calcResults := designReports(rows, currentYear)

	prompt := designAdvisorPrompt(
		s.Question, s.AnalystSummary, calcResults,
		truncateRunes(designContext, maxDesignContextRunes),
		skillRND, currentYear,
		truncateRunes(techContext, maxTechContextRunes))
	resp, err := a.llm.CompleteWithTemperature(ctx, prompt, tempAnalysis)
	if err != nil {
		return "", fmt.Errorf("design_advisor: %w", err)
	}

	s.FinalAnswer = llm.StripReasoning(resp)
	s.DesignCalc = calcResults
	s.DesignContext = designContext
	s.QuestionType = gamedata.QuestionDesign

	a.session.Put(memory.DomainVehicleDesign, calcResults)
	return graph.End, nil
}

// fetchVehicles runs the four-way design join. A query failure
// degrades to an inline note so the advisor can still answer from
// general mechanics knowledge.
func (a *Agent) fetchVehicles(ctx context.Context) (*savedb.Result, string) {
	res, err := a.db.Query(ctx, designVehicleSQL)
	if err != nil {
		return nil, fmt.Sprintf("(SQL error: %v)", err)
	}
	if res.Empty() {
		return res, "(no active player-owned vehicles)"
	}
	return res, res.Markdown(30)
}

// fetchTechComponents reads the player's design skill and lists every
// component combination unlocked at that skill and year.
func (a *Agent) fetchTechComponents(ctx context.Context, currentYear int) (int, string) {
	skillRND := 0
	if res, err := a.db.Query(ctx, techSkillSQL); err == nil && !res.Empty() {
		skillRND = res.Int(0, "SKILL_RND")
	}

	res, err := a.db.Query(ctx, fmt.Sprintf(availableComponentsSQL, skillRND, currentYear))
	if err != nil {
		return skillRND, fmt.Sprintf("(component availability lookup failed: %v)", err)
	}
	if res.Empty() {
		return skillRND, "(No components available at current skill/year)"
	}

	byCategory := make(map[string][]string)
	for i := range res.Rows {
		cat := res.Str(i, "category")
		var item string
		if cat == "Gearbox" {
			item = fmt.Sprintf("  - %s + %s (%dspeed) [Skill %d/%d, Year %d/%d]",
				res.Str(i, "Name"), res.Str(i, "gears_name"), res.Int(i, "Gears"),
				res.Int(i, "SkillReq"), res.Int(i, "gears_skill"),
				res.Int(i, "Year"), res.Int(i, "gears_year"))
		} else {
			item = fmt.Sprintf("  - %s [Skill %d, Year %d]",
				res.Str(i, "Name"), res.Int(i, "SkillReq"), res.Int(i, "Year"))
		}
		byCategory[cat] = append(byCategory[cat], item)
	}

	categories := make([]string, 0, len(byCategory))
	for cat := range byCategory {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	var parts []string
	for _, cat := range categories {
		items := dedupeSorted(byCategory[cat])
		parts = append(parts, fmt.Sprintf("**%s** (%d):\n%s",
			cat, len(items), strings.Join(items, "\n")))
	}
	return skillRND, strings.Join(parts, "\n\n")
}

func dedupeSorted(items []string) []string {
	sort.Strings(items)
	out := items[:0]
	var prev string
	for _, it := range items {
		if it != prev {
			out = append(out, it)
			prev = it
		}
	}
	return out
}

// effectiveYear prefers the modification year over the original build
// year when the design has been refreshed.
func effectiveYear(built, modded int) int {
	if modded > built {
		return modded
	}
	return built
}

// designReports runs the full formula suite over every joined vehicle
// row and renders one report per vehicle.
func designReports(res *savedb.Result, currentYear int) string {
	if res == nil || res.Empty() {
		return "(no vehicles to compute)"
	}

	var reports []string
	for i := range res.Rows {
		engine := design.Engine{
			ID:        res.Int(i, "Engine_ID"),
			BoreMM:    res.Float(i, "bore"),
			StrokeMM:  res.Float(i, "stroke"),
			Cylinders: res.Int(i, "cylinders"),
			HP:        res.Int(i, "engine_hp"),
			TorqueNm:  res.Int(i, "engine_torque"),
			RPM:       res.Int(i, "engine_rpm"),
			YearBuilt: res.Int(i, "engine_year"),
		}
		vehicle := design.Vehicle{
			ID:         res.Int(i, "Car_ID"),
			Name:       res.Str(i, "Name"),
			Trim:       res.Str(i, "Trim"),
			Type:       res.Str(i, "CarType"),
			YearBuilt:  res.Int(i, "car_year"),
			DesignCost: res.Int(i, "car_designcost"),
			HP:         res.Int(i, "Spec_HP"),
			TorqueNm:   res.Int(i, "Spec_Torque"),
			RPM:        res.Int(i, "Spec_RPM"),
			WeightKg:   res.Int(i, "Spec_Weight"),
			TopSpeed:   res.Int(i, "Spec_TopSpeed"),
		}

		staleness := design.CalcStaleness(
			currentYear,
			vehicle.YearBuilt,
			effectiveYear(engine.YearBuilt, res.Int(i, "engine_mod_year")),
			effectiveYear(res.Int(i, "chassis_year"), res.Int(i, "chassis_mod_year")),
			effectiveYear(res.Int(i, "gearbox_year"), res.Int(i, "gearbox_mod_year")),
		)

		base := design.EstimateModCost(vehicle.DesignCost, false, false, false)
		withEngine := design.EstimateModCost(vehicle.DesignCost, true, false, false)
		withGearbox := design.EstimateModCost(vehicle.DesignCost, false, true, false)
		withChassis := design.EstimateModCost(vehicle.DesignCost, false, false, true)
		modCost := design.ModCost{
			Breakdown: fmt.Sprintf(
				"Base New Gen: $%d (%d%%)\n+ Engine change: $%d (%d%%)\n+ Gearbox only: $%d (%d%%)\n+ Chassis change: $%d (%d%%)",
				base.EstimatedCost, base.TotalPercent,
				withEngine.EstimatedCost, withEngine.TotalPercent,
				withGearbox.EstimatedCost, withGearbox.TotalPercent,
				withChassis.EstimatedCost, withChassis.TotalPercent),
		}

		torque := design.CheckTorque(engine.TorqueNm, res.Int(i, "MaxTorqueInput"))

		ratingNames := []string{"Power", "FuelEco", "Reliability", "Smooth",
			"Strength", "Comfort", "Performance", "Dependability"}
		static := map[string]float64{
			"Power":         res.Float(i, "StaticenginePower"),
			"FuelEco":       res.Float(i, "StaticengineFuelEco"),
			"Reliability":   res.Float(i, "StaticengineReliability"),
			"Smooth":        res.Float(i, "StaticRating_Smooth"),
			"Strength":      res.Float(i, "StaticOverallStrength"),
			"Comfort":       res.Float(i, "StaticOverallComfort"),
			"Performance":   res.Float(i, "StaticOverallPerformance"),
			"Dependability": res.Float(i, "StaticOverallDependabilty"),
		}
		current := map[string]float64{
			"Power":         res.Float(i, "enginePower"),
			"FuelEco":       res.Float(i, "engineFuelEco"),
			"Reliability":   res.Float(i, "engineReliability"),
			"Smooth":        res.Float(i, "Rating_Smooth"),
			"Strength":      res.Float(i, "Overall_Strength"),
			"Comfort":       res.Float(i, "Overall_Comfort"),
			"Performance":   res.Float(i, "Overall_Performance"),
			"Dependability": res.Float(i, "Overall_Dependabilty"),
		}
		ratings := design.CompareRatings(ratingNames, static, current)

		report := design.Report{
			Vehicle:   &vehicle,
			Staleness: &staleness,
			ModCost:   &modCost,
			Torque:    &torque,
			Ratings:   ratings,
		}
		if engine.BoreMM > 0 {
			sim := design.SimulateBore(engine, engine.BoreMM+5)
			report.Bore = &sim
		}

		reports = append(reports, fmt.Sprintf("--- %s %s (ID: %d) ---\n%s",
			vehicle.Name, vehicle.Trim, vehicle.ID, report.Render()))
	}
	return strings.Join(reports, "\n\n")
}
