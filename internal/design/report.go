package design

import (
	"fmt"
	"strings"
)

// Report bundles everything the advisor computed for one vehicle.
// Nil or zero sections are omitted from the rendering.
type Report struct {
	Vehicle   *Vehicle
	Staleness *Staleness
	ModCost   *ModCost
	Torque    *TorqueCheck
	Ratings   []RatingDelta
	Bore      *BoreSim
	Stroke    *StrokeSim
}

// Render formats the computed results as structured text for a model
// prompt. The numbers here are authoritative; the model is told to
// interpret them, not recompute them.
func (r Report) Render() string {
	var sections []string

	if v := r.Vehicle; v != nil {
		sections = append(sections, fmt.Sprintf(
			"## Vehicle\n- Model: %s %s\n- Type: %s\n- Designed: %d\n- HP: %d, Torque: %dNm, RPM: %d\n- Weight: %dkg, Top speed: %dkm/h",
			v.Name, v.Trim, v.Type, v.YearBuilt, v.HP, v.TorqueNm, v.RPM, v.WeightKg, v.TopSpeed))
	}

	if s := r.Staleness; s != nil {
		var b strings.Builder
		fmt.Fprintf(&b, "## Staleness\n- Collective age factor: %g\n- Buyer rating divisor: %g\n- Ratings retained: %g%%\n- Urgency: %s",
			s.CollectiveAge, s.BuyerDivisor, s.PercentRetained, s.Urgency)
		for _, c := range s.Components {
			fmt.Fprintf(&b, "\n  - %s: %d years old (penalty %.3f)", c.Name, c.Age, c.Penalty)
		}
		sections = append(sections, b.String())
	}

	if m := r.ModCost; m != nil {
		sections = append(sections, "## Modification cost estimate\n"+m.Breakdown)
	}

	if t := r.Torque; t != nil {
		if t.Warning != "" {
			sections = append(sections, "## Torque compatibility\n- "+t.Warning)
		} else {
			sections = append(sections, fmt.Sprintf(
				"## Torque compatibility\n- OK: engine %dNm / gearbox max %dNm (%.1f%% headroom)",
				t.EngineTorque, t.GearboxMaxTorque, t.HeadroomPercent))
		}
	}

	if len(r.Ratings) > 0 {
		lines := []string{"## Rating drift (static -> current)"}
		for _, d := range r.Ratings {
			mark := "steady"
			if d.Degraded {
				mark = "degraded"
			} else if d.Delta > 0 {
				mark = "improved"
			}
			lines = append(lines, fmt.Sprintf("  - %s: %g -> %g (%+.1f, %s)", d.Name, d.Static, d.Current, d.Delta, mark))
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	if b := r.Bore; b != nil {
		if b.Err != "" {
			sections = append(sections, "## Bore change simulation\n- "+b.Err)
		} else {
			sections = append(sections, fmt.Sprintf(
				"## Bore change simulation\n- Bore: %gmm -> %gmm\n- Displacement: %dcc -> %dcc (%+dcc)\n- Torque: %dNm -> %dNm (%+dNm)\n- HP: %d -> %d (%+d)\n- Fuel consumption change: %+.1f%%",
				b.OldBore, b.NewBore, b.OldCC, b.NewCC, b.NewCC-b.OldCC,
				b.OldTorque, b.EstTorque, b.EstTorque-b.OldTorque,
				b.OldHP, b.EstHP, b.EstHP-b.OldHP, b.FuelImpactPct))
		}
	}

	if s := r.Stroke; s != nil {
		if s.Err != "" {
			sections = append(sections, "## Stroke change simulation\n- "+s.Err)
		} else {
			sections = append(sections, fmt.Sprintf(
				"## Stroke change simulation\n- Stroke: %gmm -> %gmm\n- Displacement: %dcc -> %dcc (%+dcc)\n- Torque: %dNm -> %dNm (%+dNm)\n- RPM: %d -> %d (%+d)\n- HP: %d -> %d (%+d)\n- More stroke trades RPM for torque; the HP outcome depends on which effect dominates.",
				s.OldStroke, s.NewStroke, s.OldCC, s.NewCC, s.NewCC-s.OldCC,
				s.OldTorque, s.EstTorque, s.EstTorque-s.OldTorque,
				s.OldRPM, s.EstRPM, s.EstRPM-s.OldRPM,
				s.OldHP, s.EstHP, s.EstHP-s.OldHP))
		}
	}

	if len(sections) == 0 {
		return "(no computed results)"
	}
	return strings.Join(sections, "\n\n")
}
