package agent

// Canned SQL used by the advisor branches. Everything here is
// read-only and filtered to the player company via the PlayerInfo
// key-value lookup.

const playerCompanySubquery = `SELECT Player_Data FROM PlayerInfo WHERE Player_Varible = 'Company_ID'`

// designVehicleSQL joins every active player vehicle with its engine,
// chassis, and gearbox, pulling both static (design-time) and current
// ratings for the drift comparison.
const designVehicleSQL = `SELECT
    c.Car_ID, c.Name, c.Trim, c.CarType, c.YearBuilt AS car_year,
    c.designcost AS car_designcost, c.ModAmount, c.ParentCarID,
    c.Engine_ID, c.Chassis_ID, c.Gearbox_ID,
    c.Spec_HP, c.Spec_Torque, c.Spec_RPM, c.Spec_Weight,
    c.Spec_TopSpeed, c.Spec_Fuel,
    c.Spec_AccellerationSix, c.Spec_AccellerationHund,
    c.Rating_Performance, c.Rating_Drivability, c.Rating_Luxury, c.Rating_Safety,
    e.bore, e.stroke, e.CylinderNumberForCalculations AS cylinders,
    e.hp AS engine_hp, e.torque AS engine_torque, e.rpm AS engine_rpm,
    e.weight AS engine_weight, e.size_cc, e.fuelmilage,
    e.yearbuilt AS engine_year, e.ModYear AS engine_mod_year, e.designcost AS engine_designcost,
    e.StaticenginePower, e.StaticengineFuelEco, e.StaticengineReliability, e.StaticRating_Smooth,
    e.enginePower, e.engineFuelEco, e.engineReliability, e.Rating_Smooth,
    ch.ChassisWeightKG, ch.ChassisLengthCM, ch.ChassisWidthCM,
    ch.YearBuilt AS chassis_year, ch.ModYear AS chassis_mod_year, ch.Design_Cost AS chassis_designcost,
    ch.StaticOverallStrength, ch.StaticOverallComfort, ch.StaticOverallPerformance, ch.StaticOverallDependabilty,
    ch.Overall_Strength, ch.Overall_Comfort, ch.Overall_Performance, ch.Overall_Dependabilty,
    g.Gears, g.GearboxType, g.LoRatio, g.HiRatio, g.MaxTorqueInput, g.Weight AS gearbox_weight,
    g.YearBuilt AS gearbox_year, g.ModYear AS gearbox_mod_year, g.Design_Cost AS gearbox_designcost
FROM CarInfo c
JOIN EngineInfo e ON c.Engine_ID = e.Engine_ID
JOIN ChassisInfo ch ON c.Chassis_ID = ch.Chassis_ID
JOIN GearboxInfo g ON c.Gearbox_ID = g.Gearbox_ID
WHERE c.Company_ID = (` + playerCompanySubquery + `)
  AND c.Status = 0
LIMIT 20`

const techSkillSQL = `SELECT SKILL_RND FROM CompanyList
WHERE ID = (` + playerCompanySubquery + `)`

// availableComponentsSQL lists every component unlocked at the given
// skill level and year across the nine component libraries. Gearboxes
// pair with gear sets, so that category is a cross join.
// Placeholders: skill, year (both repeated).
const availableComponentsSQL = `SELECT 'Gearbox' AS category, gc.Name, gc.SkillReq, gc.Year,
       gg.Name AS gears_name, gg.Gears, gg.SkillReq AS gears_skill, gg.Year AS gears_year
FROM GearboxComponents gc
CROSS JOIN GearsComponents gg
WHERE gc.SkillReq <= %[1]d AND gc.Year <= %[2]d
  AND gg.SkillReq <= %[1]d AND gg.Year <= %[2]d
  AND (gc.Death IS NULL OR gc.Death > %[2]d)
  AND (gg.Death IS NULL OR gg.Death > %[2]d)

UNION ALL

SELECT 'Layout' AS category, Name, SkillReq, Year, NULL, NULL, NULL, NULL
FROM LayoutComponents WHERE SkillReq <= %[1]d AND Year <= %[2]d AND (Death IS NULL OR Death > %[2]d)

UNION ALL

SELECT 'Induction' AS category, Name, SkillReq, Year, NULL, NULL, NULL, NULL
FROM InductionComponents WHERE SkillReq <= %[1]d AND Year <= %[2]d AND (Death IS NULL OR Death > %[2]d)

UNION ALL

SELECT 'Fuel' AS category, Name, SkillReq, Year, NULL, NULL, NULL, NULL
FROM FuelComponents WHERE SkillReq <= %[1]d AND Year <= %[2]d AND (Death IS NULL OR Death > %[2]d)

UNION ALL

SELECT 'Drivetrain' AS category, Name, SkillReq, Year, NULL, NULL, NULL, NULL
FROM DrivetrainComponents WHERE SkillReq <= %[1]d AND Year <= %[2]d AND (Death IS NULL OR Death > %[2]d)

UNION ALL

SELECT 'Suspension' AS category, Name, SkillReq, Year, NULL, NULL, NULL, NULL
FROM SuspensionComponents WHERE SkillReq <= %[1]d AND Year <= %[2]d AND (Death IS NULL OR Death > %[2]d)

UNION ALL

SELECT 'Valve' AS category, Name, SkillReq, Year, NULL, NULL, NULL, NULL
FROM ValveComponents WHERE SkillReq <= %[1]d AND Year <= %[2]d AND (Death IS NULL OR Death > %[2]d)

UNION ALL

SELECT 'Cylinder' AS category, Name, SkillReq, Year, NULL, NULL, NULL, NULL
FROM CylinderComponents WHERE SkillReq <= %[1]d AND Year <= %[2]d AND (Death IS NULL OR Death > %[2]d)`

// playerCityIDsSQL collects every city where the player has a factory
// or moved units this month.
const playerCityIDsSQL = `SELECT DISTINCT City_ID FROM FactoryInfo
WHERE Company_ID = (` + playerCompanySubquery + `)
UNION
SELECT DISTINCT City_ID FROM CarDistro
WHERE Company_ID = (` + playerCompanySubquery + `) AND Sold_This_Month > 0`
