package reference

import "github.com/muhammadawaislaal/go_lab_analysis/internal/core/domain"

func ptr(v float64) *float64 { return &v }

// DefaultEntries returns the built-in catalog: a common CBC, metabolic,
// lipid and liver panel. Bounds are conventional adult reference intervals;
// gender- and age-specific bands are carried where they differ materially
// from the unisex interval.
func DefaultEntries() []Entry {
	return []Entry{
		{
			Name:     "WBC",
			Aliases:  []string{"White Blood Cells", "White Blood Cell Count", "Leukocytes"},
			Unit:     "10^3/uL",
			Category: domain.CategoryBloodCounts,
			Low:      4.0, High: 11.0,
			OptimalLow: ptr(5.0), OptimalHigh: ptr(8.0),
		},
		{
			Name:     "RBC",
			Aliases:  []string{"Red Blood Cells", "Red Blood Cell Count", "Erythrocytes"},
			Unit:     "10^6/uL",
			Category: domain.CategoryBloodCounts,
			Low:      4.2, High: 5.8,
			Bands: []Band{
				{Age: domain.AgeAdult, Gender: domain.GenderMale, Low: 4.35, High: 5.65},
				{Age: domain.AgeAdult, Gender: domain.GenderFemale, Low: 3.92, High: 5.13},
			},
		},
		{
			Name:     "Hemoglobin",
			Aliases:  []string{"Hgb", "Hb"},
			Unit:     "g/dL",
			Category: domain.CategoryBloodCounts,
			Low:      12.0, High: 16.0,
			Bands: []Band{
				{Age: domain.AgeAdult, Gender: domain.GenderMale, Low: 13.2, High: 16.6,
					OptimalLow: ptr(14.0), OptimalHigh: ptr(16.0)},
				{Age: domain.AgeAdult, Gender: domain.GenderFemale, Low: 11.6, High: 15.0,
					OptimalLow: ptr(12.5), OptimalHigh: ptr(14.5)},
				{Age: domain.AgePediatric, Gender: domain.GenderUnisex, Low: 10.0, High: 15.5},
			},
		},
		{
			Name:     "Hematocrit",
			Aliases:  []string{"Hct", "Packed Cell Volume", "PCV"},
			Unit:     "%",
			Category: domain.CategoryBloodCounts,
			Low:      36.0, High: 50.0,
			Bands: []Band{
				{Age: domain.AgeAdult, Gender: domain.GenderMale, Low: 38.3, High: 48.6},
				{Age: domain.AgeAdult, Gender: domain.GenderFemale, Low: 35.5, High: 44.9},
			},
		},
		{
			Name:     "Platelets",
			Aliases:  []string{"Platelet Count", "PLT"},
			Unit:     "10^3/uL",
			Category: domain.CategoryBloodCounts,
			Low:      150.0, High: 450.0,
		},
		{
			Name:     "MCV",
			Aliases:  []string{"M.C.V", "Mean Corpuscular Volume"},
			Unit:     "fL",
			Category: domain.CategoryBloodCounts,
			Low:      80.0, High: 100.0,
		},
		{
			Name:     "Glucose",
			Aliases:  []string{"Glucose Fasting", "Fasting Blood Sugar", "FBS", "GLU"},
			Unit:     "mg/dL",
			Category: domain.CategoryMetabolic,
			Low:      70.0, High: 100.0,
			OptimalLow: ptr(75.0), OptimalHigh: ptr(90.0),
		},
		{
			Name:     "Creatinine",
			Aliases:  []string{"Creat", "CRE"},
			Unit:     "mg/dL",
			Category: domain.CategoryMetabolic,
			Low:      0.6, High: 1.3,
			Bands: []Band{
				{Age: domain.AgeAdult, Gender: domain.GenderMale, Low: 0.74, High: 1.35},
				{Age: domain.AgeAdult, Gender: domain.GenderFemale, Low: 0.59, High: 1.04},
			},
		},
		{
			Name:     "BUN",
			Aliases:  []string{"Blood Urea Nitrogen", "Urea Nitrogen"},
			Unit:     "mg/dL",
			Category: domain.CategoryMetabolic,
			Low:      7.0, High: 20.0,
		},
		{
			Name:     "Sodium",
			Aliases:  []string{"Na"},
			Unit:     "mmol/L",
			Category: domain.CategoryMetabolic,
			Low:      135.0, High: 145.0,
		},
		{
			Name:     "Potassium",
			Aliases:  []string{"K"},
			Unit:     "mmol/L",
			Category: domain.CategoryMetabolic,
			Low:      3.5, High: 5.2,
		},
		{
			Name:     "Total Cholesterol",
			Aliases:  []string{"Cholesterol Total", "TC"},
			Unit:     "mg/dL",
			Category: domain.CategoryLipidPanel,
			Low:      125.0, High: 200.0,
		},
		{
			Name:     "LDL Cholesterol",
			Aliases:  []string{"LDL", "LDL-C"},
			Unit:     "mg/dL",
			Category: domain.CategoryLipidPanel,
			Low:      0.0, High: 100.0,
			OptimalHigh: ptr(70.0),
		},
		{
			Name:     "HDL Cholesterol",
			Aliases:  []string{"HDL", "HDL-C"},
			Unit:     "mg/dL",
			Category: domain.CategoryLipidPanel,
			Low:      40.0, High: 90.0,
			OptimalLow: ptr(60.0),
			Bands: []Band{
				{Age: domain.AgeAdult, Gender: domain.GenderFemale, Low: 50.0, High: 90.0,
					OptimalLow: ptr(60.0)},
			},
		},
		{
			Name:     "Triglycerides",
			Aliases:  []string{"TG", "Trigs"},
			Unit:     "mg/dL",
			Category: domain.CategoryLipidPanel,
			Low:      0.0, High: 150.0,
		},
		{
			Name:     "ALT",
			Aliases:  []string{"SGPT", "S.G.P.T", "Alanine Aminotransferase"},
			Unit:     "IU/L",
			Category: domain.CategoryLiverFunction,
			Low:      7.0, High: 56.0,
		},
		{
			Name:     "AST",
			Aliases:  []string{"SGOT", "S.G.O.T", "Aspartate Aminotransferase"},
			Unit:     "IU/L",
			Category: domain.CategoryLiverFunction,
			Low:      10.0, High: 40.0,
		},
		{
			Name:     "ALP",
			Aliases:  []string{"Alkaline Phosphatase"},
			Unit:     "IU/L",
			Category: domain.CategoryLiverFunction,
			Low:      44.0, High: 147.0,
		},
		{
			Name:     "Total Bilirubin",
			Aliases:  []string{"Bilirubin Total", "TBIL", "T. Bili"},
			Unit:     "mg/dL",
			Category: domain.CategoryLiverFunction,
			Low:      0.1, High: 1.2,
		},
		{
			Name:     "Albumin",
			Aliases:  []string{"ALB"},
			Unit:     "g/dL",
			Category: domain.CategoryLiverFunction,
			Low:      3.4, High: 5.4,
		},
	}
}

// DefaultTable compiles the built-in catalog with the default folding. The
// catalog is static and known valid, so construction cannot fail.
func DefaultTable() *Table {
	t, err := NewTable(DefaultEntries(), nil)
	if err != nil {
		panic("reference: default catalog invalid: " + err.Error())
	}
	return t
}
