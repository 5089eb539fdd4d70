package testutil

import (
	"strings"

	"energycli/pkg/contracts/domain"
)

// OWIDColumns is a trimmed OWID energy dataset header, in the order the
// upstream file uses.
var OWIDColumns = []string{
	"country", "year", "iso_code",
	"biofuel_electricity", "coal_electricity", "electricity_generation",
	"gas_electricity", "hydro_electricity", "nuclear_electricity",
	"oil_electricity", "other_renewable_electricity", "solar_electricity",
	"wind_electricity",
}

// OWIDLine is one data line of an OWID CSV keyed by column name.
type OWIDLine map[string]string

// OWIDCSV renders lines as an OWID-style CSV body with OWIDColumns as header.
// Columns missing from a line are written empty.
func OWIDCSV(lines ...OWIDLine) string {
	var b strings.Builder
	b.WriteString(strings.Join(OWIDColumns, ","))
	b.WriteString("\n")
	for _, line := range lines {
		cells := make([]string, len(OWIDColumns))
		for i, col := range OWIDColumns {
			cells[i] = line[col]
		}
		b.WriteString(strings.Join(cells, ","))
		b.WriteString("\n")
	}
	return b.String()
}

// ChinaLine returns a CHN line with total generation and a hydro/wind/solar
// split.
func ChinaLine(year, total, hydro, wind, solar string) OWIDLine {
	return OWIDLine{
		"country":                "China",
		"year":                   year,
		"iso_code":               "CHN",
		"electricity_generation": total,
		"hydro_electricity":      hydro,
		"wind_electricity":       wind,
		"solar_electricity":      solar,
	}
}

// SampleCSV has three CHN years mixed with rows for other entities and an
// aggregate row without an ISO code.
func SampleCSV() string {
	return OWIDCSV(
		OWIDLine{"country": "Brazil", "year": "2022", "iso_code": "BRA", "electricity_generation": "677"},
		ChinaLine("2020", "7600", "1300", "450", "260"),
		ChinaLine("2021", "100", "5", "5", "5"),
		OWIDLine{"country": "World", "year": "2022", "electricity_generation": "29000"},
		ChinaLine("2022", "200", "20", "20", "10"),
		OWIDLine{"country": "India", "year": "2022", "iso_code": "IND", "electricity_generation": "1850"},
	)
}

// SampleSummary is a built summary for two years, newest first.
func SampleSummary() domain.Summary {
	return domain.Summary{
		{
			Year: domain.Int(2022),
			Generation: domain.GenerationMix{
				Total: domain.Float(200),
				Hydro: domain.Float(20),
				Wind:  domain.Float(20),
				Solar: domain.Float(10),
			},
			Share: domain.Share{
				Renewable:    domain.Float(0.25),
				NonRenewable: domain.Float(0.75),
			},
		},
		{
			Year: domain.Int(2021),
			Generation: domain.GenerationMix{
				Total: domain.Float(100),
				Hydro: domain.Float(5),
				Wind:  domain.Float(5),
				Solar: domain.Float(5),
			},
			Share: domain.Share{
				Renewable:    domain.Float(0.15),
				NonRenewable: domain.Float(0.85),
			},
		},
	}
}
