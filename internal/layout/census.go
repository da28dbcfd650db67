package layout

import (
	"github.com/vvka-141/flrload/pkg/flrload"
)

// CensusOffset is the column shift of IPUMS USA extracts: the layouts below
// are written against the codebook and every column sits one to the right
// in the delivered file.
const CensusOffset = 1

// Record lengths of the household and person records, before offset.
const (
	HouseholdRecordLength = 97
	PersonRecordLength    = 77
)

type col struct {
	name       string
	start, end int
}

// householdColumns follow the IPUMS USA ACS household variables of the extract.
var householdColumns = []col{
	{"ACSYR", 2, 5},
	{"SERIAL", 8, 15},
	{"HHWT", 16, 25},
	{"HHTYPE", 26, 26},
	{"STATEICP", 27, 28},
	{"METAREA", 29, 31},
	{"METAREAD", 32, 35},
	{"CITY", 36, 39},
	{"CITYPOP", 40, 44},
	{"GQ", 45, 45},
	{"OWNERSHP", 46, 46},
	{"OWNERSHPD", 47, 48},
	{"MORTGAGE", 49, 49},
	{"MORTGAG2", 50, 50},
	{"ACREHOUS", 51, 51},
	{"MORTAMT1", 52, 56},
	{"MORTAMT2", 57, 60},
	{"TAXINCL", 61, 61},
	{"INSINCL", 62, 62},
	{"PROPINSR", 63, 66},
	{"OWNCOST", 67, 71},
	{"RENT", 72, 75},
	{"RENTGRS", 76, 79},
	{"CONDOFEE", 80, 83},
	{"HHINCOME", 84, 90},
	{"VALUEH", 91, 97},
}

// personColumns follow the IPUMS USA ACS person variables of the extract.
// Gaps (e.g. 32-35) hold variables the extract carries but nobody imports.
var personColumns = []col{
	{"ACSYR", 2, 5},
	{"SERIALP", 8, 15},
	{"PERNUM", 16, 19},
	{"PERWT", 20, 29},
	{"RELATE", 30, 31},
	{"SEX", 36, 36},
	{"AGE", 37, 39},
	{"MARST", 40, 40},
	{"RACE", 41, 41},
	{"HISPAN", 45, 45},
	{"BPL", 49, 51},
	{"YRIMMIG", 57, 60},
	{"SPEAKENG", 61, 61},
	{"RACESING", 62, 62},
	{"TOTINC", 65, 71},
	{"INCINVST", 72, 77},
}

// CensusMarkers maps the leading character of each line to its record type.
func CensusMarkers() map[string]flrload.RecordType {
	return map[string]flrload.RecordType{
		"H": flrload.RecordTypeHousehold,
		"P": flrload.RecordTypePerson,
	}
}

// CensusSynthetic appends the line number and record type to both record types.
func CensusSynthetic() map[flrload.RecordType][]string {
	both := []string{flrload.FieldLineNumber, flrload.FieldRecordType}
	return map[flrload.RecordType][]string{
		flrload.RecordTypeHousehold: append([]string(nil), both...),
		flrload.RecordTypePerson:    append([]string(nil), both...),
	}
}

// Census returns the built-in IPUMS USA format. The layouts are static and
// known to be valid, so construction failures panic.
func Census() flrload.Format {
	return flrload.Format{
		Markers: CensusMarkers(),
		Layouts: []*flrload.Layout{
			mustLayout(flrload.RecordTypeHousehold, HouseholdRecordLength, householdColumns),
			mustLayout(flrload.RecordTypePerson, PersonRecordLength, personColumns),
		},
		Offset:    CensusOffset,
		Synthetic: CensusSynthetic(),
	}
}

// CensusTables returns the default table per record type.
func CensusTables() map[flrload.RecordType]string {
	return map[flrload.RecordType]string{
		flrload.RecordTypeHousehold: "households",
		flrload.RecordTypePerson:    "people",
	}
}

// CensusIndexes returns the columns indexed per record type.
func CensusIndexes() map[flrload.RecordType][]string {
	return map[flrload.RecordType][]string{
		flrload.RecordTypeHousehold: {"SERIAL"},
		flrload.RecordTypePerson:    {"SERIALP"},
	}
}

func mustLayout(rt flrload.RecordType, maxLength int, cols []col) *flrload.Layout {
	fields := make([]flrload.Field, len(cols))
	for i, c := range cols {
		fields[i] = flrload.Field{Name: c.name, Range: flrload.Range{Start: c.start, End: c.end}}
	}
	l, err := flrload.NewLayout(rt, maxLength, fields...)
	if err != nil {
		panic(err)
	}
	return l
}
