package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/flrload/pkg/flrload"
)

func TestCensus_Layouts(t *testing.T) {
	format := Census()

	require.Len(t, format.Layouts, 2)
	assert.Equal(t, CensusOffset, format.Offset)

	household := format.Layout(flrload.RecordTypeHousehold)
	require.NotNil(t, household)
	assert.Equal(t, 26, household.Len())
	assert.Equal(t, "ACSYR", household.Field(0).Name)
	assert.Equal(t, "VALUEH", household.Field(household.Len()-1).Name)
	assert.Equal(t, flrload.Range{Start: 8, End: 15}, household.Field(1).Range)
	assert.Equal(t, HouseholdRecordLength, household.Width())

	person := format.Layout(flrload.RecordTypePerson)
	require.NotNil(t, person)
	assert.Equal(t, 16, person.Len())
	f, ok := person.Lookup("SERIALP")
	require.True(t, ok)
	assert.Equal(t, flrload.Range{Start: 8, End: 15}, f.Range)
	assert.Equal(t, PersonRecordLength, person.Width())
}

func TestCensus_MarkersAndSynthetic(t *testing.T) {
	format := Census()

	assert.Equal(t, flrload.RecordTypeHousehold, format.Markers["H"])
	assert.Equal(t, flrload.RecordTypePerson, format.Markers["P"])
	assert.Equal(t, []string{flrload.FieldLineNumber, flrload.FieldRecordType}, format.Synthetic[flrload.RecordTypePerson])
}

func TestCensus_ReturnsIndependentCopies(t *testing.T) {
	a := Census()
	a.Markers["X"] = "extra"
	a.Synthetic[flrload.RecordTypePerson][0] = "changed"

	b := Census()
	assert.NotContains(t, b.Markers, "X")
	assert.Equal(t, flrload.FieldLineNumber, b.Synthetic[flrload.RecordTypePerson][0])
}

func TestCensusDefinition_Tables(t *testing.T) {
	def := CensusDefinition()
	assert.Equal(t, "households", def.Tables[flrload.RecordTypeHousehold])
	assert.Equal(t, "people", def.Tables[flrload.RecordTypePerson])
	assert.Equal(t, []string{"SERIALP"}, def.Indexes[flrload.RecordTypePerson])
}
