package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techscope/hypecycle/pkg/types"
)

func fixturePatents() []types.Patent {
	acmeUS := types.PatentAssignee{Organization: "Acme Robotics Inc", Country: "US"}
	mitUS := types.PatentAssignee{Organization: "Massachusetts Institute of Technology", Country: "US"}
	ada := types.PatentAssignee{IndividualFirstName: "Ada", IndividualLastName: "Lovelace", Country: "GB"}

	return []types.Patent{
		{PatentID: "1", Year: intp(2019), Type: "utility", Abstract: "robotic arm", Assignees: []types.PatentAssignee{acmeUS}},
		{PatentID: "2", Year: intp(2019), Type: "utility", Abstract: "robotic arm", Assignees: []types.PatentAssignee{acmeUS}},
		{PatentID: "3", Year: intp(2020), Type: "utility", Abstract: "robotic arm", Assignees: []types.PatentAssignee{acmeUS}},
		{PatentID: "4", Year: intp(2020), Type: "utility", Abstract: "robotic arm", Assignees: []types.PatentAssignee{mitUS},
			ForwardCitations: intp(60), BackwardCitations: intp(40)},
		{PatentID: "5", Year: intp(2020), Type: "utility", Abstract: "robotic arm", Assignees: []types.PatentAssignee{mitUS}},
		{PatentID: "6", Year: intp(2021), Type: "utility", Abstract: "robotic arm", Assignees: []types.PatentAssignee{acmeUS},
			ForwardCitations: intp(40)},
		{PatentID: "7", Year: intp(2021), Type: "utility", Abstract: "robotic arm", Assignees: []types.PatentAssignee{mitUS}},
		{PatentID: "8", Year: intp(2021), Type: "utility", Abstract: "robotic arm", Assignees: []types.PatentAssignee{acmeUS}},
		{PatentID: "9", Year: intp(2022), Type: "utility", Assignees: []types.PatentAssignee{mitUS}},
		{PatentID: "10", Year: intp(2022), Type: "design", Assignees: []types.PatentAssignee{acmeUS}},
		{PatentID: "11", Year: intp(2023), Assignees: []types.PatentAssignee{ada}},
		{PatentID: "12", Year: intp(2023), Type: "utility"},
	}
}

func TestPatentExtractor_Empty(t *testing.T) {
	e := NewPatentExtractor(quietLogger())
	_, err := e.Extract(nil)
	assert.ErrorIs(t, err, ErrNoRecords)
}

func TestPatentExtractor_InsufficientData(t *testing.T) {
	e := NewPatentExtractor(quietLogger())
	_, err := e.Extract(fixturePatents()[:8])

	require.Error(t, err)
	assert.True(t, IsInsufficientData(err))
	assert.EqualError(t, err, "insufficient patent records for analysis: found 8, need at least 10")

	var ide *InsufficientDataError
	require.ErrorAs(t, err, &ide)
	assert.Equal(t, types.StreamPatent, ide.Stream)
	assert.Equal(t, 8, ide.Found)
	assert.Equal(t, 10, ide.Required)
}

func TestPatentExtractor_Extract(t *testing.T) {
	e := NewPatentExtractor(testClock(2024), quietLogger())
	snap, err := e.Extract(fixturePatents())
	require.NoError(t, err)

	// Volume: five year buckets is below the trend minimum.
	assert.Equal(t, 12, snap.TotalPatents)
	assert.Equal(t, types.TrendInsufficientData, snap.VelocityTrend)
	assert.Equal(t, 2020, snap.PeakYear) // tie with 2021 resolves to the earlier year
	assert.Equal(t, 3, snap.PeakCount)
	assert.InDelta(t, 2.4, snap.AvgPatentsPerYear, 1e-9)
	assert.InDelta(t, 2.0, snap.RecentVelocity, 1e-9)

	// Citations.
	assert.Equal(t, 100, snap.TotalForwardCitations)
	assert.Equal(t, 40, snap.TotalBackwardCitations)
	assert.InDelta(t, 100.0/12.0, snap.AvgForwardCitations, 1e-9)
	assert.InDelta(t, 2.5, snap.CitationRatio, 1e-9)
	assert.InDelta(t, 0.0, snap.MedianForwardCitations, 1e-9)
	assert.Equal(t, 1, snap.HighlyCitedCount) // only the 60-citation patent clears the floor of 50

	// Assignees: 6 corporate entries, 4 academic, 1 individual.
	assert.Equal(t, 3, snap.UniqueAssigneesCount)
	assert.Equal(t, []types.RankedCount{
		{Name: "Acme Robotics Inc", Count: 6},
		{Name: "Massachusetts Institute of Technology", Count: 4},
		{Name: "Ada", Count: 1},
	}, snap.TopAssignees)
	assert.InDelta(t, 53.0/121.0, snap.AssigneeConcentrationHHI, 1e-9)
	assert.InDelta(t, 6.0/11.0*100, snap.CorporatePercentage, 1e-9)
	assert.InDelta(t, 4.0/11.0*100, snap.AcademicPercentage, 1e-9)
	assert.InDelta(t, 1.0/11.0*100, snap.IndividualPercentage, 1e-9)
	assert.Equal(t, map[int]int{2019: 1, 2020: 1, 2023: 1}, snap.NewEntrantsByYear)

	// Geography.
	assert.Equal(t, map[string]int{"US": 10, "GB": 1}, snap.CountryDistribution)
	assert.Equal(t, 2, snap.UniqueCountries)

	// Types.
	assert.InDelta(t, 10.0/12.0*100, snap.UtilityPercentage, 1e-9)
	assert.InDelta(t, 1.0/12.0*100, snap.DesignPercentage, 1e-9)
	assert.InDelta(t, 1.0/12.0*100, snap.OtherTypePercentage, 1e-6)

	// Temporal, clock pinned to 2024.
	assert.Equal(t, 2019, snap.FirstPatentYear)
	assert.Equal(t, 5, snap.TechnologyAgeYears)
	assert.Equal(t, 2, snap.PatentsLastYear)
	assert.Equal(t, 4, snap.PatentsLast2Years)

	// Quality.
	assert.Equal(t, 8, snap.PatentsWithAbstract)
	assert.InDelta(t, 8.0/12.0*100, snap.CoveragePercentage, 1e-9)
}

func TestClassifyAssignee(t *testing.T) {
	// Academic terms win even when corporate suffixes are present.
	assert.Equal(t, "academic", classifyAssignee(types.PatentAssignee{Organization: "University Technologies Inc"}))
	assert.Equal(t, "corporate", classifyAssignee(types.PatentAssignee{Organization: "Quantum Devices LLC"}))
	// An unrecognized organization is assumed corporate.
	assert.Equal(t, "corporate", classifyAssignee(types.PatentAssignee{Organization: "Willow Garage"}))
	assert.Equal(t, "individual", classifyAssignee(types.PatentAssignee{IndividualFirstName: "Grace", IndividualLastName: "Hopper"}))
	assert.Equal(t, "individual", classifyAssignee(types.PatentAssignee{}))
}
