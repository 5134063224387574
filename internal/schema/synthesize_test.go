package schema_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveygraph/internal/metadata"
	"surveygraph/internal/schema"
	"surveygraph/internal/schema/schematest"
)

func fieldNames(t *schema.TypeDef) []string {
	var out []string
	for _, f := range t.Fields {
		out = append(out, f.Name)
	}
	return out
}

func TestSynthesize_IncomeDocument(t *testing.T) {
	syn, err := schema.Synthesize("primary_income_v1", schematest.IncomeDocument())
	require.NoError(t, err)

	e := syn.Entity
	assert.Equal(t, "primary_income_v1", e.Key)
	assert.False(t, e.Roster)
	assert.Equal(t,
		[]string{"interview__id", "age", "name", "visit_date", "is_urban", "household", "plots"},
		fieldNames(e))

	id, ok := e.Field("interview__id")
	require.True(t, ok)
	assert.Equal(t, metadata.ValueInterviewID, id.ValueType)
	assert.True(t, id.System)

	age, _ := e.Field("age")
	assert.Equal(t, metadata.ValueNumeric, age.ValueType)
	assert.Equal(t, "Respondent age", age.Description)

	hh, ok := e.Field("household")
	require.True(t, ok)
	assert.Equal(t, schema.FieldRoster, hh.Kind)
	assert.Equal(t, "primary_income_v1_household", hh.Roster)
	assert.Equal(t, "Household members", hh.Description)

	require.Len(t, syn.Rosters, 2)
	household := syn.Rosters[0]
	assert.True(t, household.Roster)
	assert.Equal(t, "household", household.Name)
	assert.Equal(t, "primary_income_v1", household.Owner)
	// member_age лежит во вложенной группе, но принадлежит ростеру
	assert.Equal(t, []string{"roster__vector", "member_name", "member_age"}, fieldNames(household))

	vec, _ := household.Field("roster__vector")
	assert.Equal(t, metadata.ValueRosterVector, vec.ValueType)

	plots := syn.Rosters[1]
	assert.Equal(t, []string{"roster__vector", "plot_area", "crops"}, fieldNames(plots))
	area, _ := plots.Field("plot_area")
	assert.Equal(t, metadata.ValueVarDouble, area.ValueType)
}

func TestSynthesize_EveryFieldTypeIsKnown(t *testing.T) {
	syn, err := schema.Synthesize("e", schematest.IncomeDocument())
	require.NoError(t, err)
	for _, td := range append([]*schema.TypeDef{syn.Entity}, syn.Rosters...) {
		for _, f := range td.Fields {
			if f.Kind == schema.FieldScalar {
				assert.True(t, metadata.Known(f.ValueType), "%s.%s", td.Key, f.Name)
			}
		}
	}
}

func TestSynthesize_FirstRosterQuestionIsKept(t *testing.T) {
	doc := &metadata.Document{
		RootID: "r",
		Groups: map[string]metadata.Group{
			"r":  {ID: "r"},
			"hh": {ID: "hh", ParentID: "r", IsRoster: true, VariableName: "hh"},
		},
		Questions: []metadata.Question{
			{ID: "1", ParentID: "hh", Kind: metadata.KindText, Name: "only"},
		},
	}
	syn, err := schema.Synthesize("e", doc)
	require.NoError(t, err)
	require.Len(t, syn.Rosters, 1)
	assert.Equal(t, []string{"roster__vector", "only"}, fieldNames(syn.Rosters[0]))
}

func TestSynthesize_UnknownValueType(t *testing.T) {
	doc := schematest.IncomeDocument()
	doc.Questions = append(doc.Questions, metadata.Question{ID: "gps", ParentID: "cover", Kind: "GpsCoordinateQuestion", Name: "gps"})

	_, err := schema.Synthesize("e", doc)
	var uvt *metadata.UnknownValueTypeError
	require.True(t, errors.As(err, &uvt))
	assert.Equal(t, "gps", uvt.Question)
}

func TestSynthesize_DuplicateField(t *testing.T) {
	doc := schematest.IncomeDocument()
	doc.Questions = append(doc.Questions, metadata.Question{ID: "dup", ParentID: "cover", Kind: metadata.KindText, Name: "AGE"})

	_, err := schema.Synthesize("e", doc)
	var dfe *schema.DuplicateFieldError
	require.True(t, errors.As(err, &dfe))
	assert.Equal(t, "AGE", dfe.Field)
}

func TestSynthesize_RosterNameClashesWithField(t *testing.T) {
	doc := schematest.IncomeDocument()
	doc.Questions = append(doc.Questions, metadata.Question{ID: "x", ParentID: "cover", Kind: metadata.KindText, Name: "household"})

	_, err := schema.Synthesize("e", doc)
	var dfe *schema.DuplicateFieldError
	assert.True(t, errors.As(err, &dfe))
}

func TestSynthesize_InvalidIdentifiers(t *testing.T) {
	_, err := schema.Synthesize("bad-name", schematest.IncomeDocument())
	var iie *schema.InvalidIdentifierError
	require.True(t, errors.As(err, &iie))
	assert.Equal(t, "entity", iie.What)

	doc := schematest.IncomeDocument()
	doc.Questions = append(doc.Questions, metadata.Question{ID: "x", ParentID: "cover", Kind: metadata.KindText, Name: "x'); drop table t; --"})
	_, err = schema.Synthesize("e", doc)
	require.True(t, errors.As(err, &iie))
	assert.Equal(t, "field", iie.What)
}

func TestSynthesize_OrphanQuestion(t *testing.T) {
	doc := schematest.IncomeDocument()
	doc.Questions = append(doc.Questions, metadata.Question{ID: "x", ParentID: "nowhere", Kind: metadata.KindText, Name: "x"})

	_, err := schema.Synthesize("e", doc)
	var uge *metadata.UnknownGroupError
	assert.True(t, errors.As(err, &uge))
}

func TestNaming(t *testing.T) {
	assert.Equal(t, "default_abc", schema.ExportSchema("primary", "abc"))
	assert.Equal(t, "default_north_abc", schema.ExportSchema("north", "abc"))
	assert.Equal(t, "north_income_3", schema.EntityName("north", "income", "3"))
	assert.Equal(t, "income$3", schema.TableName("income", "3"))
	assert.Equal(t, "income$1_household", schematest.IncomeBinding().RosterTable("household"))
}
