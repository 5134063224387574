package metadata

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveValueType(t *testing.T) {
	cases := []struct {
		q    Question
		want ValueType
	}{
		{Question{Name: "a", Kind: KindText}, ValueText},
		{Question{Name: "b", Kind: KindTextList}, ValueTextList},
		{Question{Name: "c", Kind: KindSingleChoice}, ValueSingleChoice},
		{Question{Name: "d", Kind: KindNumeric}, ValueNumeric},
		{Question{Name: "e", Kind: KindMultiChoice}, ValueMultiChoice},
		{Question{Name: "f", Kind: KindDateTime}, ValueDate},
		{Question{Name: "g", Kind: KindVariable, VariableType: "LONG"}, ValueVarLong},
		{Question{Name: "h", Kind: KindVariable, VariableType: "string"}, ValueVarString},
		{Question{Name: "i", Kind: KindVariable, VariableType: "DOUBLE"}, ValueVarDouble},
		{Question{Name: "j", Kind: KindVariable, VariableType: "DATE"}, ValueVarDate},
		{Question{Name: "k", Kind: KindVariable, VariableType: "BOOLEAN"}, ValueVarBool},
	}
	for _, tc := range cases {
		got, err := ResolveValueType(tc.q)
		require.NoError(t, err, tc.q.Name)
		assert.Equal(t, tc.want, got, tc.q.Name)
		assert.True(t, Known(got))
	}
}

func TestResolveValueType_Unknown(t *testing.T) {
	_, err := ResolveValueType(Question{Name: "gps", Kind: "GpsCoordinateQuestion"})
	var uvt *UnknownValueTypeError
	require.True(t, errors.As(err, &uvt))
	assert.Equal(t, "gps", uvt.Question)
	assert.Equal(t, "GpsCoordinateQuestion", uvt.Kind)

	_, err = ResolveValueType(Question{Name: "v", Kind: KindVariable, VariableType: "BLOB"})
	require.True(t, errors.As(err, &uvt))
	assert.Equal(t, "Variable_BLOB", uvt.Kind)
}

func TestKnown_SystemTypes(t *testing.T) {
	assert.True(t, Known(ValueInterviewID))
	assert.True(t, Known(ValueRosterVector))
	assert.False(t, Known(ValueType("geo")))
	assert.True(t, ValueRosterVector.IsList())
	assert.False(t, ValueNumeric.IsList())
}

func TestOwningRoster(t *testing.T) {
	doc := &Document{
		RootID: "root",
		Groups: map[string]Group{
			"root":  {ID: "root"},
			"sec":   {ID: "sec", ParentID: "root"},
			"hh":    {ID: "hh", ParentID: "sec", IsRoster: true, VariableName: "household"},
			"hhsub": {ID: "hhsub", ParentID: "hh"},
		},
	}

	g, ok, err := doc.OwningRoster("hhsub")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "household", g.VariableName)

	_, ok, err = doc.OwningRoster("sec")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = doc.OwningRoster("missing")
	var uge *UnknownGroupError
	assert.True(t, errors.As(err, &uge))
}
