package resolve

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"consultantpdf/internal/directory"
)

var specs = []directory.Speciality{
	{Code: "CARD", Name: "Cardiology"},
	{Code: "DERM", Name: "Dermatology"},
	{Code: "ENT", Name: "Ear, Nose & Throat"},
}

func TestResolveSpeciality(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"DERM", "DERM"},
		{"derm", "DERM"},
		{"  Derm  ", "DERM"},
		{"dermatology", "DERM"},
		{"DERMATOLOGY", "DERM"},
		{"ear, nose & throat", "ENT"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ResolveSpeciality(tt.input, specs)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Code)
		})
	}
}

func TestResolveSpeciality_CodeBeatsName(t *testing.T) {
	mixed := []directory.Speciality{
		{Code: "X1", Name: "ent"},
		{Code: "ENT", Name: "Ear, Nose & Throat"},
	}
	got, err := ResolveSpeciality("ent", mixed)
	require.NoError(t, err)
	assert.Equal(t, "ENT", got.Code)
}

func TestResolveSpeciality_Unknown(t *testing.T) {
	for _, input := range []string{"DERMA", "", "   ", "Derm atology"} {
		_, err := ResolveSpeciality(input, specs)
		var unknown *UnknownSpecialityError
		require.True(t, errors.As(err, &unknown), "input %q", input)
		assert.Equal(t, input, unknown.Input)
		assert.Equal(t, specs, unknown.Known)
	}
}

func TestResolvePlan(t *testing.T) {
	plans := []string{"360 Care Select", "Inspire Plus"}

	got, err := ResolvePlan("360 care select", plans)
	require.NoError(t, err)
	assert.Equal(t, "360 Care Select", got)

	got, err = ResolvePlan(" INSPIRE PLUS ", plans)
	require.NoError(t, err)
	assert.Equal(t, "Inspire Plus", got)
}

func TestResolvePlan_NoPartialMatches(t *testing.T) {
	plans := []string{"360 Care Select", "Inspire Plus"}
	for _, input := range []string{"360", "care select", "Inspire", "360 Care Select Plus", ""} {
		_, err := ResolvePlan(input, plans)
		var unknown *UnknownPlanError
		require.True(t, errors.As(err, &unknown), "input %q", input)
		assert.Equal(t, plans, unknown.Known)
	}
}
