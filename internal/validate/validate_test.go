package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelanni/attendance/internal/model"
)

type sample struct {
	Name string `json:"name" validate:"notblank"`
	Date string `json:"date" validate:"isodate"`
	Kind string `json:"kind" validate:"omitempty,activity_kind"`
	Role string `form:"role" validate:"omitempty,user_role"`
}

func TestStruct(t *testing.T) {
	ok := sample{Name: "Ana", Date: "2025-05-10", Kind: string(model.ActivityVisitors), Role: "admin"}
	require.NoError(t, Struct(ok))

	bad := sample{Name: "  ", Date: "10/05/2025", Kind: "dancing", Role: "owner"}
	err := Struct(bad)
	require.Error(t, err)

	msgs := Messages(err, "en")
	assert.Equal(t, "name cannot be blank", msgs["name"])
	assert.Equal(t, "date must be a date like 2025-05-10", msgs["date"])
	assert.Equal(t, "kind is not a known activity", msgs["kind"])
	assert.Equal(t, "role must be teacher or admin", msgs["role"])

	pt := Messages(err, "pt-BR")
	assert.Equal(t, "name não pode ficar em branco", pt["name"])
}

func TestRosterImportTags(t *testing.T) {
	err := Struct(model.RosterImport{Class: "", Students: []string{"Ana"}})
	require.Error(t, err)
	assert.Contains(t, Messages(err, "en"), "class")

	assert.NoError(t, Struct(model.RosterImport{Class: "Jovens"}))
}

func TestMessagesNonValidationError(t *testing.T) {
	assert.Nil(t, Messages(nil, "en"))
	msgs := Messages(assert.AnError, "en")
	assert.Equal(t, assert.AnError.Error(), msgs[""])
}

func TestSummaryStable(t *testing.T) {
	err := Struct(sample{Name: "", Date: "x"})
	require.Error(t, err)
	assert.Equal(t, Summary(err, "en"), Summary(err, "en"))
	assert.Contains(t, Summary(err, "en"), "; ")
}
