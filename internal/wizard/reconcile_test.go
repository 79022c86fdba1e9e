package wizard

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pavelanni/attendance/internal/model"
)

func TestReconcileKeyVariants(t *testing.T) {
	tests := []struct {
		name string
		raw  model.ActivityPayload
		kind model.ActivityKind
		want int
	}{
		{"exact", model.ActivityPayload{"literaturasDistribuidas": 5}, model.ActivityLiterature, 5},
		{"lower", model.ActivityPayload{"literaturasdistribuidas": 6}, model.ActivityLiterature, 6},
		{"upper", model.ActivityPayload{"LITERATURASDISTRIBUIDAS": 7}, model.ActivityLiterature, 7},
		{"title", model.ActivityPayload{"LiteraturasDistribuidas": 8}, model.ActivityLiterature, 8},
		{"snake", model.ActivityPayload{"pessoas_trazidas_igreja": 2}, model.ActivityBrought, 2},
		{"kebab", model.ActivityPayload{"pessoas-auxiliadas": 3}, model.ActivityAssisted, 3},
		{"spaced", model.ActivityPayload{"Visitas Missionarias": 4}, model.ActivityVisits, 4},
		{"numeric string", model.ActivityPayload{"visitantes": " 12 "}, model.ActivityVisitors, 12},
		{"json number", model.ActivityPayload{"visitantes": json.Number("9")}, model.ActivityVisitors, 9},
		{"float", model.ActivityPayload{"visitantes": 3.0}, model.ActivityVisitors, 3},
		{"garbage", model.ActivityPayload{"visitantes": "many"}, model.ActivityVisitors, 0},
		{"null", model.ActivityPayload{"visitantes": nil}, model.ActivityVisitors, 0},
		{"negative clamps", model.ActivityPayload{"visitantes": -4}, model.ActivityVisitors, 0},
		{"missing", model.ActivityPayload{}, model.ActivityContacts, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reconcile(tt.raw)
			assert.Equal(t, tt.want, got[tt.kind])
			assert.Len(t, got, len(model.ActivityKinds))
		})
	}
}

func TestReconcilePrefersExactKey(t *testing.T) {
	raw := model.ActivityPayload{
		"visitantes": 1,
		"VISITANTES": 2,
	}
	assert.Equal(t, 1, Reconcile(raw)[model.ActivityVisitors])
}

func TestReconcileCustomResolvers(t *testing.T) {
	raw := model.ActivityPayload{"literaturas_distribuidas": 5}
	got := Reconcile(raw, resolveExact)
	assert.Equal(t, 0, got[model.ActivityLiterature])
}

func TestCaseHelpers(t *testing.T) {
	assert.Equal(t, "pessoas_trazidas_igreja", snakeCase("pessoasTrazidasIgreja"))
	assert.Equal(t, "estudos-biblicos", kebabCase("estudosBiblicos"))
	assert.Equal(t, "Visitantes", upperFirst("visitantes"))
}
