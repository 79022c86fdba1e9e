package roster

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseJSON(t *testing.T) {
	list := []byte(`[{"class": "Jovens", "teacher": "joao", "students": ["Ana", "Carlos"]}]`)
	entries, err := Parse("roster.json", list)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "joao", entries[0].Teacher)
	assert.Equal(t, []string{"Ana", "Carlos"}, entries[0].Students)

	single := []byte(`{"class": "Adultos", "students": ["Davi"]}`)
	entries, err = Parse("ONE.JSON", single)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Adultos", entries[0].Class)
}

func TestParseRejects(t *testing.T) {
	_, err := Parse("roster.csv", []byte("class,student"))
	assert.True(t, errors.Is(err, ErrInvalidFileFormat))

	_, err = Parse("roster.json", []byte(`[{"students": ["Ana"]}]`))
	assert.ErrorContains(t, err, "entry 1")

	_, err = Parse("roster.json", []byte("  "))
	assert.ErrorIs(t, err, ErrInvalidFileFormat)
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	rows := [][]any{
		{"Student", "Class", "Teacher"},
		{"Ana", "Jovens", "joao"},
		{"Davi", "Adultos", ""},
		{"Carlos", "Jovens", ""},
		{"Nobody", "", ""},
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	f.Close()

	entries, err := Parse("roster.xlsx", buf.Bytes())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Jovens", entries[0].Class)
	assert.Equal(t, "joao", entries[0].Teacher)
	assert.Equal(t, []string{"Ana", "Carlos"}, entries[0].Students)
	assert.Equal(t, "Adultos", entries[1].Class)
}

func TestParseXLSXMissingColumn(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Name"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"Ana"}))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	_, err := ParseXLSX(buf.Bytes())
	assert.ErrorContains(t, err, "missing required column")
}

func TestHash(t *testing.T) {
	assert.Equal(t, Hash([]byte("a")), Hash([]byte("a")))
	assert.NotEqual(t, Hash([]byte("a")), Hash([]byte("b")))
	assert.Len(t, Hash(nil), 64)
}
