// Package roster reads class rosters from JSON or spreadsheet files.
package roster

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/pavelanni/attendance/internal/model"
	"github.com/pavelanni/attendance/internal/validate"
)

// ErrInvalidFileFormat is returned for files that are neither roster JSON
// nor a spreadsheet with the expected header.
var ErrInvalidFileFormat = errors.New("invalid roster file format")

// Hash returns the hex SHA-256 of a roster file, used to skip re-imports.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Parse reads a roster, choosing the format by file extension.
func Parse(name string, data []byte) ([]model.RosterImport, error) {
	var (
		entries []model.RosterImport
		err     error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		entries, err = ParseJSON(data)
	case ".xlsx":
		entries, err = ParseXLSX(data)
	default:
		return nil, fmt.Errorf("%s: %w", name, ErrInvalidFileFormat)
	}
	if err != nil {
		return nil, err
	}
	for i, e := range entries {
		if err := validate.Struct(e); err != nil {
			return nil, fmt.Errorf("entry %d: %s", i+1, validate.Summary(err, "en"))
		}
	}
	return entries, nil
}

// ParseJSON accepts either a list of entries or a single entry object.
func ParseJSON(data []byte) ([]model.RosterImport, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrInvalidFileFormat
	}
	if data[0] == '{' {
		var one model.RosterImport
		if err := json.Unmarshal(data, &one); err != nil {
			return nil, fmt.Errorf("parse roster JSON: %w", err)
		}
		return []model.RosterImport{one}, nil
	}
	var entries []model.RosterImport
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse roster JSON: %w", err)
	}
	return entries, nil
}

// ParseXLSX reads the first sheet. The header row must name a "class" and
// a "student" column; a "teacher" column is optional. Rows are grouped by
// class in first-seen order.
func ParseXLSX(data []byte) ([]model.RosterImport, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrInvalidFileFormat
	}
	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, ErrInvalidFileFormat
	}

	columns := make(map[string]int)
	for i, col := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, col := range []string{"class", "student"} {
		if _, ok := columns[col]; !ok {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}

	var entries []model.RosterImport
	index := make(map[string]int)
	for _, row := range rows[1:] {
		get := func(name string) string {
			if i, ok := columns[name]; ok && i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}
		class := get("class")
		if class == "" {
			continue
		}
		i, ok := index[class]
		if !ok {
			i = len(entries)
			index[class] = i
			entries = append(entries, model.RosterImport{Class: class})
		}
		if t := get("teacher"); t != "" {
			entries[i].Teacher = t
		}
		if s := get("student"); s != "" {
			entries[i].Students = append(entries[i].Students, s)
		}
	}
	return entries, nil
}
