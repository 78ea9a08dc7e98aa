// Copyright The Crosscheck Authors
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"strings"

	"crosscheck/internal/config"
	"crosscheck/internal/normalize"
)

// Field is one reference column taking part in a comparison
type Field struct {
	Column string         // Reference column the value is read from
	Label  string         // Match type reported for hits
	Kind   normalize.Kind // Normalization applied to the value
}

// SimpleFields returns the fixed Phone, Email, Name and Agency fields bound
// to the configured reference columns
func SimpleFields(cols config.Columns) []Field {
	return []Field{
		{Column: cols.Phone, Label: "Phone", Kind: normalize.KindPhone},
		{Column: cols.Email, Label: "Email", Kind: normalize.KindText},
		{Column: cols.Name, Label: "Name", Kind: normalize.KindText},
		{Column: cols.Agency, Label: "Agency", Kind: normalize.KindText},
	}
}

// ParseFields converts caller-selected column names into fields. Names are
// trimmed, blanks and repeats are dropped and order is kept. The configured
// phone column is normalized as a phone number; every other column as text.
func ParseFields(columns []string, cols config.Columns) []Field {
	seen := make(map[string]bool, len(columns))
	fields := make([]Field, 0, len(columns))

	for _, column := range columns {
		name := strings.TrimSpace(column)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		kind := normalize.KindText
		if name == cols.Phone {
			kind = normalize.KindPhone
		}
		fields = append(fields, Field{Column: name, Label: name, Kind: kind})
	}

	return fields
}

// SplitColumns splits a comma-separated column list
func SplitColumns(list string) []string {
	if strings.TrimSpace(list) == "" {
		return nil
	}
	return strings.Split(list, ",")
}

// FieldColumns returns the reference columns the fields read
func FieldColumns(fields []Field) []string {
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Column
	}
	return columns
}
