// Copyright The Crosscheck Authors
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"reflect"
	"testing"

	"crosscheck/internal/config"
	"crosscheck/internal/normalize"
)

var testColumns = config.Columns{
	Phone:  "Mobile No",
	Email:  "Mail ID",
	Name:   "Passenger Name",
	Agency: "Travel Agency",
}

func TestSimpleFields(t *testing.T) {
	fields := SimpleFields(testColumns)

	want := []Field{
		{Column: "Mobile No", Label: "Phone", Kind: normalize.KindPhone},
		{Column: "Mail ID", Label: "Email", Kind: normalize.KindText},
		{Column: "Passenger Name", Label: "Name", Kind: normalize.KindText},
		{Column: "Travel Agency", Label: "Agency", Kind: normalize.KindText},
	}
	if !reflect.DeepEqual(fields, want) {
		t.Errorf("SimpleFields() = %+v, want %+v", fields, want)
	}
}

func TestParseFields(t *testing.T) {
	cases := []struct {
		name    string
		input   []string
		columns []string
	}{
		{"empty", nil, []string{}},
		{"order kept", []string{"Travel Agency", "Passenger Name"}, []string{"Travel Agency", "Passenger Name"}},
		{"whitespace trimmed", []string{" Passenger Name ", "Mail ID"}, []string{"Passenger Name", "Mail ID"}},
		{"blanks dropped", []string{"", "  ", "Mail ID"}, []string{"Mail ID"}},
		{"repeats dropped", []string{"Mail ID", "Mail ID ", "Passenger Name"}, []string{"Mail ID", "Passenger Name"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FieldColumns(ParseFields(tc.input, testColumns))
			if !reflect.DeepEqual(got, tc.columns) {
				t.Errorf("ParseFields(%q) columns = %q, want %q", tc.input, got, tc.columns)
			}
		})
	}
}

func TestParseFields_Kinds(t *testing.T) {
	fields := ParseFields([]string{"Mobile No", "Passenger Name"}, testColumns)
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}
	if fields[0].Kind != normalize.KindPhone {
		t.Errorf("phone column kind = %v, want phone", fields[0].Kind)
	}
	if fields[1].Kind != normalize.KindText {
		t.Errorf("name column kind = %v, want text", fields[1].Kind)
	}
	if fields[1].Label != "Passenger Name" {
		t.Errorf("label = %q, want the column name", fields[1].Label)
	}
}

func TestSplitColumns(t *testing.T) {
	if got := SplitColumns("  "); got != nil {
		t.Errorf("SplitColumns(blank) = %q, want nil", got)
	}
	got := SplitColumns("Passenger Name, Travel Agency")
	want := []string{"Passenger Name", " Travel Agency"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitColumns() = %q, want %q", got, want)
	}
}
