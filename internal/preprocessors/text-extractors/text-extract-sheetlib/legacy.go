// Copyright The Crosscheck Authors
// SPDX-License-Identifier: Apache-2.0

package textextractsheetlib

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/extrame/xls"
	"github.com/richardlehane/mscfb"
)

type compoundKind int

const (
	compoundUnknown compoundKind = iota
	compoundEncryptedPackage
	compoundWorkbook
	compoundEncryptedWorkbook
)

// BIFF record identifiers
const (
	recordEOF      = 0x000A
	recordFilePass = 0x002F
)

// inspectCompound tells an encrypted OOXML package from a binary workbook
func inspectCompound(data []byte) (compoundKind, error) {
	doc, err := mscfb.New(bytes.NewReader(data))
	if err != nil {
		return compoundUnknown, err
	}

	kind := compoundUnknown
	for entry, err := doc.Next(); err != io.EOF; entry, err = doc.Next() {
		if err != nil {
			return compoundUnknown, err
		}
		switch entry.Name {
		case "EncryptionInfo", "EncryptedPackage":
			return compoundEncryptedPackage, nil
		case "Workbook", "Book":
			stream, err := io.ReadAll(entry)
			if err != nil {
				return compoundUnknown, err
			}
			kind = compoundWorkbook
			if hasFilePass(stream) {
				kind = compoundEncryptedWorkbook
			}
		}
	}
	return kind, nil
}

// hasFilePass walks the workbook globals substream up to its EOF record
func hasFilePass(stream []byte) bool {
	for off := 0; off+4 <= len(stream); {
		id := binary.LittleEndian.Uint16(stream[off:])
		size := int(binary.LittleEndian.Uint16(stream[off+2:]))
		switch id {
		case recordFilePass:
			return true
		case recordEOF:
			return false
		}
		off += 4 + size
	}
	return false
}

// readLegacy decodes every worksheet of a BIFF workbook as display text.
// Trailing empty cells and rows are dropped.
func readLegacy(data []byte) (sheets []Sheet, err error) {
	// the BIFF decoder panics on some malformed records
	defer func() {
		if r := recover(); r != nil {
			sheets, err = nil, fmt.Errorf("malformed binary workbook: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, err
	}

	for i := 0; i < wb.NumSheets(); i++ {
		ws := wb.GetSheet(i)
		if ws == nil {
			continue
		}

		sheet := Sheet{Name: ws.Name}
		for r := 0; r <= int(ws.MaxRow); r++ {
			var cells []string
			if row := ws.Row(r); row != nil {
				for c := 0; c <= row.LastCol(); c++ {
					cells = append(cells, row.Col(c))
				}
			}
			sheet.Rows = append(sheet.Rows, trimEmpty(cells))
		}
		for len(sheet.Rows) > 0 && len(sheet.Rows[len(sheet.Rows)-1]) == 0 {
			sheet.Rows = sheet.Rows[:len(sheet.Rows)-1]
		}
		sheets = append(sheets, sheet)
	}
	return sheets, nil
}

func trimEmpty(cells []string) []string {
	for len(cells) > 0 && strings.TrimSpace(cells[len(cells)-1]) == "" {
		cells = cells[:len(cells)-1]
	}
	return cells
}
