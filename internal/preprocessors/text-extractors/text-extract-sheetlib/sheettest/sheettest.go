// Copyright The Crosscheck Authors
// SPDX-License-Identifier: Apache-2.0

// Package sheettest builds small binary (.xls) workbooks for tests.
package sheettest

import (
	"bytes"
	"encoding/binary"
	"unicode/utf16"
)

const (
	sectorSize = 512
	miniCutoff = 4096

	freeSect   = 0xFFFFFFFF
	endOfChain = 0xFFFFFFFE
	fatSect    = 0xFFFFFFFD
	noStream   = 0xFFFFFFFF
)

var le = binary.LittleEndian

// XLS returns a BIFF8 workbook with one worksheet named sheet. Every
// non-empty cell is stored as a shared string. With encrypted set the
// globals substream carries a FILEPASS record.
func XLS(sheet string, rows [][]string, encrypted bool) []byte {
	return compoundFile("Workbook", workbookStream(sheet, rows, encrypted))
}

func record(buf *bytes.Buffer, id uint16, body []byte) {
	var head [4]byte
	le.PutUint16(head[0:], id)
	le.PutUint16(head[2:], uint16(len(body)))
	buf.Write(head[:])
	buf.Write(body)
}

func bof(substream uint16) []byte {
	body := make([]byte, 16)
	le.PutUint16(body[0:], 0x0600)
	le.PutUint16(body[2:], substream)
	return body
}

func workbookStream(sheet string, rows [][]string, encrypted bool) []byte {
	var strs []string
	index := map[string]uint32{}
	for _, row := range rows {
		for _, v := range row {
			if _, ok := index[v]; v != "" && !ok {
				index[v] = uint32(len(strs))
				strs = append(strs, v)
			}
		}
	}

	var sst bytes.Buffer
	var total uint32
	for _, row := range rows {
		for _, v := range row {
			if v != "" {
				total++
			}
		}
	}
	binary.Write(&sst, le, total)
	binary.Write(&sst, le, uint32(len(strs)))
	for _, s := range strs {
		binary.Write(&sst, le, uint16(len(s)))
		sst.WriteByte(0)
		sst.WriteString(s)
	}

	boundsheet := func(pos uint32) []byte {
		body := make([]byte, 8, 8+len(sheet))
		le.PutUint32(body[0:], pos)
		body[6] = byte(len(sheet))
		return append(body, sheet...)
	}

	// The BOUNDSHEET offset points past the globals, so lay them out once to
	// measure them.
	globals := func(pos uint32) []byte {
		var buf bytes.Buffer
		record(&buf, 0x0809, bof(0x0005))
		if encrypted {
			record(&buf, 0x002F, []byte{1, 0, 1, 0, 1, 0})
		}
		record(&buf, 0x0085, boundsheet(pos))
		record(&buf, 0x00FC, sst.Bytes())
		record(&buf, 0x000A, nil)
		return buf.Bytes()
	}
	head := globals(uint32(len(globals(0))))

	var buf bytes.Buffer
	buf.Write(head)
	record(&buf, 0x0809, bof(0x0010))
	for r, row := range rows {
		for c, v := range row {
			if v == "" {
				continue
			}
			body := make([]byte, 10)
			le.PutUint16(body[0:], uint16(r))
			le.PutUint16(body[2:], uint16(c))
			le.PutUint32(body[6:], index[v])
			record(&buf, 0x00FD, body)
		}
	}
	record(&buf, 0x000A, nil)
	return buf.Bytes()
}

// compoundFile wraps stream in a version 3 compound file: sector 0 holds the
// FAT, sector 1 the directory, and the stream follows. The stream is padded
// past the mini stream cutoff so it lives in regular sectors.
func compoundFile(name string, stream []byte) []byte {
	size := max(len(stream), miniCutoff)
	sectors := (size + sectorSize - 1) / sectorSize
	data := make([]byte, sectors*sectorSize)
	copy(data, stream)

	header := make([]byte, sectorSize)
	copy(header, []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1})
	le.PutUint16(header[0x18:], 0x003E)
	le.PutUint16(header[0x1A:], 0x0003)
	le.PutUint16(header[0x1C:], 0xFFFE)
	le.PutUint16(header[0x1E:], 9)
	le.PutUint16(header[0x20:], 6)
	le.PutUint32(header[0x2C:], 1)
	le.PutUint32(header[0x30:], 1)
	le.PutUint32(header[0x38:], miniCutoff)
	le.PutUint32(header[0x3C:], endOfChain)
	le.PutUint32(header[0x44:], endOfChain)
	for i := 0; i < 109; i++ {
		le.PutUint32(header[0x4C+i*4:], freeSect)
	}
	le.PutUint32(header[0x4C:], 0)

	fat := make([]byte, sectorSize)
	for i := 0; i < sectorSize/4; i++ {
		le.PutUint32(fat[i*4:], freeSect)
	}
	le.PutUint32(fat[0:], fatSect)
	le.PutUint32(fat[4:], endOfChain)
	for i := 0; i < sectors; i++ {
		next := uint32(2 + i + 1)
		if i == sectors-1 {
			next = endOfChain
		}
		le.PutUint32(fat[(2+i)*4:], next)
	}

	dir := make([]byte, sectorSize)
	dirEntry(dir[0:], "Root Entry", 5, 1, endOfChain, 0)
	dirEntry(dir[128:], name, 2, noStream, 2, uint32(size))
	dirEntry(dir[256:], "", 0, noStream, 0, 0)
	dirEntry(dir[384:], "", 0, noStream, 0, 0)

	out := make([]byte, 0, sectorSize*(3+sectors))
	out = append(out, header...)
	out = append(out, fat...)
	out = append(out, dir...)
	return append(out, data...)
}

func dirEntry(b []byte, name string, kind byte, child, start, size uint32) {
	if name != "" {
		units := utf16.Encode([]rune(name))
		for i, u := range units {
			le.PutUint16(b[i*2:], u)
		}
		le.PutUint16(b[64:], uint16((len(units)+1)*2))
		b[67] = 1
	}
	b[66] = kind
	le.PutUint32(b[68:], noStream)
	le.PutUint32(b[72:], noStream)
	le.PutUint32(b[76:], child)
	le.PutUint32(b[116:], start)
	le.PutUint32(b[120:], size)
}
