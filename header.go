/*
 * header.go, part of godcd
 *
 * Copyright 2024 Raul Mera Adasme <raul_dot_mera_changeforat_usach_dot_cl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License  as published by
 * the Free Software Foundation; either version 2.1 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General Public License
 * along with this program; if not, write to the Free Software
 * Foundation, Inc., 51 Franklin Street, Fifth Floor, Boston,
 * MA 02110-1301, USA.
 *
 */

package dcd

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"strings"
)

const (
	dcdMagic       = "CORD"
	icntrlBytes    = 80
	titleLineBytes = 80
	charmmVersion  = 24
	//nsetsOffset is the byte offset, from the start of the file, of the
	//frame-count field. The writer patches it when closing.
	nsetsOffset = 8
)

//header is the parsed control data of a DCD file.
type header struct {
	natoms  int
	nsets   int //frames in the file, per the header
	istart  int //first simulation step
	nsavc   int //simulation steps between saved frames
	delta   float64
	nfixed  int
	free    []int32 //0-based here; the format stores them 1-based
	hasCell bool
	fourdim bool
	charmm  int32
	remarks string
	order   binary.ByteOrder
	size    int64 //bytes from the start of the file to frame 0
}

//Header is a read-only snapshot of the control data of an open
//trajectory. Delta is in AKMA time units, as stored.
type Header struct {
	NAtoms  int
	NFrames int
	Start   int
	Step    int
	Delta   float64
	NFixed  int
	HasCell bool
	Remarks string
}

func (h *header) snapshot() Header {
	return Header{
		NAtoms:  h.natoms,
		NFrames: h.nsets,
		Start:   h.istart,
		Step:    h.nsavc,
		Delta:   h.delta,
		NFixed:  h.nfixed,
		HasCell: h.hasCell,
		Remarks: h.remarks,
	}
}

//parseHeader reads and validates the 3 header records of a DCD file
//(4 when the file declares fixed atoms), detecting the byte order from
//the very first record marker.
func parseHeader(r io.Reader, filename string) (*header, error) {
	h := new(header)
	var first [4]byte
	if _, err := io.ReadFull(r, first[:]); err != nil {
		return nil, wrapRead(err, filename, "parseHeader")
	}
	//The opening marker reads 84 under exactly one of the two byte
	//orders, which tells us the endianness of the whole file.
	switch {
	case binary.LittleEndian.Uint32(first[:]) == 84:
		h.order = binary.LittleEndian
	case binary.BigEndian.Uint32(first[:]) == 84:
		h.order = binary.BigEndian
	default:
		return nil, &Error{WrongFormat, filename, ErrFormat, []string{"parseHeader"}, true}
	}
	o := h.order
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, wrapRead(err, filename, "parseHeader")
	}
	if string(magic[:]) != dcdMagic {
		return nil, &Error{WrongFormat, filename, ErrFormat, []string{"parseHeader"}, true}
	}
	buf := make([]byte, icntrlBytes)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, wrapRead(err, filename, "parseHeader")
	}
	if err := checkTrailer(r, o, 84, filename); err != nil {
		return nil, errDecorate(err, "parseHeader")
	}
	h.nsets = int(int32(o.Uint32(buf[0:])))
	h.istart = int(int32(o.Uint32(buf[4:])))
	h.nsavc = int(int32(o.Uint32(buf[8:])))
	h.nfixed = int(int32(o.Uint32(buf[32:])))
	h.delta = float64(math.Float32frombits(o.Uint32(buf[36:])))
	h.hasCell = o.Uint32(buf[40:]) != 0
	h.fourdim = o.Uint32(buf[44:]) != 0
	h.charmm = int32(o.Uint32(buf[76:]))
	if h.charmm == 0 {
		//X-plor flavored files keep delta as a float64 and lay other
		//fields out differently. Only the CHARMM flavor is supported.
		return nil, &Error{"X-plor flavored DCD files are not supported", filename, ErrFormat, []string{"parseHeader"}, true}
	}
	if h.nsets < 0 {
		return nil, &Error{WrongFormat, filename, ErrFormat, []string{"parseHeader"}, true}
	}
	//title record
	tpayload, err := readRecord(r, o, filename)
	if err != nil {
		return nil, errDecorate(err, "parseHeader")
	}
	if len(tpayload) < 4 {
		return nil, &Error{WrongFormat, filename, ErrFormat, []string{"parseHeader"}, true}
	}
	ntitle := int(int32(o.Uint32(tpayload[0:])))
	if ntitle < 0 || len(tpayload) != 4+titleLineBytes*ntitle {
		return nil, &Error{WrongFormat, filename, ErrFormat, []string{"parseHeader"}, true}
	}
	lines := make([]string, 0, ntitle)
	for i := 0; i < ntitle; i++ {
		chunk := tpayload[4+titleLineBytes*i : 4+titleLineBytes*(i+1)]
		if j := bytes.IndexByte(chunk, 0); j >= 0 {
			chunk = chunk[:j]
		}
		lines = append(lines, strings.TrimRight(string(chunk), " "))
	}
	h.remarks = strings.Join(lines, "\n")
	//natoms record
	var na [1]int32
	if err := readInt32Record(r, o, na[:], filename); err != nil {
		return nil, errDecorate(err, "parseHeader")
	}
	h.natoms = int(na[0])
	if h.natoms <= 0 {
		return nil, &Error{"Trajectory has no atoms", filename, ErrFormat, []string{"parseHeader"}, true}
	}
	if h.nfixed < 0 || h.nfixed >= h.natoms {
		return nil, &Error{"Inconsistent number of fixed atoms", filename, ErrFormat, []string{"parseHeader"}, true}
	}
	fixedBytes := 0
	if h.nfixed > 0 {
		nfree := h.natoms - h.nfixed
		h.free = make([]int32, nfree)
		if err := readInt32Record(r, o, h.free, filename); err != nil {
			return nil, errDecorate(err, "parseHeader")
		}
		for i, v := range h.free {
			if v < 1 || v > int32(h.natoms) {
				return nil, &Error{"Free atom index out of range", filename, ErrFormat, []string{"parseHeader"}, true}
			}
			h.free[i] = v - 1
		}
		fixedBytes = 8 + 4*nfree
	}
	h.size = int64(92 + 12 + titleLineBytes*ntitle + 12 + fixedBytes)
	return h, nil
}

//writeHeader emits the header records for h. Written files never
//declare fixed atoms or a 4th dimension.
func writeHeader(w io.Writer, o binary.ByteOrder, h *header, filename string) error {
	payload := make([]byte, 4+icntrlBytes)
	copy(payload, dcdMagic)
	put := func(off int, v int32) {
		o.PutUint32(payload[4+off:], uint32(v))
	}
	put(0, int32(h.nsets))
	put(4, int32(h.istart))
	put(8, int32(h.nsavc))
	o.PutUint32(payload[4+36:], math.Float32bits(float32(h.delta)))
	if h.hasCell {
		put(40, 1)
	}
	put(76, charmmVersion)
	if err := writeRecord(w, o, payload, filename); err != nil {
		return errDecorate(err, "writeHeader")
	}
	lines := splitRemarks(h.remarks)
	tpayload := make([]byte, 4+titleLineBytes*len(lines))
	o.PutUint32(tpayload, uint32(len(lines)))
	for i, l := range lines {
		copy(tpayload[4+titleLineBytes*i:4+titleLineBytes*(i+1)], l)
	}
	if err := writeRecord(w, o, tpayload, filename); err != nil {
		return errDecorate(err, "writeHeader")
	}
	if err := writeInt32Record(w, o, []int32{int32(h.natoms)}, filename); err != nil {
		return errDecorate(err, "writeHeader")
	}
	return nil
}

//splitRemarks cuts the remarks text into the 80-byte title lines the
//format stores. Empty remarks still produce one blank line.
func splitRemarks(remarks string) []string {
	var out []string
	for _, l := range strings.Split(remarks, "\n") {
		for len(l) > titleLineBytes {
			out = append(out, l[:titleLineBytes])
			l = l[titleLineBytes:]
		}
		out = append(out, l)
	}
	return out
}
