/*
 * binio.go, part of godcd
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
	"encoding/binary"
	"errors"
	"io"
)

//DCD files are sequences of Fortran records: a 4-byte length marker,
//the payload, and the same marker again closing the record. The
//functions here read and write such records and turn the low-level
//failures into the package's error kinds.

//wrapRead classifies a failed binary read. Data that runs out
//mid-record is a truncated-record error, anything else an i/o failure.
func wrapRead(err error, filename, caller string) *Error {
	kind := ErrIO
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		kind = ErrShortRead
	}
	return &Error{err.Error(), filename, kind, []string{caller}, true}
}

//readMarker reads one record marker.
func readMarker(r io.Reader, o binary.ByteOrder, filename string) (int32, error) {
	var m int32
	if err := binary.Read(r, o, &m); err != nil {
		return 0, wrapRead(err, filename, "readMarker")
	}
	return m, nil
}

//readMarkerOrEOF reads a record marker but hands io.EOF back untouched
//when the source ends cleanly right at the marker. That is how the end
//of a healthy trajectory looks from a sequential source.
func readMarkerOrEOF(r io.Reader, o binary.ByteOrder, filename string) (int32, error) {
	var m int32
	err := binary.Read(r, o, &m)
	if err == io.EOF {
		return 0, io.EOF
	}
	if err != nil {
		return 0, wrapRead(err, filename, "readMarker")
	}
	return m, nil
}

//checkTrailer reads the marker that closes a record and verifies that
//it matches the one that opened it.
func checkTrailer(r io.Reader, o binary.ByteOrder, want int32, filename string) error {
	m, err := readMarker(r, o, filename)
	if err != nil {
		return errDecorate(err, "checkTrailer")
	}
	if m != want {
		return &Error{SecurityCheckFailed, filename, ErrFormat, []string{"checkTrailer"}, true}
	}
	return nil
}

//readRecord reads a whole variable-length record and returns its
//payload.
func readRecord(r io.Reader, o binary.ByteOrder, filename string) ([]byte, error) {
	m, err := readMarker(r, o, filename)
	if err != nil {
		return nil, errDecorate(err, "readRecord")
	}
	if m < 0 {
		return nil, &Error{WrongFormat, filename, ErrFormat, []string{"readRecord"}, true}
	}
	buf := make([]byte, int(m))
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, wrapRead(err, filename, "readRecord")
	}
	if err := checkTrailer(r, o, m, filename); err != nil {
		return nil, errDecorate(err, "readRecord")
	}
	return buf, nil
}

//readFloat32Record reads a record that must contain exactly len(dst)
//float32 values.
func readFloat32Record(r io.Reader, o binary.ByteOrder, dst []float32, filename string) error {
	want := int32(4 * len(dst))
	m, err := readMarker(r, o, filename)
	if err != nil {
		return errDecorate(err, "readFloat32Record")
	}
	if m != want {
		return &Error{WrongFormat, filename, ErrFormat, []string{"readFloat32Record"}, true}
	}
	if err := binary.Read(r, o, dst); err != nil {
		return wrapRead(err, filename, "readFloat32Record")
	}
	return checkTrailer(r, o, want, filename)
}

//readInt32Record reads a record that must contain exactly len(dst)
//int32 values.
func readInt32Record(r io.Reader, o binary.ByteOrder, dst []int32, filename string) error {
	want := int32(4 * len(dst))
	m, err := readMarker(r, o, filename)
	if err != nil {
		return errDecorate(err, "readInt32Record")
	}
	if m != want {
		return &Error{WrongFormat, filename, ErrFormat, []string{"readInt32Record"}, true}
	}
	if err := binary.Read(r, o, dst); err != nil {
		return wrapRead(err, filename, "readInt32Record")
	}
	return checkTrailer(r, o, want, filename)
}

//wrapWrite wraps a failed binary write.
func wrapWrite(err error, filename, caller string) *Error {
	return &Error{err.Error(), filename, ErrIO, []string{caller}, true}
}

//writeRecord writes a payload framed by its length markers.
func writeRecord(w io.Writer, o binary.ByteOrder, payload []byte, filename string) error {
	m := int32(len(payload))
	if err := binary.Write(w, o, m); err != nil {
		return wrapWrite(err, filename, "writeRecord")
	}
	if _, err := w.Write(payload); err != nil {
		return wrapWrite(err, filename, "writeRecord")
	}
	if err := binary.Write(w, o, m); err != nil {
		return wrapWrite(err, filename, "writeRecord")
	}
	return nil
}

//writeFloat32Record writes a block of float32 framed by its length
//markers.
func writeFloat32Record(w io.Writer, o binary.ByteOrder, xs []float32, filename string) error {
	m := int32(4 * len(xs))
	if err := binary.Write(w, o, m); err != nil {
		return wrapWrite(err, filename, "writeFloat32Record")
	}
	if err := binary.Write(w, o, xs); err != nil {
		return wrapWrite(err, filename, "writeFloat32Record")
	}
	if err := binary.Write(w, o, m); err != nil {
		return wrapWrite(err, filename, "writeFloat32Record")
	}
	return nil
}

//writeFloat64Record writes a block of float64 framed by its length
//markers.
func writeFloat64Record(w io.Writer, o binary.ByteOrder, xs []float64, filename string) error {
	m := int32(8 * len(xs))
	if err := binary.Write(w, o, m); err != nil {
		return wrapWrite(err, filename, "writeFloat64Record")
	}
	if err := binary.Write(w, o, xs); err != nil {
		return wrapWrite(err, filename, "writeFloat64Record")
	}
	if err := binary.Write(w, o, m); err != nil {
		return wrapWrite(err, filename, "writeFloat64Record")
	}
	return nil
}

//writeInt32Record writes a block of int32 framed by its length markers.
func writeInt32Record(w io.Writer, o binary.ByteOrder, xs []int32, filename string) error {
	m := int32(4 * len(xs))
	if err := binary.Write(w, o, m); err != nil {
		return wrapWrite(err, filename, "writeInt32Record")
	}
	if err := binary.Write(w, o, xs); err != nil {
		return wrapWrite(err, filename, "writeInt32Record")
	}
	if err := binary.Write(w, o, m); err != nil {
		return wrapWrite(err, filename, "writeInt32Record")
	}
	return nil
}
