/*
 * seek_test.go, part of godcd
 *
 * Copyright 2024 Raul Mera Adasme <raul_dot_mera_changeforat_usach_dot_cl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 */

package dcd

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

type synthOpts struct {
	order  binary.ByteOrder
	natoms int
	nsets  int //as declared in the header, not necessarily the truth
	nfixed int
	free   []int32 //1-based, as stored on disk
	cell   bool
}

//buildDCD assembles a whole DCD file byte by byte, so tests control
//exactly what is on disk. Each frame gives its 3 coordinate blocks as
//they appear in the file (free atoms only, past the first frame of a
//fixed-atom file); cells go in raw on-disk order, one per frame when
//s.cell is set.
func buildDCD(s synthOpts, frames [][3][]float32, cells [][6]float64) []byte {
	w := new(bytes.Buffer)
	put := func(v int32) {
		binary.Write(w, s.order, v)
	}
	put(84)
	w.WriteString("CORD")
	icntrl := make([]byte, 80)
	s.order.PutUint32(icntrl[0:], uint32(s.nsets))
	s.order.PutUint32(icntrl[4:], 0) //istart
	s.order.PutUint32(icntrl[8:], 1) //nsavc
	s.order.PutUint32(icntrl[32:], uint32(s.nfixed))
	s.order.PutUint32(icntrl[36:], math.Float32bits(1.0))
	if s.cell {
		s.order.PutUint32(icntrl[40:], 1)
	}
	s.order.PutUint32(icntrl[76:], 24)
	w.Write(icntrl)
	put(84)
	put(84) //title record: ntitle plus one blank line
	put(1)
	w.Write(make([]byte, 80))
	put(84)
	put(4)
	put(int32(s.natoms))
	put(4)
	if s.nfixed > 0 {
		put(int32(4 * len(s.free)))
		binary.Write(w, s.order, s.free)
		put(int32(4 * len(s.free)))
	}
	for i, f := range frames {
		if s.cell {
			put(48)
			binary.Write(w, s.order, cells[i][:])
			put(48)
		}
		for b := 0; b < 3; b++ {
			n := int32(4 * len(f[b]))
			put(n)
			binary.Write(w, s.order, f[b])
			put(n)
		}
	}
	return w.Bytes()
}

//A file with fixed atoms carries only the free ones past the first
//frame; reads past it must merge them with the cached full frame.
func TestFixedAtoms(Te *testing.T) {
	s := synthOpts{
		order:  binary.LittleEndian,
		natoms: 4,
		nsets:  2,
		nfixed: 2,
		free:   []int32{2, 4},
	}
	frames := [][3][]float32{
		{{0, 1, 2, 3}, {10, 11, 12, 13}, {20, 21, 22, 23}},
		{{101, 103}, {111, 113}, {121, 123}},
	}
	path := filepath.Join(Te.TempDir(), "fixed.dcd")
	if err := os.WriteFile(path, buildDCD(s, frames, nil), 0644); err != nil {
		Te.Fatal(err)
	}
	traj, err := New(path)
	if err != nil {
		Te.Fatal(err)
	}
	defer traj.Close()
	if traj.Len() != 4 || traj.NFrames() != 2 {
		Te.Fatalf("got %d atoms and %d frames, want 4 and 2", traj.Len(), traj.NFrames())
	}
	if traj.Header().NFixed != 2 {
		Te.Errorf("got %d fixed atoms, want 2", traj.Header().NFixed)
	}
	read := NewFrame(4)
	if err := traj.FrameAt(read, 1); err != nil {
		Te.Fatal(err)
	}
	wantX := []float32{0, 101, 2, 103}
	wantY := []float32{10, 111, 12, 113}
	wantZ := []float32{20, 121, 22, 123}
	for a := 0; a < 4; a++ {
		if read.X[a] != wantX[a] || read.Y[a] != wantY[a] || read.Z[a] != wantZ[a] {
			Te.Errorf("atom %d: got (%v %v %v), want (%v %v %v)",
				a, read.X[a], read.Y[a], read.Z[a], wantX[a], wantY[a], wantZ[a])
		}
	}
	//the full first frame must come out untouched
	if err := traj.FrameAt(read, 0); err != nil {
		Te.Fatal(err)
	}
	for a := 0; a < 4; a++ {
		if read.X[a] != frames[0][0][a] {
			Te.Errorf("frame 0 atom %d: got %v, want %v", a, read.X[a], frames[0][0][a])
		}
	}
}

func TestBigEndian(Te *testing.T) {
	s := synthOpts{
		order:  binary.BigEndian,
		natoms: 2,
		nsets:  1,
		cell:   true,
	}
	frames := [][3][]float32{
		{{1.5, 2.5}, {3.5, 4.5}, {5.5, 6.5}},
	}
	//canonical (10 11 12 80 85 100) in the NAMD on-disk layout
	cells := [][6]float64{{10, 100, 11, 85, 80, 12}}
	path := filepath.Join(Te.TempDir(), "be.dcd")
	if err := os.WriteFile(path, buildDCD(s, frames, cells), 0644); err != nil {
		Te.Fatal(err)
	}
	traj, err := New(path)
	if err != nil {
		Te.Fatal(err)
	}
	defer traj.Close()
	read := NewFrame(2)
	if err := traj.Next(read); err != nil {
		Te.Fatal(err)
	}
	if read.X[0] != 1.5 || read.Y[1] != 4.5 || read.Z[1] != 6.5 {
		Te.Errorf("got (%v %v %v)", read.X[0], read.Y[1], read.Z[1])
	}
	if read.Cell != (UnitCell{10, 11, 12, 80, 85, 100}) {
		Te.Errorf("got cell %v", read.Cell)
	}
}

//A zero in the version field marks an X-plor flavored file, which the
//package rejects.
func TestXplorRejected(Te *testing.T) {
	path := filepath.Join(Te.TempDir(), "xplor.dcd")
	if err := writeTestDCD(path, testFrames(3, 2), nil); err != nil {
		Te.Fatal(err)
	}
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		Te.Fatal(err)
	}
	//the version lives at byte 76 of icntrl, 84 from the file start
	if _, err := f.WriteAt(make([]byte, 4), 84); err != nil {
		Te.Fatal(err)
	}
	f.Close()
	if _, err := New(path); !errors.Is(err, ErrFormat) {
		Te.Errorf("got %v, want an ErrFormat", err)
	}
}

func TestFrameAt(Te *testing.T) {
	path := filepath.Join(Te.TempDir(), "at.dcd")
	frames := testFrames(3, 5)
	if err := writeTestDCD(path, frames, nil); err != nil {
		Te.Fatal(err)
	}
	traj, err := New(path)
	if err != nil {
		Te.Fatal(err)
	}
	defer traj.Close()
	read := NewFrame(3)
	//negative indices count from the end
	if err := traj.FrameAt(read, -1); err != nil {
		Te.Fatal(err)
	}
	if read.X[0] != frames[4].X[0] {
		Te.Errorf("frame -1: got %v, want %v", read.X[0], frames[4].X[0])
	}
	if err := traj.FrameAt(read, -5); err != nil {
		Te.Fatal(err)
	}
	if read.X[0] != frames[0].X[0] {
		Te.Errorf("frame -5: got %v, want %v", read.X[0], frames[0].X[0])
	}
	if err := traj.FrameAt(read, 5); !errors.Is(err, ErrIndex) {
		Te.Errorf("frame 5: %v", err)
	}
	if err := traj.FrameAt(read, -6); !errors.Is(err, ErrIndex) {
		Te.Errorf("frame -6: %v", err)
	}
	//random access must not move the iteration cursor
	if err := traj.Next(read); err != nil {
		Te.Fatal(err)
	}
	if err := traj.Next(read); err != nil {
		Te.Fatal(err)
	}
	if err := traj.FrameAt(read, 4); err != nil {
		Te.Fatal(err)
	}
	if err := traj.Next(read); err != nil {
		Te.Fatal(err)
	}
	if read.X[0] != frames[2].X[0] {
		Te.Errorf("after FrameAt, Next got %v, want frame 2 (%v)", read.X[0], frames[2].X[0])
	}
	//and repeated reads of one frame must agree
	a := NewFrame(3)
	b := NewFrame(3)
	if err := traj.FrameAt(a, 3); err != nil {
		Te.Fatal(err)
	}
	if err := traj.FrameAt(b, 3); err != nil {
		Te.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if a.X[i] != b.X[i] || a.Y[i] != b.Y[i] || a.Z[i] != b.Z[i] {
			Te.Error("two reads of frame 3 disagree")
		}
	}
}

func TestSkip(Te *testing.T) {
	path := filepath.Join(Te.TempDir(), "skip.dcd")
	if err := writeTestDCD(path, testFrames(3, 5), nil); err != nil {
		Te.Fatal(err)
	}
	traj, err := New(path)
	if err != nil {
		Te.Fatal(err)
	}
	defer traj.Close()
	traj.Skip(2)
	if traj.Skip() != 2 {
		Te.Errorf("got skip %d, want 2", traj.Skip())
	}
	traj.Skip(0) //ignored
	if traj.Skip() != 2 {
		Te.Errorf("skip changed to %d by an invalid value", traj.Skip())
	}
	read := NewFrame(3)
	var steps []int64
	for {
		err := traj.Next(read)
		if err != nil {
			if _, ok := err.(LastFrameError); !ok {
				Te.Error(err)
			}
			break
		}
		steps = append(steps, read.Step)
	}
	want := []int64{0, 2, 4}
	if len(steps) != len(want) {
		Te.Fatalf("got steps %v, want %v", steps, want)
	}
	for i := range want {
		if steps[i] != want[i] {
			Te.Fatalf("got steps %v, want %v", steps, want)
		}
	}
}

//Truncated or unpatched files still open; the frame count comes from
//the file size when the header disagrees with it.
func TestFrameCountRecovery(Te *testing.T) {
	dir := Te.TempDir()
	//196 header bytes plus 116 per frame for 3 atoms with a cell
	cut := filepath.Join(dir, "cut.dcd")
	if err := writeTestDCD(cut, testFrames(3, 5), nil); err != nil {
		Te.Fatal(err)
	}
	if err := os.Truncate(cut, 196+2*116+30); err != nil {
		Te.Fatal(err)
	}
	traj, err := New(cut)
	if err != nil {
		Te.Fatal(err)
	}
	if traj.NFrames() != 2 {
		Te.Errorf("truncated file: got %d frames, want 2", traj.NFrames())
	}
	n := 0
	for {
		if err := traj.Next(nil); err != nil {
			break
		}
		n++
	}
	if n != 2 {
		Te.Errorf("read %d frames from the truncated file, want 2", n)
	}
	traj.Close()
	//a zero frame count, as left by a writer that never closed
	raw := filepath.Join(dir, "raw.dcd")
	if err := writeTestDCD(raw, testFrames(3, 5), nil); err != nil {
		Te.Fatal(err)
	}
	f, err := os.OpenFile(raw, os.O_RDWR, 0)
	if err != nil {
		Te.Fatal(err)
	}
	if _, err := f.WriteAt(make([]byte, 4), nsetsOffset); err != nil {
		Te.Fatal(err)
	}
	f.Close()
	traj, err = New(raw)
	if err != nil {
		Te.Fatal(err)
	}
	defer traj.Close()
	if traj.NFrames() != 5 {
		Te.Errorf("unpatched file: got %d frames, want 5", traj.NFrames())
	}
}

func TestZeroSize(Te *testing.T) {
	path := filepath.Join(Te.TempDir(), "empty.dcd")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		Te.Fatal(err)
	}
	if _, err := New(path); !errors.Is(err, ErrIO) {
		Te.Errorf("got %v, want an ErrIO", err)
	}
}
