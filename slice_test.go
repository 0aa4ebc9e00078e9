/*
 * slice_test.go, part of godcd
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
	"errors"
	"path/filepath"
	"testing"
)

//scanX collects the first X coordinate of every frame the sequence
//yields.
func scanX(seq *FrameSeq) []float32 {
	var xs []float32
	for seq.Scan() {
		xs = append(xs, seq.Frame().X[0])
	}
	return xs
}

func TestSlice(Te *testing.T) {
	path := filepath.Join(Te.TempDir(), "slice.dcd")
	frames := testFrames(3, 5)
	if err := writeTestDCD(path, frames, nil); err != nil {
		Te.Fatal(err)
	}
	traj, err := New(path)
	if err != nil {
		Te.Fatal(err)
	}
	defer traj.Close()
	//a [1:3) span yields exactly frames 1 and 2
	seq, err := traj.Slice(Span{Start: 1, Stop: 3})
	if err != nil {
		Te.Fatal(err)
	}
	if seq.Len() != 2 {
		Te.Errorf("got len %d, want 2", seq.Len())
	}
	xs := scanX(seq)
	if err := seq.Err(); err != nil {
		Te.Fatal(err)
	}
	if len(xs) != 2 || xs[0] != frames[1].X[0] || xs[1] != frames[2].X[0] {
		Te.Errorf("got %v, want [%v %v]", xs, frames[1].X[0], frames[2].X[0])
	}
	//a sequence can be rewound and scanned again
	seq.Reset()
	xs2 := scanX(seq)
	if len(xs2) != 2 || xs2[0] != xs[0] || xs2[1] != xs[1] {
		Te.Errorf("rescan got %v, want %v", xs2, xs)
	}
	//the zero span with a stride takes every other frame
	seq, err = traj.Slice(Span{Step: 2})
	if err != nil {
		Te.Fatal(err)
	}
	if seq.Len() != 3 {
		Te.Errorf("got len %d, want 3", seq.Len())
	}
	xs = scanX(seq)
	if len(xs) != 3 || xs[0] != frames[0].X[0] || xs[1] != frames[2].X[0] || xs[2] != frames[4].X[0] {
		Te.Errorf("got %v", xs)
	}
	//negative bounds count from the end
	seq, err = traj.Slice(Span{Start: -2})
	if err != nil {
		Te.Fatal(err)
	}
	xs = scanX(seq)
	if len(xs) != 2 || xs[0] != frames[3].X[0] || xs[1] != frames[4].X[0] {
		Te.Errorf("got %v, want the last two frames", xs)
	}
	//an empty window scans nothing and reports no error
	seq, err = traj.Slice(Span{Start: 4, Stop: 2})
	if err != nil {
		Te.Fatal(err)
	}
	if seq.Len() != 0 {
		Te.Errorf("got len %d, want 0", seq.Len())
	}
	if seq.Scan() {
		Te.Error("Scan returned true on an empty window")
	}
	if seq.Err() != nil {
		Te.Error(seq.Err())
	}
	//negative steps are rejected
	if _, err := traj.Slice(Span{Step: -1}); !errors.Is(err, ErrInvalidArgument) {
		Te.Errorf("negative step: %v", err)
	}
	//bounds past the ends clamp instead of failing
	seq, err = traj.Slice(Span{Start: -100, Stop: 100})
	if err != nil {
		Te.Fatal(err)
	}
	if seq.Len() != 5 {
		Te.Errorf("got len %d, want 5", seq.Len())
	}
}

//Two sequences over one reader interleave without stepping on each
//other's position.
func TestSliceInterleaved(Te *testing.T) {
	path := filepath.Join(Te.TempDir(), "inter.dcd")
	frames := testFrames(2, 6)
	if err := writeTestDCD(path, frames, nil); err != nil {
		Te.Fatal(err)
	}
	traj, err := New(path)
	if err != nil {
		Te.Fatal(err)
	}
	defer traj.Close()
	even, err := traj.Slice(Span{Step: 2})
	if err != nil {
		Te.Fatal(err)
	}
	odd, err := traj.Slice(Span{Start: 1, Step: 2})
	if err != nil {
		Te.Fatal(err)
	}
	var got []float32
	for even.Scan() {
		got = append(got, even.Frame().X[0])
		if odd.Scan() {
			got = append(got, odd.Frame().X[0])
		}
	}
	if err := even.Err(); err != nil {
		Te.Fatal(err)
	}
	if err := odd.Err(); err != nil {
		Te.Fatal(err)
	}
	if len(got) != 6 {
		Te.Fatalf("got %d frames, want 6", len(got))
	}
	for i, x := range got {
		if x != frames[i].X[0] {
			Te.Errorf("position %d: got %v, want %v", i, x, frames[i].X[0])
		}
	}
}
