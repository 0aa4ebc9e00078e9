/*
 * timeseries.go, part of godcd
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
	"bufio"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//Request selects which coordinates a timeseries extraction pulls out of
//a trajectory, and the memory layout of the result. It can be read from
//a YAML file with ReadRequest or built by hand; Timeseries checks it
//either way.
type Request struct {
	//Atoms lists the wanted atoms, by zero-based index.
	Atoms []int `yaml:"atoms"`

	//Start is the first frame read. Negative values count from the end.
	Start int `yaml:"start"`

	//Stop is the frame reading stops before. Zero means the end of the
	//trajectory, negative values count from the end.
	Stop int `yaml:"stop"`

	//Skip is the stride between read frames. Zero means every frame.
	Skip int `yaml:"skip"`

	//Order is the axis layout of the result, a permutation of 'a'
	//(atom), 'f' (frame) and 'c' (component). Empty means "afc".
	Order string `yaml:"order"`
}

//ReadRequest reads a YAML extraction request from path.
func ReadRequest(path string) (*Request, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &Error{UnableToOpen + ": " + err.Error(), path, ErrIO, []string{"ReadRequest"}, true}
	}
	defer f.Close()
	q := new(Request)
	dec := yaml.NewDecoder(bufio.NewReader(f))
	if err := dec.Decode(q); err != nil {
		return nil, &Error{err.Error(), path, ErrFormat, []string{"yaml.Decode", "ReadRequest"}, true}
	}
	return q, nil
}

//Check verifies that the request can run against a trajectory of natoms
//atoms and nframes frames. Timeseries calls it, so hand-built requests
//need no separate call.
func (q *Request) Check(natoms, nframes int) error {
	if len(q.Atoms) == 0 {
		return &Error{"Timeseries requires at least one atom", "", ErrInvalidArgument, []string{"Request.Check"}, true}
	}
	for _, a := range q.Atoms {
		if a < 0 || a >= natoms {
			return &Error{fmt.Sprintf("Atom %d out of range for %d atoms", a, natoms), "", ErrIndex, []string{"Request.Check"}, true}
		}
	}
	if q.Order != "" && !orderValid(q.Order) {
		return &Error{fmt.Sprintf("Order %q is not a permutation of \"afc\"", q.Order), "", ErrInvalidArgument, []string{"Request.Check"}, true}
	}
	if _, _, _, err := (Span{q.Start, q.Stop, q.Skip}).resolve(nframes); err != nil {
		return errDecorate(err, "Request.Check")
	}
	return nil
}

//orderValid reports whether order names each of the three axes exactly
//once.
func orderValid(order string) bool {
	if len(order) != 3 {
		return false
	}
	var a, f, c int
	for _, r := range order {
		switch r {
		case 'a':
			a++
		case 'f':
			f++
		case 'c':
			c++
		}
	}
	return a == 1 && f == 1 && c == 1
}

//TimeSeries holds coordinates extracted from a trajectory as one flat
//float64 block, laid out in the axis order the request asked for.
type TimeSeries struct {
	//Order is the axis layout of Data, a permutation of "afc".
	Order string
	//NAtoms is the number of selected atoms, not the number of atoms of
	//the source trajectory.
	NAtoms int
	//NFrames is the number of frames extracted.
	NFrames int
	//Data holds NAtoms*NFrames*3 values.
	Data []float64

	sa, sf, sc int //strides per axis
}

//NewTimeSeries returns an empty timeseries block for natoms selected
//atoms over nframes frames, in the given axis order.
func NewTimeSeries(order string, natoms, nframes int) (*TimeSeries, error) {
	if !orderValid(order) {
		return nil, &Error{fmt.Sprintf("Order %q is not a permutation of \"afc\"", order), "", ErrInvalidArgument, []string{"NewTimeSeries"}, true}
	}
	T := &TimeSeries{Order: order, NAtoms: natoms, NFrames: nframes}
	T.Data = make([]float64, natoms*nframes*3)
	stride := 1
	for i := len(order) - 1; i >= 0; i-- {
		switch order[i] {
		case 'a':
			T.sa = stride
			stride *= natoms
		case 'f':
			T.sf = stride
			stride *= nframes
		case 'c':
			T.sc = stride
			stride *= 3
		}
	}
	return T, nil
}

//At returns one coordinate. atom indexes the selection (not the source
//trajectory), frame the extracted frames, k the component (0 x, 1 y,
//2 z).
func (T *TimeSeries) At(atom, frame, k int) float64 {
	return T.Data[atom*T.sa+frame*T.sf+k*T.sc]
}

//Set stores one coordinate, with the indices of At.
func (T *TimeSeries) Set(atom, frame, k int, v float64) {
	T.Data[atom*T.sa+frame*T.sf+k*T.sc] = v
}

//Shape returns the axis lengths of Data, in the order of Order.
func (T *TimeSeries) Shape() [3]int {
	var s [3]int
	for i, r := range T.Order {
		switch r {
		case 'a':
			s[i] = T.NAtoms
		case 'f':
			s[i] = T.NFrames
		case 'c':
			s[i] = 3
		}
	}
	return s
}

//atomWindow returns the narrowest inclusive row range covering every
//atom of the selection.
func atomWindow(atoms []int) (lo, hi int) {
	lo, hi = atoms[0], atoms[0]
	for _, a := range atoms[1:] {
		if a < lo {
			lo = a
		}
		if a > hi {
			hi = a
		}
	}
	return lo, hi
}

//Timeseries runs q against the trajectory and returns the extracted
//coordinates. Each selected frame is decoded once, in one pass. When
//the selection covers a narrow window of a big system (and no atoms are
//fixed), only that window of each frame is read from disk. Timeseries
//needs a seekable source, and does not disturb the position used by
//Next.
func (D *DCD) Timeseries(q *Request) (*TimeSeries, error) {
	if D.closed {
		return nil, &Error{ClosedTraj, D.filename, ErrClosed, []string{"Timeseries"}, true}
	}
	if !D.readable && !D.seekable {
		return nil, &Error{TrajUnIni, D.filename, ErrNoData, []string{"Timeseries"}, true}
	}
	if !D.seekable {
		return nil, &Error{NotSeekable, D.filename, ErrInvalidArgument, []string{"Timeseries"}, true}
	}
	if q == nil {
		return nil, &Error{"Given nil request", D.filename, ErrInvalidArgument, []string{"Timeseries"}, true}
	}
	if err := q.Check(D.h.natoms, D.h.nsets); err != nil {
		return nil, errDecorate(err, "Timeseries")
	}
	order := q.Order
	if order == "" {
		order = "afc"
	}
	start, stop, step, err := Span{q.Start, q.Stop, q.Skip}.resolve(D.h.nsets)
	if err != nil {
		return nil, errDecorate(err, "Timeseries")
	}
	T, err := NewTimeSeries(order, len(q.Atoms), spanLen(start, stop, step))
	if err != nil {
		return nil, errDecorate(err, "Timeseries")
	}
	lo, hi := atomWindow(q.Atoms)
	width := hi - lo + 1
	partial := D.h.nfixed == 0 && width < D.h.natoms
	var rows [3][]float32
	if partial {
		for b := 0; b < 3; b++ {
			rows[b] = make([]float32, width)
		}
	}
	j := 0
	for i := start; i < stop; i += step {
		if partial {
			if err := D.readRows(i, lo, hi, &rows); err != nil {
				return nil, errDecorate(err, "Timeseries")
			}
			for ai, a := range q.Atoms {
				T.Set(ai, j, 0, float64(rows[0][a-lo]))
				T.Set(ai, j, 1, float64(rows[1][a-lo]))
				T.Set(ai, j, 2, float64(rows[2][a-lo]))
			}
		} else {
			if err := D.FrameAt(nil, i); err != nil {
				return nil, errDecorate(err, "Timeseries")
			}
			for ai, a := range q.Atoms {
				T.Set(ai, j, 0, float64(D.cur.X[a]))
				T.Set(ai, j, 1, float64(D.cur.Y[a]))
				T.Set(ai, j, 2, float64(D.cur.Z[a]))
			}
		}
		j++
	}
	return T, nil
}
