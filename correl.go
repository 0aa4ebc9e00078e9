/*
 * correl.go, part of godcd
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
	"fmt"

	"gonum.org/v1/gonum/mat"
)

//Collection is what Correl populates: a set of timeseries defined over
//groups of atoms, whose numerical contents are the collection's own
//business. The trajectory side only pulls coordinates and hands them
//over, so the same trajectory pass can feed collections computing
//anything from plain coordinates to angles or dipoles.
//
//AtomList returns every atom the collection wants, zero-based and
//grouped by series; AtomCounts says how many of those belong to each
//series, in order. FormatSpec carries one code per series naming what
//the series computes, and AuxData one auxiliary value per series; both
//belong to the collection's vocabulary and are only checked for length
//here. DataSize is the number of values the collection stores per
//frame, Bounds the inclusive atom window covering AtomList. Collect is
//called once per selected frame, in order, with the frame's position
//within the selection and the coordinates of the AtomList atoms as an
//len(AtomList) x 3 matrix, which the collection must not retain.
type Collection interface {
	AtomList() []int
	AtomCounts() []int
	FormatSpec() string
	AuxData() []float64
	DataSize() int
	Bounds() (lo, hi int)
	Collect(frame int, pos *mat.Dense) error
}

//Correl feeds the coordinates of the collection's atoms to the
//collection, one selected frame at a time, so it can compute and store
//its timeseries. The frames fed are those of the span. When the
//collection's atoms sit in a narrow window of a big system (and no
//atoms are fixed), only that window of each frame is read from disk.
//Correl needs a seekable source and does not disturb the position used
//by Next.
func (D *DCD) Correl(c Collection, s Span) error {
	if D.closed {
		return &Error{ClosedTraj, D.filename, ErrClosed, []string{"Correl"}, true}
	}
	if !D.seekable {
		return &Error{NotSeekable, D.filename, ErrInvalidArgument, []string{"Correl"}, true}
	}
	if c == nil {
		return &Error{"Given nil collection", D.filename, ErrInvalidArgument, []string{"Correl"}, true}
	}
	atoms := c.AtomList()
	counts := c.AtomCounts()
	if len(atoms) == 0 {
		return &Error{"Collection selects no atoms", D.filename, ErrInvalidArgument, []string{"Correl"}, true}
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	if total != len(atoms) {
		return &Error{"Atom counts of the collection do not add up to its atom list", D.filename, ErrInvalidArgument, []string{"Correl"}, true}
	}
	if len(c.FormatSpec()) != len(counts) || len(c.AuxData()) != len(counts) {
		return &Error{"Collection needs one format code, one atom count and one aux value per series", D.filename, ErrInvalidArgument, []string{"Correl"}, true}
	}
	if c.DataSize() <= 0 {
		return &Error{"Collection has no backing data", D.filename, ErrNoData, []string{"Correl"}, true}
	}
	lo, hi := c.Bounds()
	if lo < 0 || hi < lo || hi >= D.h.natoms {
		return &Error{fmt.Sprintf("Collection bounds [%d, %d] out of range for %d atoms", lo, hi, D.h.natoms), D.filename, ErrIndex, []string{"Correl"}, true}
	}
	for _, a := range atoms {
		if a < lo || a > hi {
			return &Error{fmt.Sprintf("Atom %d outside the collection bounds [%d, %d]", a, lo, hi), D.filename, ErrIndex, []string{"Correl"}, true}
		}
	}
	start, stop, step, err := s.resolve(D.h.nsets)
	if err != nil {
		return errDecorate(err, "Correl")
	}
	width := hi - lo + 1
	partial := D.h.nfixed == 0 && width < D.h.natoms
	var rows [3][]float32
	if partial {
		for b := 0; b < 3; b++ {
			rows[b] = make([]float32, width)
		}
	}
	pos := mat.NewDense(len(atoms), 3, nil)
	j := 0
	for i := start; i < stop; i += step {
		if partial {
			if err := D.readRows(i, lo, hi, &rows); err != nil {
				return errDecorate(err, "Correl")
			}
			for ai, a := range atoms {
				pos.Set(ai, 0, float64(rows[0][a-lo]))
				pos.Set(ai, 1, float64(rows[1][a-lo]))
				pos.Set(ai, 2, float64(rows[2][a-lo]))
			}
		} else {
			if err := D.FrameAt(nil, i); err != nil {
				return errDecorate(err, "Correl")
			}
			for ai, a := range atoms {
				pos.Set(ai, 0, float64(D.cur.X[a]))
				pos.Set(ai, 1, float64(D.cur.Y[a]))
				pos.Set(ai, 2, float64(D.cur.Z[a]))
			}
		}
		if err := c.Collect(j, pos); err != nil {
			return errDecorate(err, "Correl")
		}
		j++
	}
	return nil
}
