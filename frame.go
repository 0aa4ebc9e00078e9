/*
 * frame.go, part of godcd
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
	"gonum.org/v1/gonum/mat"
)

//Frame holds one snapshot of a trajectory. The coordinates are kept in
//the column blocks the DCD format uses on disk, one slice per axis,
//with one entry per atom. Step is the simulation step of the snapshot
//as derived from the file header, and Cell its periodic cell in
//canonical order (zeroed when the file carries no cell records).
type Frame struct {
	Step    int64
	X, Y, Z []float32
	Cell    UnitCell
}

//NewFrame returns a Frame with room for natoms atoms.
func NewFrame(natoms int) *Frame {
	return &Frame{
		X: make([]float32, natoms),
		Y: make([]float32, natoms),
		Z: make([]float32, natoms),
	}
}

//N returns the number of atoms the frame holds.
func (F *Frame) N() int {
	return len(F.X)
}

//Clone returns a deep copy of the frame.
func (F *Frame) Clone() *Frame {
	c := NewFrame(F.N())
	c.copyFrom(F)
	return c
}

func (F *Frame) copyFrom(src *Frame) {
	copy(F.X, src.X)
	copy(F.Y, src.Y)
	copy(F.Z, src.Z)
	F.Cell = src.Cell
	F.Step = src.Step
}

//Matrix returns the coordinates of the frame as a newly allocated
//natoms x 3 gonum matrix, in float64.
func (F *Frame) Matrix() *mat.Dense {
	n := F.N()
	m := mat.NewDense(n, 3, nil)
	for i := 0; i < n; i++ {
		m.Set(i, 0, float64(F.X[i]))
		m.Set(i, 1, float64(F.Y[i]))
		m.Set(i, 2, float64(F.Z[i]))
	}
	return m
}

//SetMatrix fills the coordinate blocks of the frame from an natoms x 3
//matrix, converting to the single precision of the format. The cell and
//step of the frame are not touched.
func (F *Frame) SetMatrix(m mat.Matrix) error {
	r, c := m.Dims()
	if r != F.N() || c != 3 {
		return &Error{WrongDims, "", ErrDimensionMismatch, []string{"SetMatrix"}, true}
	}
	for i := 0; i < r; i++ {
		F.X[i] = float32(m.At(i, 0))
		F.Y[i] = float32(m.At(i, 1))
		F.Z[i] = float32(m.At(i, 2))
	}
	return nil
}
