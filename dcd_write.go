/*
 * dcd_write.go, part of godcd
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
	"io"
	"os"
	"runtime"

	"gonum.org/v1/gonum/mat"
)

//WriterOptions carries the tunable parts of a new trajectory. Its
//accessors both set (when given a value) and return each option, and
//remember what was set explicitly, which is how Writer tells inherited
//values from chosen ones.
type WriterOptions struct {
	start        int
	step         int
	delta        float64
	dt           float64
	remarks      string
	cell         bool
	cellOrder    CellOrder
	setStart     bool
	setStep      bool
	setDelta     bool
	setDt        bool
	setRemarks   bool
	setCell      bool
	setCellOrder bool
}

//DefaultWriterOptions returns the options used when none are given:
//first step 0, one simulation step between frames, a delta of 1 AKMA
//unit, a cell record on every frame, and the NAMD cell layout.
func DefaultWriterOptions() *WriterOptions {
	return &WriterOptions{
		start:     0,
		step:      1,
		delta:     1.0,
		remarks:   "Written with godcd (https://github.com/rmera/godcd)",
		cell:      true,
		cellOrder: NAMDCellOrder,
	}
}

//Start sets (when given) and returns the simulation step of the first
//frame.
func (O *WriterOptions) Start(v ...int) int {
	if len(v) != 0 {
		O.start = v[0]
		O.setStart = true
	}
	return O.start
}

//Step sets (when given) and returns the simulation steps between saved
//frames. Values below 1 are ignored.
func (O *WriterOptions) Step(v ...int) int {
	if len(v) != 0 && v[0] >= 1 {
		O.step = v[0]
		O.setStep = true
	}
	return O.step
}

//Delta sets (when given) and returns the integration timestep, in AKMA
//units.
func (O *WriterOptions) Delta(v ...float64) float64 {
	if len(v) != 0 {
		O.delta = v[0]
		O.setDelta = true
	}
	return O.delta
}

//Dt sets (when given) and returns the time between frames in
//picoseconds. A set Dt overrides Step and Delta when the writer is
//created; non-positive values are rejected there.
func (O *WriterOptions) Dt(v ...float64) float64 {
	if len(v) != 0 {
		O.dt = v[0]
		O.setDt = true
	}
	return O.dt
}

//Remarks sets (when given) and returns the text stored in the title
//records of the file.
func (O *WriterOptions) Remarks(v ...string) string {
	if len(v) != 0 {
		O.remarks = v[0]
		O.setRemarks = true
	}
	return O.remarks
}

//UnitCell sets (when given) and returns whether every frame carries a
//cell record.
func (O *WriterOptions) UnitCell(v ...bool) bool {
	if len(v) != 0 {
		O.cell = v[0]
		O.setCell = true
	}
	return O.cell
}

//CellOrder sets (when given) and returns the on-disk layout for cell
//records. Orders that are not a permutation of the 6 slots are ignored.
func (O *WriterOptions) CellOrder(v ...CellOrder) CellOrder {
	if len(v) != 0 && v[0].valid() {
		O.cellOrder = v[0]
		O.setCellOrder = true
	}
	return O.cellOrder
}

//DCDW is a DCD trajectory opened for writing. Frames go in through
//WNext; Close patches the frame count into the header and must run for
//the file to be well formed. A finalizer backs Close up, best effort,
//for writers that just go out of scope.
type DCDW struct {
	filename string
	f        *os.File
	endian   binary.ByteOrder
	natoms   int
	opt      *WriterOptions
	frames   int
	staged   *Frame
	writable bool
	closed   bool
}

//NewWriter creates filename and writes a DCD header for natoms atoms,
//leaving the frame count at zero until Close patches it. Extra options
//go in o (only the first is used). A zero natoms means the caller built
//an empty system, a negative one that the count was never filled in;
//the two get different errors.
func NewWriter(filename string, natoms int, o ...*WriterOptions) (*DCDW, error) {
	if natoms == 0 {
		return nil, &Error{NoAtoms, filename, ErrInvalidArgument, []string{"NewWriter"}, true}
	}
	if natoms < 0 {
		return nil, &Error{AtomsRequired, filename, ErrInvalidArgument, []string{"NewWriter"}, true}
	}
	W := new(DCDW)
	W.filename = filename
	W.natoms = natoms
	W.endian = binary.LittleEndian
	W.opt = DefaultWriterOptions()
	if len(o) != 0 && o[0] != nil {
		W.opt = o[0]
	}
	if W.opt.setDt {
		if W.opt.dt <= 0 {
			return nil, &Error{"Dt must be positive", filename, ErrInvalidArgument, []string{"NewWriter"}, true}
		}
		//a Dt means exactly one step between frames, Dt long
		W.opt.step = 1
		delta, err := Convert(W.opt.dt, "ps", "akma")
		if err != nil {
			return nil, errDecorate(err, "NewWriter")
		}
		W.opt.delta = delta
	}
	if err := W.initWrite(); err != nil {
		return nil, errDecorate(err, "NewWriter")
	}
	runtime.SetFinalizer(W, func(w *DCDW) {
		_ = w.Close()
	})
	return W, nil
}

func (W *DCDW) initWrite() error {
	f, err := os.Create(W.filename)
	if err != nil {
		return &Error{UnableToOpen + ": " + err.Error(), W.filename, ErrIO, []string{"initWrite"}, true}
	}
	W.f = f
	h := &header{
		natoms:  W.natoms,
		nsets:   0, //patched by Close
		istart:  W.opt.start,
		nsavc:   W.opt.step,
		delta:   W.opt.delta,
		hasCell: W.opt.cell,
		remarks: W.opt.remarks,
		order:   W.endian,
	}
	if err := writeHeader(W.f, W.endian, h, W.filename); err != nil {
		W.f.Close()
		return errDecorate(err, "initWrite")
	}
	W.writable = true
	return nil
}

//WNext writes f as the next frame of the trajectory. A nil f writes the
//staged frame (see SetFrame) instead. When the file carries cell
//records, the frame's canonical cell is scattered into the configured
//on-disk layout.
func (W *DCDW) WNext(f *Frame) error {
	if W.closed {
		return &Error{ClosedTraj, W.filename, ErrClosed, []string{"WNext"}, true}
	}
	if !W.writable {
		return &Error{WriterUnIni, W.filename, ErrNoData, []string{"WNext"}, true}
	}
	if f == nil {
		f = W.staged
	}
	if f == nil {
		return &Error{NilCoordinates, W.filename, ErrNoData, []string{"WNext"}, true}
	}
	if f.N() != W.natoms {
		return &Error{WrongDims, W.filename, ErrDimensionMismatch, []string{"WNext"}, true}
	}
	if W.opt.cell {
		raw := W.opt.cellOrder.FromCanonical(f.Cell)
		if err := writeFloat64Record(W.f, W.endian, raw[:], W.filename); err != nil {
			return errDecorate(err, "WNext")
		}
	}
	if err := writeFloat32Record(W.f, W.endian, f.X, W.filename); err != nil {
		return errDecorate(err, "WNext")
	}
	if err := writeFloat32Record(W.f, W.endian, f.Y, W.filename); err != nil {
		return errDecorate(err, "WNext")
	}
	if err := writeFloat32Record(W.f, W.endian, f.Z, W.filename); err != nil {
		return errDecorate(err, "WNext")
	}
	W.frames++
	return nil
}

//SetFrame stages f, so later calls to WNext(nil) and WNextDense write
//through it.
func (W *DCDW) SetFrame(f *Frame) {
	W.staged = f
}

//WNextDense writes the next frame from an natoms x 3 gonum matrix. The
//coordinates go through the staged frame, whose cell (zero unless the
//caller set one) is what the written frame gets.
func (W *DCDW) WNextDense(m *mat.Dense) error {
	if m == nil {
		return W.WNext(nil)
	}
	if W.staged == nil || W.staged.N() != W.natoms {
		W.staged = NewFrame(W.natoms)
	}
	if err := W.staged.SetMatrix(m); err != nil {
		return errDecorate(err, "WNextDense")
	}
	return W.WNext(W.staged)
}

//Frames returns the number of frames written so far.
func (W *DCDW) Frames() int {
	return W.frames
}

//Len returns the number of atoms per frame.
func (W *DCDW) Len() int {
	return W.natoms
}

//Close patches the number of frames written into the header and closes
//the file. Closing twice is a no-op. After Close, writes fail wrapping
//ErrClosed.
func (W *DCDW) Close() error {
	if W.closed {
		return nil
	}
	W.closed = true
	W.writable = false
	runtime.SetFinalizer(W, nil)
	var firstErr error
	if _, err := W.f.Seek(nsetsOffset, io.SeekStart); err != nil {
		firstErr = err
	} else if err := binary.Write(W.f, W.endian, int32(W.frames)); err != nil {
		firstErr = err
	}
	if err := W.f.Close(); firstErr == nil {
		firstErr = err
	}
	if firstErr != nil {
		return &Error{firstErr.Error(), W.filename, ErrIO, []string{"Close"}, true}
	}
	return nil
}

//Writer returns a writer to filename that inherits the atom count,
//start, step interval, delta, remarks and cell settings of the open
//reader. Whatever the given options set explicitly wins over the
//inherited values.
func (D *DCD) Writer(filename string, o ...*WriterOptions) (*DCDW, error) {
	if D.closed {
		return nil, &Error{ClosedTraj, D.filename, ErrClosed, []string{"Writer"}, true}
	}
	opt := DefaultWriterOptions()
	if len(o) != 0 && o[0] != nil {
		opt = o[0]
	}
	h := D.h
	if !opt.setStart {
		opt.start = h.istart
	}
	if !opt.setStep && !opt.setDt {
		opt.step = h.nsavc
	}
	if !opt.setDelta && !opt.setDt {
		opt.delta = h.delta
	}
	if !opt.setRemarks {
		opt.remarks = h.remarks
	}
	if !opt.setCell {
		opt.cell = h.hasCell
	}
	if !opt.setCellOrder {
		opt.cellOrder = D.cellOrder
	}
	w, err := NewWriter(filename, h.natoms, opt)
	if err != nil {
		return nil, errDecorate(err, "Writer")
	}
	return w, nil
}
