/*
 * dcd.go, part of godcd
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
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

package dcd

import (
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"

	"gonum.org/v1/gonum/mat"
)

//Traj is the interface of trajectories that can be read sequentially.
type Traj interface {
	//Readable returns true if the trajectory is fit to deliver more
	//frames.
	Readable() bool

	//Next reads the frame at the current position into f, advancing the
	//position. A nil f discards the frame. At the end of the trajectory
	//it returns an error satisfying LastFrameError.
	Next(f *Frame) error

	//Len returns the number of atoms per frame.
	Len() int
}

//DCD is a CHARMM/NAMD binary trajectory opened for reading. It is not
//safe for concurrent use; every goroutine needs its own DCD. The frame
//returned by Frame is reused on every read.
type DCD struct {
	h         *header
	filename  string
	fhandle   *os.File
	r         io.Reader //the file itself, or a decompressor over it
	dz        io.Closer //decompressor, nil when reading a plain file
	seekable  bool
	readable  bool
	closed    bool
	skip      int
	cellOrder CellOrder
	cur       *Frame    //decode target, reused by every read
	fixed     *Frame    //copy of frame 0, consulted when nfixed > 0
	scratch   []float32 //free-atom blocks and discarded reads land here
	cursor    int       //frame Next will deliver
	streamPos int       //frames consumed from a sequential source
	pending   bool      //sequential: frame 0 decoded at open, undelivered
}

//New opens the DCD trajectory in filename, reads its header and leaves
//the reader positioned so the first call to Next delivers the first
//frame. Files compressed with zstd, gzip or lzw are recognized by their
//filename extension and opened for sequential-only reading. The
//returned reader should be Close()d when no longer needed; a finalizer
//backs that up for readers that just go out of scope.
func New(filename string) (*DCD, error) {
	D := new(DCD)
	D.filename = filename
	D.skip = 1
	D.cellOrder = NAMDCellOrder
	if err := D.initRead(); err != nil {
		return nil, errDecorate(err, "New")
	}
	runtime.SetFinalizer(D, func(d *DCD) {
		_ = d.Close()
	})
	return D, nil
}

func (D *DCD) initRead() error {
	if err := D.openSource(); err != nil {
		return errDecorate(err, "initRead")
	}
	if err := D.primeFirstFrame(); err != nil {
		D.closeSource()
		return errDecorate(err, "initRead")
	}
	D.readable = true
	return nil
}

//openSource opens the file, wraps it in a decompressor when the
//extension calls for one, and parses the header.
func (D *DCD) openSource() error {
	fi, err := os.Stat(D.filename)
	if err != nil {
		return &Error{UnableToOpen + ": " + err.Error(), D.filename, ErrIO, []string{"openSource"}, true}
	}
	if fi.Size() == 0 {
		return &Error{ZeroSize, D.filename, ErrIO, []string{"openSource"}, true}
	}
	f, err := os.Open(D.filename)
	if err != nil {
		return &Error{UnableToOpen + ": " + err.Error(), D.filename, ErrIO, []string{"openSource"}, true}
	}
	r, dz, seekable, err := wrapSource(f, D.filename)
	if err != nil {
		f.Close()
		return errDecorate(err, "openSource")
	}
	D.fhandle, D.r, D.dz, D.seekable = f, r, dz, seekable
	h, err := parseHeader(D.r, D.filename)
	if err != nil {
		D.closeSource()
		return errDecorate(err, "openSource")
	}
	D.h = h
	if D.seekable {
		D.recoverNSets(fi.Size())
		if D.h.nsets == 0 {
			D.closeSource()
			return &Error{"Trajectory holds no frames", D.filename, ErrNoData, []string{"openSource"}, true}
		}
	}
	return nil
}

func (D *DCD) closeSource() error {
	var err error
	if D.dz != nil {
		err = D.dz.Close()
		D.dz = nil
	}
	if D.fhandle != nil {
		if e := D.fhandle.Close(); err == nil {
			err = e
		}
		D.fhandle = nil
	}
	return err
}

//primeFirstFrame decodes frame 0 into the reusable frame, caching a
//copy when fixed atoms make the later frames partial, and arranges for
//Next to deliver frame 0: by seeking back on files, from the cache on
//sequential sources.
func (D *DCD) primeFirstFrame() error {
	D.cur = NewFrame(D.h.natoms)
	D.scratch = make([]float32, D.h.natoms)
	if err := D.readFrameBody(D.cur, false); err != nil {
		if err == io.EOF {
			return &Error{"Trajectory holds no frames", D.filename, ErrNoData, []string{"primeFirstFrame"}, true}
		}
		return errDecorate(err, "primeFirstFrame")
	}
	D.cur.Step = int64(D.h.istart)
	if D.h.nfixed > 0 {
		D.fixed = D.cur.Clone()
	}
	D.cursor = 0
	D.streamPos = 1
	D.pending = !D.seekable
	return nil
}

//readFrameBody reads the records of one frame from the current position
//of the source into f. A nil f reads and discards. later selects the
//free-atom layout, used by every frame but the first when the file
//declares fixed atoms. A source that ends cleanly right where the frame
//would start yields a bare io.EOF for the caller to interpret.
func (D *DCD) readFrameBody(f *Frame, later bool) error {
	h := D.h
	m, err := readMarkerOrEOF(D.r, h.order, D.filename)
	if err != nil {
		return err
	}
	if h.hasCell {
		if m != 48 {
			return &Error{WrongFormat, D.filename, ErrFormat, []string{"readFrameBody"}, true}
		}
		var raw [6]float64
		if err := binary.Read(D.r, h.order, raw[:]); err != nil {
			return wrapRead(err, D.filename, "readFrameBody")
		}
		if err := checkTrailer(D.r, h.order, 48, D.filename); err != nil {
			return errDecorate(err, "readFrameBody")
		}
		if f != nil {
			f.Cell = D.cellOrder.ToCanonical(raw)
		}
		//now the marker that opens the X block
		if m, err = readMarker(D.r, h.order, D.filename); err != nil {
			return errDecorate(err, "readFrameBody")
		}
	}
	partial := later && h.nfixed > 0
	n := h.natoms
	if partial {
		n = h.natoms - h.nfixed
	}
	want := int32(4 * n)
	if m != want {
		return &Error{WrongFormat, D.filename, ErrFormat, []string{"readFrameBody"}, true}
	}
	for b := 0; b < 3; b++ {
		if b > 0 {
			m, err := readMarker(D.r, h.order, D.filename)
			if err != nil {
				return errDecorate(err, "readFrameBody")
			}
			if m != want {
				return &Error{WrongFormat, D.filename, ErrFormat, []string{"readFrameBody"}, true}
			}
		}
		dst := D.scratch[:n]
		var full []float32
		if f != nil {
			switch b {
			case 0:
				full = f.X
			case 1:
				full = f.Y
			default:
				full = f.Z
			}
			if !partial {
				dst = full
			}
		}
		if err := binary.Read(D.r, h.order, dst); err != nil {
			return wrapRead(err, D.filename, "readFrameBody")
		}
		if err := checkTrailer(D.r, h.order, want, D.filename); err != nil {
			return errDecorate(err, "readFrameBody")
		}
		if f != nil && partial {
			//fixed coordinates come from the cached first frame, the
			//free ones from the block just read
			var base []float32
			switch b {
			case 0:
				base = D.fixed.X
			case 1:
				base = D.fixed.Y
			default:
				base = D.fixed.Z
			}
			copy(full, base)
			for k, idx := range h.free {
				full[idx] = dst[k]
			}
		}
	}
	if h.fourdim {
		//a 4th-dimension block we don't use; read it to stay aligned
		if err := readFloat32Record(D.r, h.order, D.scratch[:n], D.filename); err != nil {
			return errDecorate(err, "readFrameBody")
		}
	}
	return nil
}

//decodeAt seeks to frame i and decodes it into the reusable frame.
func (D *DCD) decodeAt(i int) error {
	if err := D.seekToFrame(i); err != nil {
		return errDecorate(err, "decodeAt")
	}
	if err := D.readFrameBody(D.cur, i > 0); err != nil {
		if err == io.EOF {
			err = &Error{"Unexpected end of file", D.filename, ErrShortRead, []string{"decodeAt"}, true}
		}
		return errDecorate(err, "decodeAt")
	}
	D.cur.Step = int64(D.h.istart) + int64(i)*int64(D.h.nsavc)
	return nil
}

//Next reads the frame at the current position into f and advances the
//position by Skip() frames. A nil f discards the frame. Past the last
//frame Next returns an error satisfying LastFrameError (and wrapping
//ErrEOF); the trajectory stays open and can be rewound with Reset.
func (D *DCD) Next(f *Frame) error {
	if D.closed {
		return &Error{ClosedTraj, D.filename, ErrClosed, []string{"Next"}, true}
	}
	if !D.readable {
		return &Error{TrajUnIni, D.filename, ErrNoData, []string{"Next"}, true}
	}
	if f != nil && f.N() != D.h.natoms {
		return &Error{NotEnoughSpace, D.filename, ErrDimensionMismatch, []string{"Next"}, true}
	}
	if D.seekable {
		return D.nextSeekable(f)
	}
	return D.nextSequential(f)
}

func (D *DCD) nextSeekable(f *Frame) error {
	if D.cursor >= D.h.nsets {
		D.readable = false
		return errDecorate(newLastFrameError(D.filename), "Next")
	}
	if err := D.decodeAt(D.cursor); err != nil {
		return errDecorate(err, "Next")
	}
	if f != nil {
		f.copyFrom(D.cur)
	}
	D.cursor += D.skip
	return nil
}

func (D *DCD) nextSequential(f *Frame) error {
	//an nsets of zero here just means the header was never patched, so
	//it only bounds the iteration when positive
	if D.h.nsets > 0 && D.cursor >= D.h.nsets {
		D.readable = false
		return errDecorate(newLastFrameError(D.filename), "Next")
	}
	if D.pending && D.cursor == 0 {
		D.pending = false
	} else {
		for D.streamPos < D.cursor {
			if err := D.readFrameBody(nil, D.streamPos > 0); err != nil {
				return D.endSequential(err)
			}
			D.streamPos++
		}
		if err := D.readFrameBody(D.cur, D.streamPos > 0); err != nil {
			return D.endSequential(err)
		}
		D.cur.Step = int64(D.h.istart) + int64(D.streamPos)*int64(D.h.nsavc)
		D.streamPos++
	}
	if f != nil {
		f.copyFrom(D.cur)
	}
	D.cursor += D.skip
	return nil
}

//endSequential turns a clean end of the source into the normal
//last-frame termination and passes everything else through.
func (D *DCD) endSequential(err error) error {
	if err == io.EOF {
		D.readable = false
		return errDecorate(newLastFrameError(D.filename), "Next")
	}
	return errDecorate(err, "Next")
}

//FrameAt decodes frame i into f, seeking directly to it. A nil f only
//decodes into the internal frame. Negative indices count from the end
//of the trajectory. The sequential position used by Next is not
//disturbed. FrameAt needs a seekable source.
func (D *DCD) FrameAt(f *Frame, i int) error {
	if D.closed {
		return &Error{ClosedTraj, D.filename, ErrClosed, []string{"FrameAt"}, true}
	}
	if !D.seekable {
		return &Error{NotSeekable, D.filename, ErrInvalidArgument, []string{"FrameAt"}, true}
	}
	if i < 0 {
		i += D.h.nsets
	}
	if i < 0 || i >= D.h.nsets {
		return &Error{fmt.Sprintf("No frame %d in a trajectory of %d frames", i, D.h.nsets), D.filename, ErrIndex, []string{"FrameAt"}, true}
	}
	if f != nil && f.N() != D.h.natoms {
		return &Error{NotEnoughSpace, D.filename, ErrDimensionMismatch, []string{"FrameAt"}, true}
	}
	if err := D.decodeAt(i); err != nil {
		return errDecorate(err, "FrameAt")
	}
	if f != nil {
		f.copyFrom(D.cur)
	}
	return nil
}

//NextDense reads the next frame into the given natoms x 3 gonum matrix.
//A convenience over Next for callers that live in float64.
func (D *DCD) NextDense(m *mat.Dense) error {
	if err := D.Next(nil); err != nil {
		return err
	}
	if m == nil {
		return nil
	}
	r, c := m.Dims()
	if r != D.h.natoms || c != 3 {
		return &Error{WrongDims, D.filename, ErrDimensionMismatch, []string{"NextDense"}, true}
	}
	for i := 0; i < r; i++ {
		m.Set(i, 0, float64(D.cur.X[i]))
		m.Set(i, 1, float64(D.cur.Y[i]))
		m.Set(i, 2, float64(D.cur.Z[i]))
	}
	return nil
}

//Reset rewinds the trajectory so the next call to Next delivers the
//first frame again. Compressed sources are closed and reopened.
func (D *DCD) Reset() error {
	if D.closed {
		return &Error{ClosedTraj, D.filename, ErrClosed, []string{"Reset"}, true}
	}
	if D.seekable {
		D.cursor = 0
		D.readable = true
		return nil
	}
	D.closeSource()
	if err := D.openSource(); err != nil {
		D.readable = false
		return errDecorate(err, "Reset")
	}
	if err := D.primeFirstFrame(); err != nil {
		D.closeSource()
		D.readable = false
		return errDecorate(err, "Reset")
	}
	D.readable = true
	return nil
}

//Close releases the file handle and whatever decompressor sits on top
//of it. Closing twice is a no-op. After Close every operation on the
//trajectory fails wrapping ErrClosed.
func (D *DCD) Close() error {
	if D.closed {
		return nil
	}
	D.closed = true
	D.readable = false
	err := D.closeSource()
	runtime.SetFinalizer(D, nil)
	if err != nil {
		return &Error{err.Error(), D.filename, ErrIO, []string{"Close"}, true}
	}
	return nil
}

//Readable returns true if the trajectory can still deliver frames
//sequentially.
func (D *DCD) Readable() bool {
	return D.readable
}

//Len returns the number of atoms per frame.
func (D *DCD) Len() int {
	return D.h.natoms
}

//NFrames returns the number of frames in the trajectory. For compressed
//sources this is whatever the header declares, which a writer that
//never patched it may have left at zero.
func (D *DCD) NFrames() int {
	return D.h.nsets
}

//Header returns a snapshot of the control data of the trajectory.
func (D *DCD) Header() Header {
	return D.h.snapshot()
}

//Frame returns the internal frame holding the last decoded snapshot.
//The buffer is reused by every read; callers keeping frames around
//should Clone it.
func (D *DCD) Frame() *Frame {
	return D.cur
}

//Skip sets (when given) and returns the number of frames Next advances
//per call. Values below 1 are ignored.
func (D *DCD) Skip(n ...int) int {
	if len(n) != 0 && n[0] >= 1 {
		D.skip = n[0]
	}
	return D.skip
}

//CellOrder sets (when given) and returns the layout used to interpret
//the cell records of the file. An order that is not a permutation of
//the 6 slots is ignored, with a warning.
func (D *DCD) CellOrder(o ...CellOrder) CellOrder {
	if len(o) != 0 {
		if o[0].valid() {
			D.cellOrder = o[0]
		} else {
			log.Printf("dcd: cell order %v is not a permutation, keeping %v", o[0], D.cellOrder)
		}
	}
	return D.cellOrder
}
