/*
 * seek.go, part of godcd
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
	"fmt"
	"io"
	"log"
)

//Frames have a fixed on-disk size (two sizes when the file declares
//fixed atoms, since only the first frame carries every atom), so the
//byte offset of any frame comes out of a closed formula and random
//access never walks the file.

//atomsIn returns the number of atom entries each coordinate block of
//frame i carries.
func (h *header) atomsIn(i int) int {
	if i == 0 || h.nfixed == 0 {
		return h.natoms
	}
	return h.natoms - h.nfixed
}

func (h *header) blocksPerFrame() int64 {
	if h.fourdim {
		return 4
	}
	return 3
}

//frameSize returns the on-disk byte size of frame i.
func (h *header) frameSize(i int) int64 {
	s := h.blocksPerFrame() * (8 + 4*int64(h.atomsIn(i)))
	if h.hasCell {
		s += 56 //48 bytes of cell plus its two markers
	}
	return s
}

//frameOffset returns the byte offset of frame i from the start of the
//file.
func (h *header) frameOffset(i int) int64 {
	if i == 0 {
		return h.size
	}
	return h.size + h.frameSize(0) + int64(i-1)*h.frameSize(1)
}

//countFrames returns how many whole frames fit in a file of the given
//size after the header.
func (h *header) countFrames(fileSize int64) int {
	avail := fileSize - h.size
	if avail < h.frameSize(0) {
		return 0
	}
	return 1 + int((avail-h.frameSize(0))/h.frameSize(1))
}

//recoverNSets checks the frame count declared in the header against the
//one implied by the file size, keeping the latter when they disagree.
//Files left unpatched by a writer that died, or appended to, are still
//readable this way.
func (D *DCD) recoverNSets(fileSize int64) {
	counted := D.h.countFrames(fileSize)
	if counted != D.h.nsets {
		if D.h.nsets != 0 {
			log.Printf("dcd: file %s declares %d frames but holds %d, using %d", D.filename, D.h.nsets, counted, counted)
		}
		D.h.nsets = counted
	}
}

//FrameOffset returns the byte offset of frame i from the start of the
//file. Negative indices count from the end of the trajectory.
func (D *DCD) FrameOffset(i int) (int64, error) {
	if D.closed {
		return 0, &Error{ClosedTraj, D.filename, ErrClosed, []string{"FrameOffset"}, true}
	}
	if !D.seekable {
		return 0, &Error{NotSeekable, D.filename, ErrInvalidArgument, []string{"FrameOffset"}, true}
	}
	if i < 0 {
		i += D.h.nsets
	}
	if i < 0 || i >= D.h.nsets {
		return 0, &Error{fmt.Sprintf("No frame %d in a trajectory of %d frames", i, D.h.nsets), D.filename, ErrIndex, []string{"FrameOffset"}, true}
	}
	return D.h.frameOffset(i), nil
}

//seekToFrame positions the file handle at the start of frame i.
func (D *DCD) seekToFrame(i int) error {
	if !D.seekable {
		return &Error{NotSeekable, D.filename, ErrInvalidArgument, []string{"seekToFrame"}, true}
	}
	if _, err := D.fhandle.Seek(D.h.frameOffset(i), io.SeekStart); err != nil {
		return &Error{err.Error(), D.filename, ErrIO, []string{"seekToFrame"}, true}
	}
	return nil
}

//readRows reads only the rows lo..hi (inclusive) of each coordinate
//block of frame i into the three slices of dst, each of which must hold
//at least hi-lo+1 values. This touches a fraction of the frame when the
//wanted atoms are a narrow window of a big system. Valid only on
//seekable sources without fixed atoms; callers check both.
func (D *DCD) readRows(i, lo, hi int, dst *[3][]float32) error {
	h := D.h
	off := h.frameOffset(i)
	if h.hasCell {
		off += 56
	}
	n := h.natoms
	want := int32(4 * n)
	width := hi - lo + 1
	blockBytes := int64(8 + 4*n)
	for b := 0; b < 3; b++ {
		base := off + int64(b)*blockBytes
		if _, err := D.fhandle.Seek(base, io.SeekStart); err != nil {
			return &Error{err.Error(), D.filename, ErrIO, []string{"readRows"}, true}
		}
		m, err := readMarker(D.fhandle, h.order, D.filename)
		if err != nil {
			return errDecorate(err, "readRows")
		}
		if m != want {
			return &Error{WrongFormat, D.filename, ErrFormat, []string{"readRows"}, true}
		}
		if _, err := D.fhandle.Seek(base+4+int64(4*lo), io.SeekStart); err != nil {
			return &Error{err.Error(), D.filename, ErrIO, []string{"readRows"}, true}
		}
		if err := binary.Read(D.fhandle, h.order, dst[b][:width]); err != nil {
			return wrapRead(err, D.filename, "readRows")
		}
		if _, err := D.fhandle.Seek(base+4+int64(4*n), io.SeekStart); err != nil {
			return &Error{err.Error(), D.filename, ErrIO, []string{"readRows"}, true}
		}
		if err := checkTrailer(D.fhandle, h.order, want, D.filename); err != nil {
			return errDecorate(err, "readRows")
		}
	}
	return nil
}
