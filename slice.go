/*
 * slice.go, part of godcd
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

//Span selects a range of frames the way a Python slice would: Start is
//the first frame taken, Stop the first one not taken, Step the stride.
//Negative Start or Stop count from the end of the trajectory. The zero
//value selects every frame: a Stop of 0 means the end of the trajectory
//and a Step of 0 means 1. Negative steps are not supported.
type Span struct {
	Start, Stop, Step int
}

//resolve clamps the span to a trajectory of nsets frames.
func (s Span) resolve(nsets int) (start, stop, step int, err error) {
	step = s.Step
	if step == 0 {
		step = 1
	}
	if step < 0 {
		return 0, 0, 0, &Error{"Negative slice step", "", ErrInvalidArgument, []string{"resolve"}, true}
	}
	start, stop = s.Start, s.Stop
	if start < 0 {
		start += nsets
	}
	if stop <= 0 {
		stop += nsets
	}
	if start < 0 {
		start = 0
	}
	if start > nsets {
		start = nsets
	}
	if stop < 0 {
		stop = 0
	}
	if stop > nsets {
		stop = nsets
	}
	return start, stop, step, nil
}

//spanLen returns how many frames a resolved span yields.
func spanLen(start, stop, step int) int {
	if stop <= start {
		return 0
	}
	return (stop - start + step - 1) / step
}

//FrameSeq is a lazy sequence over a slice of a trajectory. Each element
//is decoded on demand with its own seek, so several sequences over the
//same reader can be interleaved freely; they do share the reader's
//frame buffer, so Clone what you keep. The usual loop is
//
//	for seq.Scan() {
//		f := seq.Frame()
//		...
//	}
//	if err := seq.Err(); err != nil {
//		...
//	}
type FrameSeq struct {
	d                 *DCD
	start, stop, step int
	pos               int
	err               error
}

//Slice resolves s against the trajectory and returns a lazy sequence
//over the selected frames. Needs a seekable source.
func (D *DCD) Slice(s Span) (*FrameSeq, error) {
	if D.closed {
		return nil, &Error{ClosedTraj, D.filename, ErrClosed, []string{"Slice"}, true}
	}
	if !D.seekable {
		return nil, &Error{NotSeekable, D.filename, ErrInvalidArgument, []string{"Slice"}, true}
	}
	start, stop, step, err := s.resolve(D.h.nsets)
	if err != nil {
		return nil, errDecorate(err, "Slice")
	}
	return &FrameSeq{d: D, start: start, stop: stop, step: step, pos: start}, nil
}

//Scan decodes the next frame of the sequence, returning false when the
//sequence is exhausted or a decode failed (check Err to tell apart).
func (S *FrameSeq) Scan() bool {
	if S.err != nil || S.pos >= S.stop {
		return false
	}
	if err := S.d.FrameAt(nil, S.pos); err != nil {
		S.err = errDecorate(err, "Scan")
		return false
	}
	S.pos += S.step
	return true
}

//Frame returns the frame decoded by the last successful Scan. The
//buffer belongs to the reader and is overwritten by any further read.
func (S *FrameSeq) Frame() *Frame {
	return S.d.Frame()
}

//Err returns the first error the sequence ran into, if any. Running off
//the end of the sequence is not an error.
func (S *FrameSeq) Err() error {
	return S.err
}

//Reset rewinds the sequence to its start, clearing any error, so it can
//be scanned again.
func (S *FrameSeq) Reset() {
	S.pos = S.start
	S.err = nil
}

//Len returns the number of frames the full sequence yields.
func (S *FrameSeq) Len() int {
	return spanLen(S.start, S.stop, S.step)
}
