/*
 * errors.go, part of godcd
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
	"errors"
	"fmt"
)

//The kinds of failure this package reports. Every error returned by the
//package wraps one of these, so callers can classify errors with
//errors.Is instead of parsing messages.
var (
	ErrFormat            = errors.New("malformed DCD")
	ErrShortRead         = errors.New("truncated record")
	ErrIO                = errors.New("i/o failure")
	ErrIndex             = errors.New("frame index out of range")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrNoData            = errors.New("no data")
	ErrClosed            = errors.New("trajectory closed")

	//ErrEOF marks the normal end of a trajectory, not a failure.
	ErrEOF = errors.New("EOF")
)

//Common error messages.
const (
	TrajUnIni           = "Traj object uninitialized to read"
	WriterUnIni         = "Traj object uninitialized to write"
	UnableToOpen        = "Unable to open file"
	WrongFormat         = "Wrong format in the trajectory file or frame"
	NotEnoughSpace      = "Not enough space in passed blocks"
	SecurityCheckFailed = "FailedSecurityCheck"
	ClosedTraj          = "Trajectory is already closed"
	NotSeekable         = "Operation requires a seekable trajectory source"
	ZeroSize            = "Trajectory file has zero size"
	NilCoordinates      = "Given nil coordinates"
	NoAtoms             = "No atoms in output trajectory"
	AtomsRequired       = "The number of atoms in the output trajectory is required"
	WrongDims           = "Coordinates don't match the trajectory size"
	EOF                 = "EOF"
)

//TrajError is satisfied by every error produced by trajectory objects
//in this package. Decorate lets errors accumulate the call trail as
//they travel up.
type TrajError interface {
	error
	Decorate(string) []string
	Critical() bool
	FileName() string
	Format() string
}

//LastFrameError is, in addition, satisfied by errors that mark the
//normal termination of a trajectory read.
type LastFrameError interface {
	TrajError
	NormalLastFrameTermination()
}

//Error is the general error type of the package. It wraps one of the
//Err* kinds and satisfies TrajError.
type Error struct {
	message  string
	filename string //the file with problems, or empty if none
	kind     error
	deco     []string
	critical bool
}

func (err *Error) Error() string {
	return fmt.Sprintf("dcd file %s error: %s", err.filename, err.message)
}

//Unwrap returns the kind of the error, one of the package's Err*
//variables.
func (err *Error) Unwrap() error {
	return err.kind
}

//Decorate adds the given string to the commentary trail of the error
//and returns the trail.
func (err *Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

//FileName returns the file to which the error is associated.
func (err *Error) FileName() string { return err.filename }

//Format returns the format of the file with problems.
func (err *Error) Format() string { return "dcd" }

//Critical returns whether the error is critical.
func (err *Error) Critical() bool { return err.critical }

//lastFrameError signals that the previous frame read was the last one
//in the trajectory. A normal termination.
type lastFrameError struct {
	fileName string
	deco     []string
}

func (E *lastFrameError) NormalLastFrameTermination() {}

func (E *lastFrameError) FileName() string { return E.fileName }

func (E *lastFrameError) Error() string { return EOF }

func (E *lastFrameError) Critical() bool { return false }

func (E *lastFrameError) Format() string { return "dcd" }

func (E *lastFrameError) Unwrap() error { return ErrEOF }

//Even though this is a normal termination, the trail can still matter
//when the user needs to know where the trajectory ended.
func (E *lastFrameError) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

func newLastFrameError(filename string) *lastFrameError {
	return &lastFrameError{fileName: filename}
}

//errDecorate adds the name of the calling function to an error, when
//the error supports it.
func errDecorate(err error, caller string) error {
	err2, ok := err.(TrajError)
	if !ok {
		return err
	}
	err2.Decorate(caller)
	return err2
}
