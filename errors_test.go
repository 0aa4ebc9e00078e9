/*
 * errors_test.go, part of godcd
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
	"testing"
)

func TestErrorKinds(Te *testing.T) {
	err := &Error{WrongFormat, "some.dcd", ErrFormat, nil, true}
	var terr TrajError = err //must satisfy the interface
	if !errors.Is(err, ErrFormat) {
		Te.Error("Error does not wrap its kind")
	}
	if errors.Is(err, ErrIO) {
		Te.Error("Error matches a kind it does not carry")
	}
	if terr.FileName() != "some.dcd" || !terr.Critical() || terr.Format() != "dcd" {
		Te.Errorf("accessors: %q %v %q", terr.FileName(), terr.Critical(), terr.Format())
	}
	deco := errDecorate(err, "caller1")
	deco = errDecorate(deco, "caller2")
	trail := deco.(TrajError).Decorate("")
	if len(trail) != 2 || trail[0] != "caller1" || trail[1] != "caller2" {
		Te.Errorf("got trail %v", trail)
	}
}

func TestLastFrame(Te *testing.T) {
	err := newLastFrameError("some.dcd")
	var lfe LastFrameError = err //normal termination marker
	lfe.NormalLastFrameTermination()
	if !errors.Is(err, ErrEOF) {
		Te.Error("last frame error does not wrap ErrEOF")
	}
	if err.Critical() {
		Te.Error("a normal termination reported critical")
	}
	if err.Error() != EOF {
		Te.Errorf("got message %q", err.Error())
	}
	//plain errors pass through errDecorate untouched
	plain := errors.New("plain")
	if got := errDecorate(plain, "caller"); got != plain {
		Te.Error("errDecorate wrapped a foreign error")
	}
}
