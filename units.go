/*
 * units.go, part of godcd
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

import "strings"

//This provides conversion factors between the units used by the DCD
//format (AKMA time, Angstrom lengths) and the usual ones.

//Time. The AKMA unit is sqrt(Da A^2 / (kcal/mol)).
const (
	PS2AKMA = 20.45482949774598 //1 ps in AKMA units
	AKMA2PS = 1 / 20.45482949774598
	FS2AKMA = 20.45482949774598e-3
	NS2AKMA = 20.45482949774598e3
)

//Length
const (
	A2Bohr = 1.889725989
	Bohr2A = 1 / 1.889725989
	A2Nm   = 0.1
	Nm2A   = 10.0
)

const (
	timeUnit = iota
	lengthUnit
)

//unitFactor returns the factor that takes a value in the given unit to
//the corresponding native unit (AKMA or Angstrom).
func unitFactor(unit string) (factor float64, kind int, ok bool) {
	switch strings.ToLower(unit) {
	case "akma":
		return 1, timeUnit, true
	case "ps":
		return PS2AKMA, timeUnit, true
	case "fs":
		return FS2AKMA, timeUnit, true
	case "ns":
		return NS2AKMA, timeUnit, true
	case "a", "angstrom":
		return 1, lengthUnit, true
	case "nm":
		return Nm2A, lengthUnit, true
	case "bohr":
		return Bohr2A, lengthUnit, true
	}
	return 0, 0, false
}

//Convert takes a value in the unit from and returns it in the unit to.
//Pure function, no state involved. Time units are akma, ps, fs and ns;
//length units are A (or angstrom), nm and bohr. Mixing time with length
//or giving an unknown unit is an error.
func Convert(v float64, from, to string) (float64, error) {
	ffrom, kfrom, ok := unitFactor(from)
	if !ok {
		return 0, &Error{"Unknown unit: " + from, "", ErrInvalidArgument, []string{"Convert"}, true}
	}
	fto, kto, ok := unitFactor(to)
	if !ok {
		return 0, &Error{"Unknown unit: " + to, "", ErrInvalidArgument, []string{"Convert"}, true}
	}
	if kfrom != kto {
		return 0, &Error{"Can't convert " + from + " to " + to, "", ErrInvalidArgument, []string{"Convert"}, true}
	}
	return v * ffrom / fto, nil
}
