/*
 * unitcell.go, part of godcd
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

//UnitCell holds the dimensions of a periodic cell in canonical order:
//the lengths A, B and C in Angstrom, then the angles alpha, beta and
//gamma in degrees. A cell read from a trajectory without cell records
//stays zeroed.
type UnitCell [6]float64

//A returns the length of the first cell vector.
func (u UnitCell) A() float64 { return u[0] }

//B returns the length of the second cell vector.
func (u UnitCell) B() float64 { return u[1] }

//C returns the length of the third cell vector.
func (u UnitCell) C() float64 { return u[2] }

//Alpha returns the angle between the B and C vectors, in degrees.
func (u UnitCell) Alpha() float64 { return u[3] }

//Beta returns the angle between the A and C vectors, in degrees.
func (u UnitCell) Beta() float64 { return u[4] }

//Gamma returns the angle between the A and B vectors, in degrees.
func (u UnitCell) Gamma() float64 { return u[5] }

//CellOrder describes how the 6 cell values are laid out in the 48-byte
//cell record of a DCD file: the canonical value i lives in the on-disk
//slot CellOrder[i]. Different programs have used different layouts over
//the years, so readers and writers take the order as per-instance
//configuration.
type CellOrder [6]int

var (
	//NAMDCellOrder is the layout written by NAMD and by CHARMM with
	//modern converters: A, gamma, B, beta, alpha, C on disk.
	NAMDCellOrder = CellOrder{0, 2, 5, 4, 3, 1}
	//CharmmCellOrder is the older layout: A, alpha, B, beta, gamma, C
	//on disk.
	CharmmCellOrder = CellOrder{0, 2, 5, 1, 3, 4}
)

//valid returns whether the order is a permutation of the 6 slots.
func (o CellOrder) valid() bool {
	var seen [6]bool
	for _, j := range o {
		if j < 0 || j > 5 || seen[j] {
			return false
		}
		seen[j] = true
	}
	return true
}

//ToCanonical gathers an on-disk cell record into canonical order.
func (o CellOrder) ToCanonical(raw [6]float64) UnitCell {
	var u UnitCell
	for i, j := range o {
		u[i] = raw[j]
	}
	return u
}

//FromCanonical scatters a canonical cell into its on-disk layout.
//ToCanonical and FromCanonical are inverses for any valid order.
func (o CellOrder) FromCanonical(u UnitCell) [6]float64 {
	var raw [6]float64
	for i, j := range o {
		raw[j] = u[i]
	}
	return raw
}
