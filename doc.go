/*
 * doc.go, part of godcd
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

//Package dcd reads and writes CHARMM/NAMD DCD trajectory files, with
//random access to frames on plain files, sequential access on
//compressed ones, and batch extraction of atom subsets into dense
//timeseries blocks. Readers and writers each own their handle and
//their buffers; nothing in the package is shared between instances.

/******************** Format notes ***************************************************

DCD is a Fortran-style binary format. Every record is framed by two
int32 markers holding the byte length of the payload, one before and
one after. The endianness of the whole file follows from the first
marker, which must read 84 under one of the two byte orders.

The first record (84 bytes) starts with the magic "CORD" and packs the
icntrl block: number of frames, first step, steps between frames, number
of fixed atoms, the integration timestep (a float32, in AKMA units), a
flag for per-frame unit cell records, a flag for a fourth dimensional
block, and the CHARMM version, which is 0 for X-plor flavored files
(not supported here). The second record holds ntitle 80-byte text
lines. The third holds the number of atoms. When there are fixed atoms,
one more record lists the indices (1-based on disk) of the free ones.

Each frame is an optional cell record (6 float64) followed by one
record per dimension holding natoms float32 values (X, then Y, then Z;
a fourth block, when flagged, is skipped on reading). When there are
fixed atoms only the first frame holds all atoms; later frames hold
the free ones, and the reader merges them with the first frame.

The 6 cell values are stored in an order that changed between
producers over the years. This package takes the layout as an explicit
option (see CellOrder), with the NAMD layout as the default, and always
presents cells in canonical A, B, C, alpha, beta, gamma order.

**************************************************************************************/

package dcd
