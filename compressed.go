/*
 * compressed.go, part of godcd
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
	"bufio"
	"compress/gzip"
	"compress/lzw"
	"io"
	"log"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

const (
	lzwOrder        = lzw.MSB
	lzwLitwidth int = 8
)

//zstd's Decoder.Close returns nothing, so it can't be an io.Closer
//by itself.
type zstdCloser struct {
	d *zstd.Decoder
}

func (z zstdCloser) Close() error {
	z.d.Close()
	return nil
}

//wrapSource decides from the extension of filename whether f holds a
//plain DCD or a compressed one. It returns the reader frames are to be
//decoded from, a closer for the decompressor (nil for plain files), and
//whether the returned source is seekable. Extensions supported are
//.dcd (plain), .gz (gzip), .zst/.zstd (z-standard) and .lzw. A file
//with any other extension, or none, gets logged and read as a plain
//DCD. Compressed sources only support sequential reading.
func wrapSource(f *os.File, filename string) (io.Reader, io.Closer, bool, error) {
	temp := strings.Split(filename, ".")
	fk := strings.ToLower(temp[len(temp)-1])
	if len(temp) == 1 {
		fk = "dcd"
	}
	switch fk {
	case "dcd":
		return f, nil, true, nil
	case "gz":
		gz, err := gzip.NewReader(bufio.NewReader(f))
		if err != nil {
			return nil, nil, false, &Error{err.Error(), filename, ErrFormat, []string{"gzip.NewReader", "wrapSource"}, true}
		}
		return gz, gz, false, nil
	case "zst", "zstd":
		zr, err := zstd.NewReader(bufio.NewReader(f))
		if err != nil {
			return nil, nil, false, &Error{err.Error(), filename, ErrIO, []string{"zstd.NewReader", "wrapSource"}, true}
		}
		return zr, zstdCloser{zr}, false, nil
	case "lzw":
		lz := lzw.NewReader(bufio.NewReader(f), lzwOrder, lzwLitwidth)
		return lz, lz, false, nil
	default:
		log.Printf("Extension %s not supported. %s will be assumed to be a plain DCD file", fk, filename)
		return f, nil, true, nil
	}
}
