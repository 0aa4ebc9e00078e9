//Package timecorr computes time correlation functions from DCD
//trajectories. It defines a concrete collection of per-frame series
//(coordinates, distances, geometric centers) that dcd.Correl can
//populate in one pass over a file, plus FFT-based auto- and
//cross-correlation over the resulting series.
package timecorr

import (
	"fmt"
	"math"
	"math/cmplx"

	dcd "github.com/rmera/godcd"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

//A Series is one timeseries definition over a group of atoms. The code
//says what gets computed per frame, and how many values ("rows") the
//series contributes each frame.
type Series struct {
	code  byte
	atoms []int
	aux   float64
	rows  int
}

//X defines a series holding the x coordinate of one atom.
func X(atom int) *Series {
	return &Series{code: 'x', atoms: []int{atom}, rows: 1}
}

//Y defines a series holding the y coordinate of one atom.
func Y(atom int) *Series {
	return &Series{code: 'y', atoms: []int{atom}, rows: 1}
}

//Z defines a series holding the z coordinate of one atom.
func Z(atom int) *Series {
	return &Series{code: 'z', atoms: []int{atom}, rows: 1}
}

//Vector defines a series holding the full position of one atom, 3 rows
//per frame.
func Vector(atom int) *Series {
	return &Series{code: 'v', atoms: []int{atom}, rows: 3}
}

//Distance defines a series holding the distance between two atoms.
func Distance(a, b int) *Series {
	return &Series{code: 'd', atoms: []int{a, b}, rows: 1}
}

//COG defines a series holding the center of geometry of a group of
//atoms, 3 rows per frame.
func COG(atoms ...int) *Series {
	return &Series{code: 'g', atoms: atoms, rows: 3}
}

//A Collection gathers one or more series over a trajectory. It
//satisfies the dcd.Collection contract, so a single dcd.Correl pass
//fills every series it holds.
type Collection struct {
	series  []*Series
	offsets []int //start of each series' atoms within the joint list
	atoms   []int
	counts  []int
	codes   []byte
	aux     []float64
	rows    int
	lo, hi  int
	nframes int
	data    [][]float64 //one slice per row, one value per frame
}

//NewCollection builds a collection over the given series. Every series
//needs at least one atom and every atom index must be non-negative;
//whether the indices fit the trajectory is checked by dcd.Correl
//against the actual file.
func NewCollection(series ...*Series) (*Collection, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("timecorr: a collection needs at least one series")
	}
	C := &Collection{series: series}
	for _, s := range series {
		if len(s.atoms) == 0 {
			return nil, fmt.Errorf("timecorr: series %q has no atoms", string(s.code))
		}
		for _, a := range s.atoms {
			if a < 0 {
				return nil, fmt.Errorf("timecorr: negative atom index %d in series %q", a, string(s.code))
			}
		}
		C.offsets = append(C.offsets, len(C.atoms))
		C.atoms = append(C.atoms, s.atoms...)
		C.counts = append(C.counts, len(s.atoms))
		C.codes = append(C.codes, s.code)
		C.aux = append(C.aux, s.aux)
		C.rows += s.rows
	}
	C.lo, C.hi = C.atoms[0], C.atoms[0]
	for _, a := range C.atoms[1:] {
		if a < C.lo {
			C.lo = a
		}
		if a > C.hi {
			C.hi = a
		}
	}
	C.data = make([][]float64, C.rows)
	return C, nil
}

//AtomList returns every atom of the collection, grouped by series.
func (C *Collection) AtomList() []int {
	return C.atoms
}

//AtomCounts returns how many atoms belong to each series.
func (C *Collection) AtomCounts() []int {
	return C.counts
}

//FormatSpec returns the code of each series, in order.
func (C *Collection) FormatSpec() string {
	return string(C.codes)
}

//AuxData returns the auxiliary value of each series, in order.
func (C *Collection) AuxData() []float64 {
	return C.aux
}

//DataSize returns the number of values the collection stores per frame.
func (C *Collection) DataSize() int {
	return C.rows
}

//Bounds returns the inclusive atom window covering every series.
func (C *Collection) Bounds() (lo, hi int) {
	return C.lo, C.hi
}

//Collect computes every series from the given coordinates and appends
//the results as the values for one more frame. pos rows follow the
//order of AtomList. Frames must arrive in order, which dcd.Correl
//guarantees.
func (C *Collection) Collect(frame int, pos *mat.Dense) error {
	if frame != C.nframes {
		return fmt.Errorf("timecorr: got frame %d while holding %d frames", frame, C.nframes)
	}
	if r, _ := pos.Dims(); r != len(C.atoms) {
		return fmt.Errorf("timecorr: got %d positions for %d atoms", r, len(C.atoms))
	}
	row := 0
	for i, s := range C.series {
		off := C.offsets[i]
		switch s.code {
		case 'x':
			C.data[row] = append(C.data[row], pos.At(off, 0))
		case 'y':
			C.data[row] = append(C.data[row], pos.At(off, 1))
		case 'z':
			C.data[row] = append(C.data[row], pos.At(off, 2))
		case 'v':
			for k := 0; k < 3; k++ {
				C.data[row+k] = append(C.data[row+k], pos.At(off, k))
			}
		case 'd':
			dx := pos.At(off, 0) - pos.At(off+1, 0)
			dy := pos.At(off, 1) - pos.At(off+1, 1)
			dz := pos.At(off, 2) - pos.At(off+1, 2)
			C.data[row] = append(C.data[row], math.Sqrt(dx*dx+dy*dy+dz*dz))
		case 'g':
			var cx, cy, cz float64
			for j := 0; j < len(s.atoms); j++ {
				cx += pos.At(off+j, 0)
				cy += pos.At(off+j, 1)
				cz += pos.At(off+j, 2)
			}
			n := float64(len(s.atoms))
			C.data[row] = append(C.data[row], cx/n)
			C.data[row+1] = append(C.data[row+1], cy/n)
			C.data[row+2] = append(C.data[row+2], cz/n)
		default:
			return fmt.Errorf("timecorr: unknown series code %q", string(s.code))
		}
		row += s.rows
	}
	C.nframes++
	return nil
}

//NFrames returns how many frames have been collected.
func (C *Collection) NFrames() int {
	return C.nframes
}

//Row returns one row of collected values across frames, shared with
//the collection. Rows follow the order of the series, each series
//contributing the row count its definition says.
func (C *Collection) Row(r int) []float64 {
	return C.data[r]
}

//SeriesData returns the rows of the i-th series, shared with the
//collection.
func (C *Collection) SeriesData(i int) [][]float64 {
	row := 0
	for j := 0; j < i; j++ {
		row += C.series[j].rows
	}
	return C.data[row : row+C.series[i].rows]
}

func cmplxMulConj(dst, b []complex128) {
	if len(dst) != len(b) {
		panic(fmt.Sprintf("complex conjugate multiplication of slices: Both slices should have the same len %d, %d", len(dst), len(b)))
	}
	for i, v := range b {
		dst[i] *= cmplx.Conj(v)
	}
}

func cmplxRealScale(dst []complex128, sc float64) []complex128 {
	for i, v := range dst {
		dst[i] = v * complex(sc, sc)
	}
	return dst
}

//The difference between len(c1pad) and len(c1) (the pairs c1,c2 and
//c1pad,c2pad must be of equal length) defines the lags to be used.
//Both series are centered on their means and the result is normalized
//by the sample standard deviations and the series length.
func CrossCorrMem(c1, c2 []float64, c1pad, c2pad []complex128, dst ...[]float64) []float64 {
	var ret []float64
	if len(dst) == 0 || len(dst[0]) > 0 { //if you give a slice, you can set the cap, but len must be 0
		ret = make([]float64, 0, len(c1pad))
	} else {
		ret = dst[0]
	}
	c1mean := stat.Mean(c1, nil)
	c2mean := stat.Mean(c2, nil)
	c1std := stat.StdDev(c1, nil)
	c2std := stat.StdDev(c2, nil)
	if len(c1pad) != 2*len(c1) {
		c1pad = make([]complex128, 2*len(c1))
	}
	if len(c2pad) != 2*len(c2) {
		c2pad = make([]complex128, 2*len(c2))
	}
	for i, v := range c1 {
		c1pad[i] = complex(v-c1mean, 0)
		c2pad[i] = complex(c2[i]-c2mean, 0)
	}
	f := fourier.NewCmplxFFT(len(c1pad))
	f.Coefficients(c1pad, c1pad)
	f.Coefficients(c2pad, c2pad)
	cmplxMulConj(c1pad, c2pad)
	f.Sequence(c1pad, c1pad)

	cmplxRealScale(c1pad, (1.0 / float64(len(c1pad)))) //normalization of the FFT

	center := len(c1pad) / 2
	for _, v := range c1pad[:center] {
		ret = append(ret, real(v))
	}
	for _, v := range c1pad[center:] {
		ret = append(ret, real(v))
	}
	for i, v := range ret {
		ret[i] = v / (c1std * c2std) / float64(len(c1))
	}
	return ret
}

//CrossCorr returns the normalized cross-correlation of two equal
//length series, allocating its own working space.
func CrossCorr(c1, c2 []float64) []float64 {
	c1pad := make([]complex128, 2*len(c1))
	c2pad := make([]complex128, 2*len(c2))
	return CrossCorrMem(c1, c2, c1pad, c2pad)
}

//AutoCorr returns the normalized autocorrelation of a series. The
//normalization uses the sample variance, so the lag-0 value of a series
//of n values is (n-1)/n.
func AutoCorr(c []float64) []float64 {
	return CrossCorr(c, c)
}

//MapTraj maps f over every frame of t and returns the per-frame
//results. The trajectory is read to its end.
func MapTraj(t dcd.Traj, f func(pos *mat.Dense) float64) ([]float64, error) {
	var c []float64
	frame := dcd.NewFrame(t.Len())
	for {
		err := t.Next(frame)
		if err != nil {
			if _, ok := err.(dcd.LastFrameError); ok {
				break
			}
			return nil, err
		}
		c = append(c, f(frame.Matrix()))
	}
	return c, nil
}
