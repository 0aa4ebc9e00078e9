/*
 * tsplot.go, part of godcd
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

//Package tsplot draws PNG plots of trajectory timeseries and
//correlation functions.
package tsplot

import (
	"fmt"
	"image/color"
	"math"

	dcd "github.com/rmera/godcd"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

func basicPlot(title, xlabel, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())
	return p
}

func save(p *plot.Plot, plotname string) error {
	filename := fmt.Sprintf("%s.png", plotname)
	return p.Save(15*vg.Centimeter, 10*vg.Centimeter, filename)
}

//line builds one colored line out of y sampled every dt.
func line(y []float64, dt float64, key, steps int) (*plotter.Line, error) {
	pts := make(plotter.XYs, len(y))
	for i, v := range y {
		pts[i].X = float64(i) * dt
		pts[i].Y = v
	}
	l, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	r, g, b := colors(key, steps)
	l.Color = color.RGBA{R: r, G: g, B: b, A: 255}
	return l, nil
}

//Rows plots each row as one line against sample index times dt (plain
//index when dt is not positive), and saves the result to plotname.png.
//names, when not nil, labels each row in the legend and must cover
//every row. This is the one to use for correlation functions and other
//derived series.
func Rows(rows [][]float64, names []string, dt float64, title, xlabel, ylabel, plotname string) error {
	if len(rows) == 0 {
		return fmt.Errorf("tsplot: no rows to plot")
	}
	if names != nil && len(names) < len(rows) {
		return fmt.Errorf("tsplot: got %d names for %d rows", len(names), len(rows))
	}
	if dt <= 0 {
		dt = 1
	}
	p := basicPlot(title, xlabel, ylabel)
	for key, y := range rows {
		l, err := line(y, dt, key, len(rows))
		if err != nil {
			return err
		}
		p.Add(l)
		if names != nil {
			p.Legend.Add(names[key], l)
		}
	}
	return save(p, plotname)
}

//TimeSeries plots every atom/component trace of T against time, dt
//being the time between frames (frame index is used when dt is not
//positive), and saves the result to plotname.png.
func TimeSeries(T *dcd.TimeSeries, dt float64, title, plotname string) error {
	if T == nil || T.NFrames == 0 {
		return fmt.Errorf("tsplot: given an empty timeseries")
	}
	xlabel := "t (ps)"
	if dt <= 0 {
		dt = 1
		xlabel = "frame"
	}
	p := basicPlot(title, xlabel, "coordinate (A)")
	comps := "xyz"
	steps := T.NAtoms * 3
	for a := 0; a < T.NAtoms; a++ {
		for k := 0; k < 3; k++ {
			y := make([]float64, T.NFrames)
			for f := 0; f < T.NFrames; f++ {
				y[f] = T.At(a, f, k)
			}
			l, err := line(y, dt, a*3+k, steps)
			if err != nil {
				return err
			}
			p.Add(l)
			p.Legend.Add(fmt.Sprintf("atom %d %c", a, comps[k]), l)
		}
	}
	return save(p, plotname)
}

//takes hue (0-360) and value and saturation (0-1), returns r,g,b
//(0-255)
func hsv2rgb(h, v, s float64) (uint8, uint8, uint8) {
	if s == 0.0 {
		c := 255 * v
		return uint8(c), uint8(c), uint8(c)
	}
	h = h / 60
	i := math.Floor(h)
	f := h - i
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))
	var r, g, b float64
	switch int(i) {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default: //case 5
		r, g, b = v, p, q
	}
	return uint8(r * 255), uint8(g * 255), uint8(b * 255)
}

//colors spreads keys over the hue wheel so nearby lines stay apart.
func colors(key, steps int) (r, g, b uint8) {
	norm := 260.0 / float64(steps)
	hp := float64(key)*norm + 20.0
	var h float64
	if hp < 55 {
		h = hp - 20.0
	} else {
		h = hp + 20.0
	}
	return hsv2rgb(h, 1.0, 1.0)
}
