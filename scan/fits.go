package scan

import (
	"fmt"
	"io"

	"github.com/astrogo/fitsio"
)

// WriteFITS streams the results of a raster over g at height z to w as a
// FITS image of float64 (BITPIX -64).  NAXIS1 is x and NAXIS2 is y.  If the
// results carry measurements, each element of the measurement vector is one
// plane along NAXIS3; otherwise the image holds two planes, the x and y
// readback errors (read - commanded) in microns.
func WriteFITS(w io.Writer, g Grid, z float64, results []Result) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if len(results) != g.Len() {
		return fmt.Errorf("have %d results for a %dx%d grid", len(results), g.NX, g.NY)
	}
	planes := 0
	nerr := 0
	for _, res := range results {
		if l := len(res.Measurement); l > planes {
			planes = l
		}
		if res.Err != nil || res.ErrText != "" {
			nerr++
		}
	}
	content := "MEASUREMENT"
	if planes == 0 {
		planes = 2
		content = "POSERR"
	}

	npx := g.Len()
	data := make([]float64, npx*planes)
	for i, res := range results {
		if content == "POSERR" {
			data[i] = res.Position.X - res.Target.X
			data[npx+i] = res.Position.Y - res.Target.Y
			continue
		}
		for p, v := range res.Measurement {
			data[p*npx+i] = v
		}
	}

	dims := []int{g.NX, g.NY}
	if planes > 1 {
		dims = append(dims, planes)
	}
	fits, err := fitsio.Create(w)
	if err != nil {
		return err
	}
	defer fits.Close()
	im := fitsio.NewImage(-64, dims)
	defer im.Close()
	err = im.Header().Append(
		fitsio.Card{Name: "CONTENT", Value: content, Comment: "MEASUREMENT or POSERR (read - commanded)"},
		fitsio.Card{Name: "X1", Value: g.X1, Comment: "first x position, um"},
		fitsio.Card{Name: "X2", Value: g.X2, Comment: "last x position, um"},
		fitsio.Card{Name: "Y1", Value: g.Y1, Comment: "first y position, um"},
		fitsio.Card{Name: "Y2", Value: g.Y2, Comment: "last y position, um"},
		fitsio.Card{Name: "SCANZ", Value: z, Comment: "z height of the scan, um"},
		fitsio.Card{Name: "NERR", Value: nerr, Comment: "points with a move or measurement error"},
	)
	if err != nil {
		return err
	}
	err = im.Write(data)
	if err != nil {
		return err
	}
	return fits.Write(im)
}
