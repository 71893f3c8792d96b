package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/ezoic/vipattern/core/dataset"
	"github.com/ezoic/vipattern/pattern"
	"github.com/ezoic/vipattern/pkg/errors"
	"github.com/ezoic/vipattern/preprocessing"
)

// plotSelection saves one scatter per measure pair of sel into dir, with
// points colored by the dimension that explains their difference.
func plotSelection(dir string, snap *dataset.Snapshot, sel pattern.PairFeatureSelection) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create %s", dir)
	}
	rows := snap.Complete(sel.A.X, sel.A.Y, sel.B.X, sel.B.Y)
	keys := snap.KeysAt(sel.Feature.ID, rows)
	enc := preprocessing.NewLabelEncoder()
	groups := enc.FitTransform(keys)

	var files []string
	for _, pair := range []pattern.MeasurePair{sel.A, sel.B} {
		// 散布図を作成
		p := plot.New()
		p.Title.Text = fmt.Sprintf("%s by %s", pair, sel.Feature.ID)
		p.X.Label.Text = pair.X
		p.Y.Label.Text = pair.Y

		points := snap.PointsAt(pair.X, pair.Y, rows)
		series := make([]plotter.XYs, enc.NClasses())
		for i, pt := range points {
			series[groups[i]] = append(series[groups[i]], plotter.XY{X: pt[0], Y: pt[1]})
		}
		for g := range series {
			scatter, err := plotter.NewScatter(series[g])
			if err != nil {
				return nil, errors.Wrapf(err, "scatter %s", pair)
			}
			scatter.GlyphStyle.Color = plotutil.Color(g)
			scatter.GlyphStyle.Radius = vg.Points(1.5)
			p.Add(scatter)
			p.Legend.Add(enc.Classes[g], scatter)
		}

		// PNGファイルとして保存
		name := filepath.Join(dir, fmt.Sprintf("%s_%s.png", pair.X, pair.Y))
		if err := p.Save(6*vg.Inch, 6*vg.Inch, name); err != nil {
			return nil, errors.Wrapf(err, "save %s", name)
		}
		files = append(files, name)
	}
	return files, nil
}
