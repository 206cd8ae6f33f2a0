package svg

import "github.com/matzehuels/flowtower/pkg/layout"

func pt(x, y float64) layout.Point { return layout.Point{X: x, Y: y} }
