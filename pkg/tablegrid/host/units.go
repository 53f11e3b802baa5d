package host

// TwipsPerPoint is the number of twips (twentieths of a point) per point.
// WordprocessingML expresses dxa widths in twips.
const TwipsPerPoint = 20

// TwipsToPoints converts a dxa width to points.
func TwipsToPoints(twips int64) float64 {
	return float64(twips) / TwipsPerPoint
}

// HalfPointsToPoints converts a w:sz value to points.
func HalfPointsToPoints(halfPoints int64) float64 {
	return float64(halfPoints) / 2
}
