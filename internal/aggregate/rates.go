package aggregate

import (
	"math"

	"injuryreport/internal/normalize"
)

// carLike is the vehicle set the seatbelt rate is restricted to.
var carLike = map[string]struct{}{
	normalize.VehicleCar:        {},
	normalize.VehiclePickupVan:  {},
	normalize.VehicleBus:        {},
	normalize.VehicleTruckHeavy: {},
}

// triShare computes affirmative/(affirmative+negative) over the member rows,
// optionally restricted by pred. Missing flags join neither side; a zero
// denominator yields nil (the safe-division policy used throughout).
func triShare(ds *Dataset, members []int, get func(normalize.Row) normalize.Tri, pred func(normalize.Row) bool) any {
	num, den := 0, 0
	for _, i := range members {
		r := ds.Rows[i]
		if pred != nil && !pred(r) {
			continue
		}
		switch get(r) {
		case normalize.TriYes:
			num++
			den++
		case normalize.TriNo:
			den++
		}
	}
	if den == 0 {
		return nil
	}
	return float64(num) / float64(den)
}

// alcoholShare, helmetRate, and seatbeltRate implement the three standard
// risk measures. Helmet is Motorcycle-only; seatbelt is car-like-only.
func alcoholShare(ds *Dataset, members []int) any {
	return triShare(ds, members, func(r normalize.Row) normalize.Tri { return r.Alcohol }, nil)
}

func helmetRate(ds *Dataset, members []int) any {
	return triShare(ds, members,
		func(r normalize.Row) normalize.Tri { return r.Helmet },
		func(r normalize.Row) bool { return r.Vehicle == normalize.VehicleMotorcycle })
}

func seatbeltRate(ds *Dataset, members []int) any {
	return triShare(ds, members,
		func(r normalize.Row) normalize.Tri { return r.Seatbelt },
		func(r normalize.Row) bool {
			_, ok := carLike[r.Vehicle]
			return ok
		})
}

// deaths counts fatal outcomes among the member rows.
func deaths(ds *Dataset, members []int) int {
	n := 0
	for _, i := range members {
		if ds.Rows[i].Death {
			n++
		}
	}
	return n
}

// per100k normalizes a case count to a rate per 100k population, rounded to
// 2 decimals; nil when the population is unknown.
func per100k(cases int, pop float64, ok bool) any {
	if !ok || pop <= 0 {
		return nil
	}
	return round(float64(cases)*100000/pop, 2)
}

// round rounds to the given number of decimal places.
func round(f float64, places int) float64 {
	scale := math.Pow10(places)
	return math.Round(f*scale) / scale
}
