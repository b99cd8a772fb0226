package solar

import (
	"math"
	"sort"
)

// MaxGroundZenith bounds the beam-on-ground calculation; lower suns only
// graze the crop between long row shadows.
const MaxGroundZenith = 87.0

// UnshadedGroundFraction is the fraction of the ground between rows that
// receives direct beam.
func UnshadedGroundFraction(tilt, surfaceAzimuth, zenith, solarAzimuth, gcr float64) float64 {
	if zenith > MaxGroundZenith {
		return 0
	}
	tanPhi := tand(zenith) * cosd(solarAzimuth-surfaceAzimuth)
	return 1 - math.Min(1, gcr*math.Abs(cosd(tilt)+sind(tilt)*tanPhi))
}

// SkyViewFactor is the ground-to-sky view factor under infinite rows, averaged
// over one pitch. Rows of width gcr*pitch are centred at height above the
// ground and tilted by tilt; up to rows neighbours on each side block the sky.
func SkyViewFactor(tilt, gcr, pitch, height float64, rows, samples int) float64 {
	if samples <= 0 || pitch <= 0 {
		return 0
	}
	halfW := gcr * pitch / 2
	dx := halfW * cosd(tilt)
	dy := halfW * sind(tilt)

	type span struct{ lo, hi float64 }
	spans := make([]span, 0, 2*rows+1)

	total := 0.0
	for i := 0; i < samples; i++ {
		x := (float64(i) + 0.5) / float64(samples) * pitch

		spans = spans[:0]
		for k := -rows; k <= rows; k++ {
			cx := float64(k) * pitch
			a1 := math.Atan2(height+dy, cx+dx-x)
			a2 := math.Atan2(height-dy, cx-dx-x)
			spans = append(spans, span{math.Min(a1, a2), math.Max(a1, a2)})
		}
		sort.Slice(spans, func(a, b int) bool { return spans[a].lo < spans[b].lo })

		// 2-D view factor of the sky between elevation angles, summed over gaps.
		visible := 0.0
		cur := 0.0
		for _, s := range spans {
			if s.lo > cur {
				visible += 0.5 * (math.Cos(cur) - math.Cos(s.lo))
			}
			cur = math.Max(cur, s.hi)
		}
		if cur < math.Pi {
			visible += 0.5 * (math.Cos(cur) + 1)
		}
		total += visible
	}
	return total / float64(samples)
}

// CropIrradiance combines the unshaded beam on horizontal ground with the
// diffuse light the ground sees between rows.
func CropIrradiance(unshaded, skyView float64, pos Position, irr Irradiance) float64 {
	return unshaded*irr.DNI*math.Max(cosd(pos.Zenith), 0) + skyView*irr.DHI
}
