package mounting

// FixedMount keeps the rows at the configured tilt and azimuth all year.
type FixedMount struct {
	Tilt    float64
	Azimuth float64
}

func (m *FixedMount) Name() string { return "fixed" }

func (m *FixedMount) Orient(Context) Orientation {
	return Orientation{Tilt: m.Tilt, Azimuth: m.Azimuth}
}
