package hotspot

// Detector maps pointer coordinates onto the configured hotspots of a fixed
// screen layout.
type Detector struct {
	regions  []Region
	resolver Resolver
}

// NewDetector returns a Detector over regions, in the order given.
// Regions are assumed not to overlap.
func NewDetector(regions []Region, r Resolver) *Detector {
	rs := make([]Region, len(regions))
	copy(rs, regions)
	return &Detector{regions: rs, resolver: r}
}

// Regions returns a copy of the screen layout the detector was built with.
func (d *Detector) Regions() []Region {
	rs := make([]Region, len(d.regions))
	copy(rs, d.regions)
	return rs
}

// Detect returns the hotspot containing (x, y). Only the first region that
// contains the point is examined, and within it the first enabled position
// in Positions order that matches wins.
func (d *Detector) Detect(x, y int16) (Key, bool) {
	for _, r := range d.regions {
		if !r.Contains(x, y) {
			continue
		}
		for _, pos := range Positions {
			spec, ok := d.resolver.Lookup(r.Name, pos)
			if !ok || !spec.Enabled {
				continue
			}
			if inZone(x, y, r, pos, int(spec.Size)) {
				return Key{Screen: r.Name, Position: pos}, true
			}
		}
		return Key{}, false
	}
	return Key{}, false
}

// inZone applies the membership test for pos. A zero size never matches a
// point inside the region.
func inZone(x, y int16, r Region, pos Position, size int) bool {
	px, py := int(x), int(y)
	sx, sy := int(r.X), int(r.Y)
	sw, sh := int(r.Width), int(r.Height)

	top := py < sy+size
	bottom := py >= sy+sh-size
	left := px < sx+size
	right := px >= sx+sw-size

	switch pos {
	case Top:
		return top
	case Bottom:
		return bottom
	case Left:
		return left
	case Right:
		return right
	case TopLeft:
		return left && top
	case TopRight:
		return right && top
	case BottomLeft:
		return left && bottom
	case BottomRight:
		return right && bottom
	}
	return false
}
