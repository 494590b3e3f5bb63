package vmath

// SegmentDistance returns the closest distance between segments p0-p1 and q0-q1
func SegmentDistance(p0, p1, q0, q1 Vec3F) float64 {
	u := V3FSub(p1, p0)
	v := V3FSub(q1, q0)
	w := V3FSub(p0, q0)

	a := V3FDot(u, u)
	e := V3FDot(v, v)
	f := V3FDot(v, w)

	var s, t float64
	switch {
	case a == 0 && e == 0:
		return V3FMag(w)
	case a == 0:
		t = Clamp01(f / e)
	default:
		c := V3FDot(u, w)
		if e == 0 {
			s = Clamp01(-c / a)
		} else {
			bb := V3FDot(u, v)
			denom := a*e - bb*bb
			if denom != 0 {
				s = Clamp01((bb*f - c*e) / denom)
			}
			t = (bb*s + f) / e
			if t < 0 {
				t = 0
				s = Clamp01(-c / a)
			} else if t > 1 {
				t = 1
				s = Clamp01((bb - c) / a)
			}
		}
	}
	cp := V3FMulAdd(p0, u, s)
	cq := V3FMulAdd(q0, v, t)
	return V3FDist(cp, cq)
}
