package hex

// Ring returns the axial coordinates at exact distance k from center c,
// starting from direction 4 and walking the six sides in Directions order.
// If k==0, returns [c].
func Ring(c Axial, k int) []Axial {
	if k <= 0 {
		return []Axial{c}
	}
	res := make([]Axial, 0, 6*k)
	cur := c.Add(Directions[4].Mul(k))
	for side := 0; side < 6; side++ {
		for step := 0; step < k; step++ {
			res = append(res, cur)
			cur = cur.Add(Directions[side])
		}
	}
	return res
}

// Disk returns all axial coordinates at distance <= r from center c.
func Disk(c Axial, r int) []Axial {
	if r < 0 {
		return nil
	}
	res := make([]Axial, 0, 1+3*r*(r+1))
	for q := -r; q <= r; q++ {
		for r2 := max(-r, -q-r); r2 <= min(r, -q+r); r2++ {
			res = append(res, c.Add(Axial{q, r2}))
		}
	}
	return res
}

// Line returns the cells crossed by the straight segment between the
// centers of a and b, both included.
func Line(a, b Axial) []Axial {
	n := Distance(a, b)
	if n == 0 {
		return []Axial{a}
	}
	ac := a.ToCube()
	bc := b.ToCube()
	// nudge off exact edges so ties resolve the same way along the line
	const eps = 1e-6
	ax, ay, az := float64(ac.X)+eps, float64(ac.Y)+eps, float64(ac.Z)-2*eps
	bx, by, bz := float64(bc.X)+eps, float64(bc.Y)+eps, float64(bc.Z)-2*eps

	out := make([]Axial, 0, n+1)
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		out = append(out, Round(FracCube{
			X: ax + (bx-ax)*t,
			Y: ay + (by-ay)*t,
			Z: az + (bz-az)*t,
		}).ToAxial())
	}
	return out
}
