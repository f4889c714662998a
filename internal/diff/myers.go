package diff

// hunk is a maximal run of changed lines between token sequences a and b.
type hunk struct {
	aStart, aCount int
	bStart, bCount int
}

func (h hunk) aEnd() int { return h.aStart + h.aCount }
func (h hunk) bEnd() int { return h.bStart + h.bCount }

// myers finds a shortest edit script with the linear space refinement of
// Myers' O(ND) algorithm: the middle snake of every subproblem splits it in
// two until one side is empty.
type myers struct {
	a, b    []int
	deleted []bool
	added   []bool

	// frontier buffers, reused by every bisection
	vf, vb []int
}

func diffTokens(a, b []int) []hunk {
	m := &myers{
		a:       a,
		b:       b,
		deleted: make([]bool, len(a)),
		added:   make([]bool, len(b)),
	}

	size := 2*((len(a)+len(b)+1)/2) + 2
	m.vf = make([]int, size)
	m.vb = make([]int, size)

	m.compare(0, len(a), 0, len(b))
	return m.hunks()
}

func (m *myers) compare(aLo, aHi, bLo, bHi int) {
	for aLo < aHi && bLo < bHi && m.a[aLo] == m.b[bLo] {
		aLo++
		bLo++
	}
	for aLo < aHi && bLo < bHi && m.a[aHi-1] == m.b[bHi-1] {
		aHi--
		bHi--
	}

	switch {
	case aLo == aHi:
		for y := bLo; y < bHi; y++ {
			m.added[y] = true
		}
		return
	case bLo == bHi:
		for x := aLo; x < aHi; x++ {
			m.deleted[x] = true
		}
		return
	}

	x, y, ok := m.bisect(aLo, aHi, bLo, bHi)
	if (x == aLo && y == bLo) || (x == aHi && y == bHi) {
		ok = false
	}
	if !ok {
		for i := aLo; i < aHi; i++ {
			m.deleted[i] = true
		}
		for i := bLo; i < bHi; i++ {
			m.added[i] = true
		}
		return
	}

	m.compare(aLo, x, bLo, y)
	m.compare(x, aHi, y, bHi)
}

// bisect walks the forward and backward frontiers, indexed by diagonal
// k = x - y, until they overlap. The returned point lies on a shortest path
// and strictly inside the box, so both halves are smaller than the input.
func (m *myers) bisect(aLo, aHi, bLo, bHi int) (int, int, bool) {
	n, mm := aHi-aLo, bHi-bLo
	maxD := (n + mm + 1) / 2
	off := maxD
	size := 2*maxD + 2

	vf := m.vf[:size]
	vb := m.vb[:size]
	for i := range vf {
		vf[i] = -1
		vb[i] = -1
	}
	vf[off+1] = 0
	vb[off+1] = 0

	delta := n - mm
	front := delta%2 != 0

	// diagonals that ran off the box are trimmed from the next rounds
	var kfStart, kfEnd, kbStart, kbEnd int

	for d := 0; d < maxD; d++ {
		for k := -d + kfStart; k <= d-kfEnd; k += 2 {
			ko := off + k
			var x int
			if k == -d || (k != d && vf[ko-1] < vf[ko+1]) {
				x = vf[ko+1]
			} else {
				x = vf[ko-1] + 1
			}
			y := x - k
			for x < n && y < mm && m.a[aLo+x] == m.b[bLo+y] {
				x++
				y++
			}
			vf[ko] = x

			switch {
			case x > n:
				kfEnd += 2
			case y > mm:
				kfStart += 2
			case front:
				kbo := off + delta - k
				if kbo >= 0 && kbo < size && vb[kbo] != -1 {
					if x >= n-vb[kbo] {
						return aLo + x, bLo + y, true
					}
				}
			}
		}

		for k := -d + kbStart; k <= d-kbEnd; k += 2 {
			ko := off + k
			var x int
			if k == -d || (k != d && vb[ko-1] < vb[ko+1]) {
				x = vb[ko+1]
			} else {
				x = vb[ko-1] + 1
			}
			y := x - k
			for x < n && y < mm && m.a[aHi-x-1] == m.b[bHi-y-1] {
				x++
				y++
			}
			vb[ko] = x

			switch {
			case x > n:
				kbEnd += 2
			case y > mm:
				kbStart += 2
			case !front:
				kfo := off + delta - k
				if kfo >= 0 && kfo < size && vf[kfo] != -1 {
					fx := vf[kfo]
					fy := fx - (kfo - off)
					if fx >= n-x {
						return aLo + fx, bLo + fy, true
					}
				}
			}
		}
	}

	return 0, 0, false
}

// hunks coalesces the per-line change marks into maximal runs.
func (m *myers) hunks() []hunk {
	var out []hunk

	i, j := 0, 0
	for i < len(m.a) || j < len(m.b) {
		if i < len(m.a) && j < len(m.b) && !m.deleted[i] && !m.added[j] {
			i++
			j++
			continue
		}

		h := hunk{aStart: i, bStart: j}
		for i < len(m.a) && m.deleted[i] {
			i++
		}
		for j < len(m.b) && m.added[j] {
			j++
		}
		h.aCount = i - h.aStart
		h.bCount = j - h.bStart

		if h.aCount == 0 && h.bCount == 0 {
			// unmatched tail; cannot happen for a consistent marking
			h.aCount = len(m.a) - i
			h.bCount = len(m.b) - j
			i, j = len(m.a), len(m.b)
		}
		out = append(out, h)
	}

	return out
}
