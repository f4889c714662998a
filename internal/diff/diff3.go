package diff

import "slices"

// Lines3 classifies the changes local and remote made to base.
//
// Both sides are diffed against base and the two hunk streams are walked in
// base order. Hunks whose base ranges overlap or touch are grouped into one
// item; the other side's range for a group is derived from the running line
// offset of that side. On equal base starts the local hunk opens the group.
func Lines3(base, local, remote []string, opts Options) []Item3 {
	in := newInterner(opts)
	bt := in.tokenize(base)
	lt := in.tokenize(local)
	rt := in.tokenize(remote)

	return merge3(lt, rt, diffTokens(bt, lt), diffTokens(bt, rt))
}

func merge3(local, remote []int, lh, rh []hunk) []Item3 {
	var items []Item3

	var li, ri int
	var lDelta, rDelta int

	for li < len(lh) || ri < len(rh) {
		var lo int
		if ri >= len(rh) || (li < len(lh) && lh[li].aStart <= rh[ri].aStart) {
			lo = lh[li].aStart
		} else {
			lo = rh[ri].aStart
		}

		hi := lo
		lFirst, rFirst := li, ri
		lStart, rStart := lo+lDelta, lo+rDelta

	grow:
		for {
			switch {
			case li < len(lh) && lh[li].aStart <= hi:
				hi = max(hi, lh[li].aEnd())
				lDelta += lh[li].bCount - lh[li].aCount
				li++
			case ri < len(rh) && rh[ri].aStart <= hi:
				hi = max(hi, rh[ri].aEnd())
				rDelta += rh[ri].bCount - rh[ri].aCount
				ri++
			default:
				break grow
			}
		}

		lEnd, rEnd := hi+lDelta, hi+rDelta

		it := Item3{
			BaseStart:   lo,
			BaseCount:   hi - lo,
			LocalStart:  lStart,
			LocalCount:  lEnd - lStart,
			RemoteStart: rStart,
			RemoteCount: rEnd - rStart,
			Action:      ActionDefault,
		}

		hasLocal, hasRemote := li > lFirst, ri > rFirst
		switch {
		case hasLocal && !hasRemote:
			it.Differences = DiffBaseRemoteSame
		case hasRemote && !hasLocal:
			it.Differences = DiffBaseLocalSame
		case slices.Equal(local[lStart:lEnd], remote[rStart:rEnd]):
			it.Differences = DiffLocalRemoteSame
		default:
			it.Differences = DiffAllDifferent
		}

		items = append(items, it)
	}

	return items
}
