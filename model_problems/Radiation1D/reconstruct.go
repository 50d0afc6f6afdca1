package Radiation1D

import "github.com/twomomentrad/radmoment/radiation"

// reconstruct builds the left and right primitive radiation states at faces
// [lo,hi) by piecewise-linear reconstruction with the monotonized-central
// limiter. Face i sits on the left edge of cell i, so its left state comes
// from cell i-1 and its right state from cell i.
func (c *Solver) reconstruct(lo, hi int) {
	for g := 0; g < c.Sys.NGroups; g++ {
		plmFace(c.prim.EradG[g], c.left.EradG[g], c.right.EradG[g], lo, hi)
		plmFace(c.prim.Fx[g], c.left.Fx[g], c.right.Fx[g], lo, hi)
		plmFace(c.prim.Fy[g], c.left.Fy[g], c.right.Fy[g], lo, hi)
		plmFace(c.prim.Fz[g], c.left.Fz[g], c.right.Fz[g], lo, hi)
	}
}

func plmFace(q, left, right []float64, lo, hi int) {
	for i := lo; i < hi; i++ {
		left[i] = q[i-1] + 0.5*radiation.MC(q[i]-q[i-1], q[i-1]-q[i-2])
		right[i] = q[i] - 0.5*radiation.MC(q[i+1]-q[i], q[i]-q[i-1])
	}
}
