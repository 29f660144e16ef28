package fractal

// EscapeRadiusSquared is |z|^2 beyond which the orbit is known to diverge.
const EscapeRadiusSquared = 4.0

// IterationsAt returns how many iterations of z = z^2 + c, with c = x0 + i*y0,
// run before |z| exceeds 2, capped at maxIter. The orbit starts at c itself.
// A result equal to maxIter means the point is treated as inside the set.
func IterationsAt(x0, y0 float64, maxIter int) int {
	x, y := x0, y0
	iter := 0
	for x*x+y*y <= EscapeRadiusSquared && iter < maxIter {
		xt := x*x - y*y + x0
		yt := 2*x*y + y0
		x, y = xt, yt
		iter++
	}
	return iter
}
