// Package fractal holds the per-pixel mathematics of the renderer: the
// escape-time evaluator for the Mandelbrot iteration and the mapping from an
// iteration count to a packed RGB colour.
//
// Both are pure functions of their inputs, so they can be called from any
// number of goroutines without coordination.
package fractal
