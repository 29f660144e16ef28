// Package render fills a frame buffer with escape-time colours.
//
// A frame is split into contiguous row bands, one per goroutine. Each
// goroutine owns its band exclusively, so no locking is needed; Render joins
// every goroutine before returning, after which the whole buffer is visible
// to the caller. The split only decides which goroutine computes a pixel, not
// the pixel's value, so every thread count yields identical output.
package render
