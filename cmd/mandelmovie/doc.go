// Command mandelmovie renders a Mandelbrot zoom animation as a numbered
// series of JPEG frames.
//
// The render command splits the frames across worker processes (the binary
// re-executes itself with the hidden worker subcommand) and each worker
// splits the rows of every frame across goroutines. Other commands inspect
// the run journal and manage the configuration file.
package main
