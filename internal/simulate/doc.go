// Package simulate projects component recovery time with a Monte Carlo run.
//
// A Simulator draws samples from Normal(base, 0.25*base), drops non-positive
// draws and reports the 10th/50th/90th percentiles as best/likely/worst
// months. Percentiles use linear interpolation between order statistics.
//
// The random source is injected so tests can seed it. A Simulator is not safe
// for concurrent use; give each goroutine its own.
package simulate
