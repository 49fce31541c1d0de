// Package fluidity estimates whether the host can composite at the target
// frame rate by timing a short trial render, then recommends the frame rate
// and resolution tier for the rest of the batch.
package fluidity
