// Package waveprop simulates scalar free-space optical diffraction: given a
// complex wavefield sampled on a planar grid, it computes the field on a
// parallel plane at an arbitrary propagation distance for a given wavelength
// and sampling geometry.
//
// Three propagation strategies are available:
//
//   - DirectIntegration: brute-force numerical quadrature of the
//     Rayleigh-Sommerfeld integral. Very expensive, but free of DFT artifacts;
//     used as the ground-truth oracle for the faster methods.
//   - FFTDirectIntegration: the same integral realized as a linear convolution
//     via zero-padded FFTs, with Simpson's rule quadrature weighting.
//   - AngularSpectrum: band-limited angular spectrum method with optional
//     off-axis output shift and output-grid rescaling (spectral interpolation
//     or chirp convolution).
//
// All operations are pure functions over their numeric inputs: no state is
// shared or retained across calls, so independent propagations (for example
// one per wavelength band) may be run concurrently by the caller.
package waveprop
