// Package biquad provides second-order IIR filter sections and the RBJ
// coefficient designers used by the K-weighting cascade.
//
// Sections implement Direct Form II Transposed processing. Designers
// return passthrough-safe coefficients for out-of-range parameters so
// a misconfigured filter degrades to unity gain instead of exploding.
package biquad
