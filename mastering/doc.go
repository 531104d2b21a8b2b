// Package mastering implements the offline processing chain that
// prepares a voice recording for distribution: downward expansion of
// low-level noise, loudness normalization to a streaming target, and a
// look-ahead true-peak limiter.
//
// The chain operates on a fully decoded buffer and never mutates its
// input; every stage works on a fresh copy.
package mastering
