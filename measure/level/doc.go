// Package level provides unweighted time-domain level measurements:
// instantaneous RMS in dBFS, a robust noise-floor estimate, and sample
// and true peak detection.
//
// The true-peak measurement uses 4x linear-interpolation oversampling.
// This is a deliberate simplification versus polyphase-FIR
// reconstruction and may under-read inter-sample peaks by up to ~1 dB
// on adversarial waveforms.
package level
