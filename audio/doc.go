// Package audio provides the sample containers and source abstractions
// shared by the measurement and mastering packages.
//
// A [Buffer] holds a fully decoded multi-channel clip as per-channel
// float64 slices. A [Source] supplies pull-based instantaneous sample
// reads and whole-clip decodes; device acquisition and permission
// negotiation happen outside this module, the Source is handed in
// already opened.
//
// [Capture] implements the wall-clock-bounded collection loop used by
// the fixed-duration diagnostic capture windows. It reports a coverage
// ratio (collected vs. expected samples) so callers can flag unreliable
// measurements instead of silently trusting them.
package audio
