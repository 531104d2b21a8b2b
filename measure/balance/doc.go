// Package balance analyzes the level relationship between stereo
// channels and detects dead or heavily imbalanced channels.
//
// The input is one sequence of linear RMS readings per channel, as
// produced by a level meter sampled over the capture window. The
// analysis is pure and idempotent: the same readings always yield the
// same verdict.
package balance
