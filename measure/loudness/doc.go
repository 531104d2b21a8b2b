// Package loudness implements gated loudness measurement in the manner
// of ITU-R BS.1770 / EBU R128.
//
// The pipeline is split into three explicitly testable stages:
// [KWeighting] shapes the raw signal, [BlockCollector] windows the
// filtered samples into overlapping 400 ms mean-square blocks, and
// [Integrate] applies the two-stage (absolute + relative) gating to
// produce integrated loudness in LUFS.
//
// Two failure outcomes are kept distinct on purpose: an empty block
// list yields [ErrInsufficientData] (the capture was too short to
// measure anything), while blocks that all gate out yield
// [ErrNoVoiceDetected] with a loudness of -Inf (the capture was long
// enough and measured as silence, usually a muted or disconnected
// source).
package loudness
