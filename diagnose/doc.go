// Package diagnose runs named diagnostic tests in dependency order and
// aggregates their results into an overall verdict.
//
// Tests are grouped into scopes (pre-permission, permission, device,
// quality) and executed strictly sequentially: later tests may depend
// on context state mutated by earlier ones, such as an opened sample
// source. Quality tests never start automatically; they require an
// explicit trigger and a passed device gate.
package diagnose
