// Package report defines the versioned diagnostic report schema and
// the rating threshold tables used to label measurements.
//
// The schema evolves additively: new fields are optional, existing
// fields never change meaning. Threshold tables are data, not code, so
// presentation policy can change without touching measurement logic.
package report
