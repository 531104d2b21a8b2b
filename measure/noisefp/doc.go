// Package noisefp classifies the spectral character of a noise-floor
// capture: broadband (hiss-like), mains hum, or another tonal
// component. The classification makes remediation advice specific; hum
// points at grounding and cabling, broadband noise at gain staging.
package noisefp
