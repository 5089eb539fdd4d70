// Package services answers queries against a loaded summary, reruns the
// pipeline on demand and reports service health.
package services
