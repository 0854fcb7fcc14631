// Package services implements the core business logic, wiring driven
// ports (store, embedding provider, extractors, index builder) behind
// the driving interfaces the CLI consumes.
package services
