// Package driving provides interfaces for primary/inbound adapters such
// as the CLI.
package driving
