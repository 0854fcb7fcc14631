// Package domain contains the core business entities and errors for the
// vectra embedding and vector-search engine. It has no dependencies on
// adapters or infrastructure.
package domain
