// Package ports defines interfaces for infrastructure operations.
// The loader and the host functions depend on these abstractions;
// infrastructure adapters implement them.
package ports
