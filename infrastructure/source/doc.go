// Package source provides BinarySource adapters that retrieve program
// binaries from a directory tree or from an HTTP origin.
//
// Every Fetch performs exactly one retrieval. Nothing is cached and
// nothing is retried.
package source
