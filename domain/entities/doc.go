// Package entities provides the core domain types of the program loader.
// They carry no runtime dependencies: the wazero-facing code lives in host/.
package entities
