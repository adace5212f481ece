// Package types defines the shared component data model used by the scorer,
// the simulator, the report assembler and every presentation surface.
// These are plain value types; nothing here performs I/O.
package types
