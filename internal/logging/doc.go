// Package logging provides the flrload.Logger implementations used by the CLI
// and the import service.
//
//   - ConsoleLogger: writes "[VERBOSE]"/"[ERROR]" tagged lines to stderr or
//     any io.Writer, optionally prefixed with the run ID of an import
//   - NullLogger: discards everything
//
// Both are safe for concurrent use.
package logging
