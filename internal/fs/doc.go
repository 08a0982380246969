// Package fs provides filesystem abstractions for testability and fault injection.
//
// The package defines two key interfaces:
//
//   - [File]: an open file with read/write/sync capabilities
//   - [FileSystem]: filesystem operations (open, temp files, rename, remove)
//
// # Implementations
//
//   - [LocalFS]: production implementation using the os package
//   - [FaultyFS]: test utility that simulates disk-full, read-only and rename failures
//
// Production code uses fs.Default. Cache tests inject [FaultyFS] to prove that
// write failures degrade to "no caching" instead of surfacing to callers:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule(".partial", fs.Fault{FailAfterBytes: 16})
//
// Operations take no context.Context; local filesystem calls are not
// interruptible at the syscall level.
package fs
