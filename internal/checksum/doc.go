// Package checksum fingerprints source files as they are read.
//
// An import reads its extract exactly once, so the digest is computed on the
// fly by wrapping the source in a Reader instead of hashing the file in a
// separate pass. Two digests are kept:
//
//   - Raw: SHA-256 of the exact bytes read
//   - Normalized: SHA-256 after dropping carriage returns and trailing blanks
//     on each line, so the same extract copied between Windows and Unix
//     hosts keeps its identity
//
// # Example Usage
//
//	src := checksum.NewReader(file)
//	// ... consume src to EOF ...
//	fmt.Println(src.Raw(), src.Normalized())
package checksum
