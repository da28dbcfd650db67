// Package flr decodes fixed-length-record (FLR) text files.
//
// A line is classified by its leading marker, sliced at the 1-based inclusive
// column ranges of its layout (shifted right by a global offset), and its
// fields coerced to integers or kept as text. Reader drives this over a whole
// file and appends synthetic fields such as the line number.
//
// Decoding is strict: an unknown marker, a range past the end of a line or a
// numeric column holding anything but an integer stops the stream. Blank
// numeric columns are not errors; they decode to flrload.Empty().
//
// Typical use:
//
//	r, err := flr.NewReader(f, layout.Census())
//	if err != nil { ... }
//	for r.Next() {
//	    rec := r.Record()
//	    // route rec by rec.Type
//	}
//	if err := r.Err(); err != nil { ... }
package flr
