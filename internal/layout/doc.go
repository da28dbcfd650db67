// Package layout holds the static column layouts of fixed-length-record files.
//
// A Registry maps record types to their layouts and is built once at startup.
// CensusDefinition returns the built-in IPUMS USA household/person format;
// Parse and LoadFile read an equivalent definition from YAML:
//
//	offset: 1
//	markers: {H: household, P: person}
//	synthetic:
//	  household: [line_number, record_type]
//	record_types:
//	  - name: household
//	    table: households
//	    index: [SERIAL]
//	    max_length: 120
//	    fields:
//	      - {name: ACSYR, start: 2, end: 5}
//	      - {name: NOTE, start: 98, end: 110, type: text}
//
// Record types and fields are YAML sequences so that declaration order
// survives parsing.
package layout
