// Package core provides the PDF object model and the low-level parsing
// primitives used to validate rendered documents and to merge bordered pages.
//
// # Object Types
//
// PDF defines eight basic object types, all implemented as types satisfying
// the [Object] interface: [Null], [Bool], [Int], [Real], [String], [Name],
// [Array] and [Dict]. [Stream] pairs a dictionary with binary data and
// [IndirectRef] refers to an object by number.
//
// # Parsing
//
// The [Lexer] tokenizes an in-memory PDF and the [Parser] builds objects from
// its tokens. Both work on absolute byte offsets into the whole file, so a
// caller can seek anywhere the cross-reference data points.
//
// # Cross-Reference Data
//
// [XRefParser] reads classic xref tables and PDF 1.5 xref streams, follows
// /Prev chains of incrementally updated files, and merges everything into a
// single [XRefTable]. Objects stored in object streams are reached through
// [ObjectStream].
package core
