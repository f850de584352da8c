// Package writer produces PDF files from core objects.
//
// A [Document] numbers objects as they are added and writes them with a
// classic cross-reference table. Two builders sit on top of it:
//
//   - [WriteImagePage] wraps one bitmap in a single-page document whose page
//     size is the bitmap size at a given resolution.
//   - [Merge] copies the pages of several documents, in argument order, into
//     one document with a flat page tree.
//
// Merging reads its inputs through the reader package and renumbers every
// object it copies, so inputs produced by any PDF writer can be combined.
package writer
