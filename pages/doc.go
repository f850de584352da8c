// Package pages provides PDF page tree traversal and page access.
//
// PDF documents organize pages in a tree of /Pages nodes. The [PageTree]
// type flattens it in document order:
//
//	tree := pages.NewPageTree(pagesDict, resolver)
//	count, _ := tree.Count()
//	page, _ := tree.GetPage(0) // 0-indexed
//
// MediaBox, CropBox, Resources and Rotate are inheritable: a page that does
// not set them takes the value of its nearest ancestor. [Page.Materialize]
// returns the page dictionary with those values copied in, which is what a
// page needs when it is moved into a different tree.
//
// The [ObjectResolver] interface abstracts object lookup so the page tree
// does not depend on the reader.
package pages
