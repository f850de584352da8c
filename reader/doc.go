// Package reader provides PDF file reading and object resolution.
//
// The reader loads the whole file into memory, merges its cross-reference
// data (tables, streams and incremental updates) and resolves objects on
// demand, including objects packed into object streams.
//
//	r, err := reader.Open("out/out.pdf")
//	if err != nil {
//	    return err
//	}
//	n, err := r.PageCount()
//
// Pages are reached by index (0-based) through [Reader.GetPage]. The image
// XObjects of a page are available through [Reader.PageImages], and
// [PageImage.Decode] turns a JPEG or raw RGB/Gray image back into an
// image.Image.
//
// A Reader caches resolved objects and is not safe for concurrent use.
package reader
