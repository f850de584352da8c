// Package filters implements the PDF stream filters the reader and writer
// need: FlateDecode with TIFF and PNG predictors, and its encoder.
//
//	decoded, err := filters.FlateDecode(data, filters.Params{Predictor: 12, Columns: 5})
package filters
