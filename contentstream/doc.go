// Package contentstream parses PDF content streams into operations.
//
// A content stream is a sequence of operands followed by their operator:
//
//	q 792 0 0 612 0 0 cm /Im0 Do Q
//
// parses to the operations q, cm (six numbers), Do (/Im0) and Q.
//
//	ops, err := contentstream.Parse(data)
//	for _, op := range ops {
//	    fmt.Println(op.Operator, op.Operands)
//	}
//
// Inline images (BI ... ID <data> EI) become a single "BI" operation whose
// operand is the image dictionary; the sample data is skipped.
package contentstream
