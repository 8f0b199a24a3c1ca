// Package lendbookcopy implements the "lend a book copy to a reader" use case on top of the stream store.
//
// The history of one book copy is loaded by filtering the book copy stream on the book_id metadata column,
// the decision is a pure function and the resulting event is appended inside a transaction.
package lendbookcopy
