// Package normalisers provides implementations of the Normaliser interface.
// A normaliser turns a raw corpus file into a domain.Document ready for chunking.
package normalisers
