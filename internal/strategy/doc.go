// Package strategy resolves, per concrete kind, the mapper that converts an
// object to and from a column row, and the constructor that creates an empty
// object for a stored discriminator.
//
// Kinds form a graph: each kind names a parent kind and any number of
// capability kinds. A kind without its own mapper uses the mapper of its
// nearest registered ancestor or capability, ties going to the earlier
// registration, and finally the family default.
package strategy
