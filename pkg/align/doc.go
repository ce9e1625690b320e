// Package align implements the ordering and grid-layout engine.
//
// Given the board's current selection of image widgets, the package
// determines a linear order among them (numeric title suffix, alphabetical,
// reading order, or luminance) and computes new positions, and optionally
// new sizes, that arrange them into a regular grid anchored to a corner of
// their original bounding box.
//
// The package is pure with respect to the board: all mutations it produces
// are returned as board.Mutation values and committed by the Aligner through
// the board.Board collaborator. Derived state (ordering keys, bounds, grid
// geometry) lives only for the duration of a single operation.
package align
