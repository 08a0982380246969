// Package queue provides the bounded max-heap used by k-nearest-neighbour search.
package queue
