// Package store holds the in-process reservation state: the account set
// (users and their tickets) and the train catalog (routes and seat
// matrices). Both are safe for concurrent use. Only the booking engine
// is expected to flip seats or add and remove tickets; every other
// caller reads.
package store
