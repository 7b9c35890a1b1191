// Package badger implements the store contract on an embedded BadgerDB
// database. Collections are key prefixes, not separate databases; records
// carry their vector inline.
package badger
