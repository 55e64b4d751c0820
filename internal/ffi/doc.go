// Package ffi is the only code allowed to cross the libpostal C boundary.
//
// It owns the process-wide setup gate, the conversion between C string
// arrays and owned Go values, and the pairing of every native allocation
// with exactly one release. Callers above this package never see a C
// pointer.
package ffi
