// Package model defines the records held by the local data layer:
// bookings, services, users, and the booking status machine.
//
// All records are plain values that round-trip through encoding/json
// without loss. Validation rules are expressed as validator struct tags
// and checked by Validate.
package model
