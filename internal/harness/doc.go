// Package harness runs YAML scenarios against a throwaway instance of the
// local data layer.
//
// A scenario is a list of actions (session.login, cart.add, checkout,
// booking.set_status, ...) with optional expectations on each outcome,
// followed by assertions over the recorded trace and the final contents of
// the stored slots.
//
// Each run gets a fresh in-memory database, a running writer, a frozen
// clock and a predictable booking id sequence, so two runs of the same
// scenario produce identical traces. That makes traces suitable for golden
// file comparison (see RunWithGolden).
//
// Scenario format:
//
//	name: checkout-creates-requests
//	description: Checking out two services creates two pending requests
//	setup:
//	  - action: session.login
//	    args: {id: cust-1, first_name: Ada, last_name: Lovelace}
//	flow:
//	  - invoke: cart.add
//	    args: {service_id: "1"}
//	  - invoke: checkout
//	    args: {date: "2026-02-01", slot: "09:00 - 10:00"}
//	    expect:
//	      case: ok
//	      result: {bookings: 1}
//	assertions:
//	  - type: trace_order
//	    actions: [cart.add, checkout]
//	  - type: final_state
//	    slot: bookings
//	    where: {id: booking-1}
//	    expect: {status: pending, providerId: provider2}
//
// Outcome cases are "ok" or one of the error cases listed in Cases.
package harness
