// Package packet implements the wire protocol spoken by the scoreboard
// console. Every packet is a single identifier byte followed by a sequence of
// complement-value byte pairs: the console transmits each payload byte twice,
// first as its bitwise complement and then as the value itself. A pair whose
// complement does not match is treated as line noise and fails the decode.
//
// The packet set is a closed, versioned contract with the console firmware.
// Adding a packet type means adding an identifier constant, a frame shape, an
// Event variant and a decoder; nothing else dispatches on raw bytes.
package packet

// Packet identifier bytes sent by the console.
const (
	IDTimeScore   byte = 0x16 // main clock, action clock, scores, period
	IDFouls       byte = 0x02 // personal fouls, both teams packed per cap
	IDHomePoints  byte = 0x19 // home player points totals
	IDGuestPoints byte = 0x1A // guest player points totals
	IDPenalty     byte = 0x1D // penalty slots, both teams
	IDTimeout     byte = 0xB9 // timeouts used
)

// NoData is the console's "field not present" sentinel. Fields carrying it are
// skipped during state application rather than interpreted as values.
const NoData byte = 0xAA

const (
	// TeamSize is the number of cap numbers per team reported by the console.
	TeamSize = 14

	// PenaltySlots is the number of concurrent penalty slots per team: two
	// regular penalties plus one misconduct.
	PenaltySlots = 3
)

// Frame lengths per packet type, identifier byte included. The time/score
// packet trails off after any pair boundary, so it has several valid lengths
// depending on which optional pairs the console included.
const (
	timeScoreBaseLen    = 9  // clock pairs only
	timeScoreTimeoutLen = 11 // + timeout seconds pair
	timeScoreScoreLen   = 17 // + home score, guest score, period pairs
	timeScoreFullLen    = 19 // + timeouts-used pair
	penaltyLen          = 37 // 18 pairs
	perPlayerLen        = 29 // 14 pairs (points and fouls packets)
	timeoutSingleLen    = 3  // one packed pair
	timeoutDoubleLen    = 5  // guest pair then home pair
)

// KnownShape reports whether a candidate frame of the given identifier byte
// and total length matches any packet the console sends. The byte synchronizer
// uses this to drop noise-sized accumulations before they reach the decoders.
func KnownShape(id byte, length int) bool {
	switch id {
	case IDTimeScore:
		return length == timeScoreBaseLen || length == timeScoreTimeoutLen ||
			length == timeScoreScoreLen || length == timeScoreFullLen
	case IDPenalty:
		return length == penaltyLen
	case IDHomePoints, IDGuestPoints, IDFouls:
		return length == perPlayerLen
	case IDTimeout:
		return length == timeoutSingleLen || length == timeoutDoubleLen
	}
	return false
}

// TypeName returns a short lowercase token for an identifier byte, used as a
// metrics label and in log lines.
func TypeName(id byte) string {
	switch id {
	case IDTimeScore:
		return "time_score"
	case IDPenalty:
		return "penalty"
	case IDHomePoints:
		return "home_points"
	case IDGuestPoints:
		return "guest_points"
	case IDFouls:
		return "fouls"
	case IDTimeout:
		return "timeout"
	}
	return "unknown"
}

// validPair reports whether c is the bitwise complement of v.
func validPair(c, v byte) bool {
	return ^v == c
}

// appendPair appends the complement-value encoding of v to dst.
func appendPair(dst []byte, v byte) []byte {
	return append(dst, ^v, v)
}
