package packet

import (
	"fmt"
	"math/bits"
)

// DecodeError reports a frame that matched a known identifier but failed
// validation. The pipeline drops such frames and keeps going; a live console
// retransmits its state continuously, so nothing is retried.
type DecodeError struct {
	ID     byte
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s (0x%02X): %s", TypeName(e.ID), e.ID, e.Reason)
}

func decodeErrf(id byte, format string, args ...any) error {
	return &DecodeError{ID: id, Reason: fmt.Sprintf(format, args...)}
}

// Decode translates one framed byte sequence into its Event variant. It is a
// pure function: decoders share no state and may be exercised directly by
// tests without the synchronizer in front of them.
func Decode(frame []byte) (Event, error) {
	if len(frame) == 0 {
		return nil, &DecodeError{Reason: "empty frame"}
	}
	id := frame[0]
	if !KnownShape(id, len(frame)) {
		return nil, decodeErrf(id, "no packet with length %d", len(frame))
	}
	switch id {
	case IDTimeScore:
		return decodeTimeScore(frame)
	case IDPenalty:
		return decodePenalty(frame)
	case IDHomePoints:
		return decodePlayerPoints(frame, TeamHome)
	case IDGuestPoints:
		return decodePlayerPoints(frame, TeamGuest)
	case IDFouls:
		return decodeFouls(frame)
	case IDTimeout:
		return decodeTimeout(frame)
	}
	return nil, decodeErrf(id, "unrecognized identifier")
}

// pairAt validates the complement pair at offset off and returns its value.
func pairAt(frame []byte, off int) (byte, error) {
	c, v := frame[off], frame[off+1]
	if !validPair(c, v) {
		return 0, decodeErrf(frame[0], "complement mismatch at offset %d: %02X/%02X", off, c, v)
	}
	return v, nil
}

// pairs validates n consecutive complement pairs starting at offset 1 and
// returns their values.
func pairs(frame []byte, n int) ([]byte, error) {
	vals := make([]byte, n)
	for i := 0; i < n; i++ {
		v, err := pairAt(frame, 1+i*2)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

// normalize maps the NoData sentinel to zero. Used for fields where "not
// present" and "empty" mean the same thing, such as penalty slots.
func normalize(v byte) byte {
	if v == NoData {
		return 0
	}
	return v
}

func decodeTimeScore(frame []byte) (Event, error) {
	ev := TimeScore{
		ActionSeconds: -1,
		HomeScore:     -1,
		GuestScore:    -1,
		Period:        -1,
		HomeTimeouts:  -1,
		GuestTimeouts: -1,
	}

	mm, err := pairAt(frame, 1)
	if err != nil {
		return nil, err
	}
	ss, err := pairAt(frame, 3)
	if err != nil {
		return nil, err
	}
	flags, err := pairAt(frame, 5)
	if err != nil {
		return nil, err
	}
	act, err := pairAt(frame, 7)
	if err != nil {
		return nil, err
	}

	if mm > 59 || ss > 59 {
		return nil, decodeErrf(IDTimeScore, "clock %d:%d out of range", mm, ss)
	}
	ev.Minutes, ev.Seconds = mm, ss
	ev.Running = flags&0x10 != 0

	switch {
	case act == NoData:
		// action clock idle
	case act <= 60:
		ev.ActionSeconds = int(act)
	default:
		return nil, decodeErrf(IDTimeScore, "action clock %d out of range", act)
	}

	if len(frame) >= timeScoreTimeoutLen {
		b5, err := pairAt(frame, 9)
		if err != nil {
			return nil, err
		}
		ev.TimeoutSeconds = b5 & 0x7F
	}

	if len(frame) >= timeScoreScoreLen {
		home, err := pairAt(frame, 11)
		if err != nil {
			return nil, err
		}
		guest, err := pairAt(frame, 13)
		if err != nil {
			return nil, err
		}
		period, err := pairAt(frame, 15)
		if err != nil {
			return nil, err
		}
		if home != NoData {
			ev.HomeScore = int(home)
		}
		if guest != NoData {
			ev.GuestScore = int(guest)
		}
		if period != NoData {
			ev.Period = int(period)
		}
	}

	if len(frame) >= timeScoreFullLen {
		// Timeouts used ride along as direct nibble values, home high.
		used, err := pairAt(frame, 17)
		if err != nil {
			return nil, err
		}
		ev.HomeTimeouts = int(used >> 4 & 0x0F)
		ev.GuestTimeouts = int(used & 0x0F)
	}

	return ev, nil
}

func decodePenalty(frame []byte) (Event, error) {
	vals, err := pairs(frame, 18)
	if err != nil {
		return nil, err
	}

	var ev Penalty
	for team := 0; team < 2; team++ {
		for slot := 0; slot < PenaltySlots; slot++ {
			base := team*PenaltySlots*3 + slot*3
			mm, ss, player := vals[base], vals[base+1], vals[base+2]
			// 0xFF in any field marks the whole slot invalid; the console
			// emits it transiently while an operator edits a penalty.
			if mm == 0xFF || ss == 0xFF || player == 0xFF {
				continue
			}
			mm, ss, player = normalize(mm), normalize(ss), normalize(player)
			if mm > 59 || ss > 59 {
				return nil, decodeErrf(IDPenalty, "slot %d remaining %d:%d out of range", slot, mm, ss)
			}
			s := PenaltySlot{Player: player, Minutes: mm, Seconds: ss}
			if team == 0 {
				ev.Home[slot] = s
			} else {
				ev.Guest[slot] = s
			}
		}
	}
	return ev, nil
}

func decodePlayerPoints(frame []byte, team Team) (Event, error) {
	vals, err := pairs(frame, TeamSize)
	if err != nil {
		return nil, err
	}
	ev := PlayerPoints{Team: team}
	for i, v := range vals {
		ev.Points[i] = normalize(v)
	}
	return ev, nil
}

func decodeFouls(frame []byte) (Event, error) {
	vals, err := pairs(frame, TeamSize)
	if err != nil {
		return nil, err
	}
	var ev Fouls
	for i, v := range vals {
		ev.Home[i] = v >> 4 & 0x0F
		ev.Guest[i] = v & 0x0F
	}
	return ev, nil
}

func decodeTimeout(frame []byte) (Event, error) {
	switch len(frame) {
	case timeoutSingleLen:
		v, err := pairAt(frame, 1)
		if err != nil {
			return nil, err
		}
		return Timeout{
			GuestUsed: uint8(bits.OnesCount8(v >> 4 & 0x0F)),
			HomeUsed:  uint8(bits.OnesCount8(v & 0x0F)),
		}, nil
	case timeoutDoubleLen:
		guest, err := pairAt(frame, 1)
		if err != nil {
			return nil, err
		}
		home, err := pairAt(frame, 3)
		if err != nil {
			return nil, err
		}
		return Timeout{
			GuestUsed: uint8(bits.OnesCount8(guest & 0x0F)),
			HomeUsed:  uint8(bits.OnesCount8(home & 0x0F)),
		}, nil
	}
	return nil, decodeErrf(IDTimeout, "no packet with length %d", len(frame))
}
