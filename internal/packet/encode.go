package packet

// Encode produces the canonical wire bytes for an event. Decoding an encoded
// event recovers the original field values over the closed packet field set.
// The encoders exist for the replay port, dev fixtures and round-trip tests;
// the process never writes to the console.
func Encode(e Event) []byte {
	switch ev := e.(type) {
	case TimeScore:
		return encodeTimeScore(ev)
	case Penalty:
		return encodePenalty(ev)
	case PlayerPoints:
		return encodePlayerPoints(ev)
	case Fouls:
		return encodeFouls(ev)
	case Timeout:
		return encodeTimeout(ev)
	}
	return nil
}

func encodeTimeScore(ev TimeScore) []byte {
	frame := make([]byte, 0, timeScoreFullLen)
	frame = append(frame, IDTimeScore)

	frame = appendPair(frame, ev.Minutes)
	frame = appendPair(frame, ev.Seconds)

	var flags byte
	if ev.Running {
		flags |= 0x10
	}
	frame = appendPair(frame, flags)

	act := NoData
	if ev.ActionSeconds >= 0 {
		act = byte(ev.ActionSeconds)
	}
	frame = appendPair(frame, act)

	withUsed := ev.HomeTimeouts >= 0 || ev.GuestTimeouts >= 0
	withScores := withUsed || ev.HomeScore >= 0 || ev.GuestScore >= 0 || ev.Period >= 0
	withTimeout := withScores || ev.TimeoutSeconds > 0

	if !withTimeout {
		return frame
	}
	frame = appendPair(frame, ev.TimeoutSeconds&0x7F)

	if !withScores {
		return frame
	}
	frame = appendPair(frame, optionalByte(ev.HomeScore))
	frame = appendPair(frame, optionalByte(ev.GuestScore))
	frame = appendPair(frame, optionalByte(ev.Period))

	if !withUsed {
		return frame
	}
	used := byte(max(ev.HomeTimeouts, 0))<<4 | byte(max(ev.GuestTimeouts, 0))&0x0F
	return appendPair(frame, used)
}

// optionalByte maps the -1 "absent" marker back to the wire sentinel.
func optionalByte(v int) byte {
	if v < 0 {
		return NoData
	}
	return byte(v)
}

func encodePenalty(ev Penalty) []byte {
	frame := make([]byte, 0, penaltyLen)
	frame = append(frame, IDPenalty)
	for _, slots := range [2][PenaltySlots]PenaltySlot{ev.Home, ev.Guest} {
		for _, s := range slots {
			frame = appendPair(frame, s.Minutes)
			frame = appendPair(frame, s.Seconds)
			frame = appendPair(frame, s.Player)
		}
	}
	return frame
}

func encodePlayerPoints(ev PlayerPoints) []byte {
	frame := make([]byte, 0, perPlayerLen)
	frame = append(frame, ev.ID())
	for _, p := range ev.Points {
		frame = appendPair(frame, p)
	}
	return frame
}

func encodeFouls(ev Fouls) []byte {
	frame := make([]byte, 0, perPlayerLen)
	frame = append(frame, IDFouls)
	for i := 0; i < TeamSize; i++ {
		frame = appendPair(frame, ev.Home[i]<<4|ev.Guest[i]&0x0F)
	}
	return frame
}

// encodeTimeout emits the single-pair form: used counts become nibbles with
// that many low bits set, guest high. Counts above four saturate, matching
// what a four-bit lamp mask can carry.
func encodeTimeout(ev Timeout) []byte {
	frame := make([]byte, 0, timeoutSingleLen)
	frame = append(frame, IDTimeout)
	return appendPair(frame, lampMask(ev.GuestUsed)<<4|lampMask(ev.HomeUsed))
}

func lampMask(used uint8) byte {
	if used > 4 {
		used = 4
	}
	return byte(1)<<used - 1
}
