package state

const (
	// StatMin and StatMax bound every stat value after any mutation.
	StatMin = 0
	StatMax = 100

	// HealthStat is the one stat with engine-level meaning: when it
	// reaches StatMin the session is over.
	HealthStat = "health"
)

// Stats maps a stat name (e.g. "health", "sanity") to a value in
// [StatMin, StatMax]. Stat keys are dynamic: the backend may introduce
// new ones at any time, and a key is never removed once created.
type Stats map[string]int

func clampStat(v int) int {
	if v < StatMin {
		return StatMin
	}
	if v > StatMax {
		return StatMax
	}
	return v
}

// Clamped returns a copy with every value clamped into bounds.
func (s Stats) Clamped() Stats {
	out := make(Stats, len(s))
	for k, v := range s {
		out[k] = clampStat(v)
	}
	return out
}

// ApplyDelta applies signed deltas in place, clamping each result.
// Unknown keys are inserted as new stats.
func (s Stats) ApplyDelta(deltas map[string]int) {
	for k, d := range deltas {
		s[k] = clampStat(s[k] + d)
	}
}

// Depleted reports whether the named stat exists and is at StatMin.
func (s Stats) Depleted(name string) bool {
	v, ok := s[name]
	return ok && v <= StatMin
}

// Clone returns a deep copy.
func (s Stats) Clone() Stats {
	out := make(Stats, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
