package unit

// Event records one observable thing that happened during resolution.
// Events are append-only; the driver may persist them for replay.
type Event struct {
	Round  int    `json:"round"`
	Phase  string `json:"phase,omitempty"`
	Type   string `json:"type"`
	Actor  string `json:"actor,omitempty"`
	Target string `json:"target,omitempty"`
	Amount int    `json:"amount,omitempty"`
	Note   string `json:"note,omitempty"`
}

// BattleState is the authoritative snapshot of one battle: every unit,
// the current round, and the event log. It is treated as an immutable
// value — processors clone it, modify the clone, and return it. No
// processor ever mutates a state another processor can still see.
type BattleState struct {
	Units  []Unit  `json:"units"`
	Round  int     `json:"round"`
	Events []Event `json:"events"`
}

// Clone returns a deep copy of the state.
//
// Postcondition: Mutating the clone (including unit extension slices)
// leaves the receiver unchanged.
func (s BattleState) Clone() BattleState {
	c := BattleState{
		Units:  make([]Unit, len(s.Units)),
		Round:  s.Round,
		Events: make([]Event, len(s.Events), len(s.Events)+4),
	}
	for i, u := range s.Units {
		c.Units[i] = u.Clone()
	}
	copy(c.Events, s.Events)
	return c
}

// Find returns the index of the unit with the given instance id.
func (s BattleState) Find(instanceID string) (int, bool) {
	for i := range s.Units {
		if s.Units[i].InstanceID == instanceID {
			return i, true
		}
	}
	return 0, false
}

// Get returns a copy of the unit with the given instance id.
func (s BattleState) Get(instanceID string) (Unit, bool) {
	i, ok := s.Find(instanceID)
	if !ok {
		return Unit{}, false
	}
	return s.Units[i], true
}

// Record appends an event to the log, stamping the current round.
func (s *BattleState) Record(e Event) {
	e.Round = s.Round
	s.Events = append(s.Events, e)
}

// LivingEnemies returns copies of all living units not on team.
// Order follows the Units slice, which is stable for a battle.
func (s BattleState) LivingEnemies(team int) []Unit {
	var out []Unit
	for _, u := range s.Units {
		if u.Alive && u.Team != team {
			out = append(out, u)
		}
	}
	return out
}

// LivingAllies returns copies of all living units on team, excluding the
// unit with instance id self.
func (s BattleState) LivingAllies(team int, self string) []Unit {
	var out []Unit
	for _, u := range s.Units {
		if u.Alive && u.Team == team && u.InstanceID != self {
			out = append(out, u)
		}
	}
	return out
}

// TeamDefeated reports whether a team has no unit able to keep fighting.
// Routing units do not count as fighters.
func (s BattleState) TeamDefeated(team int) bool {
	for _, u := range s.Units {
		if u.Team == team && u.Alive && !u.Morale.Routing {
			return false
		}
	}
	return true
}
