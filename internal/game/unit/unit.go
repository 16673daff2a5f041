// Package unit defines the combatant value type and the battle snapshot
// it lives in. A Unit is a base record plus a set of optional extension
// groups; each combat mechanic populates only the group it owns, so any
// combination of mechanics can coexist on the same value without a class
// hierarchy. All types here are plain values — mutation happens on copies.
package unit

import (
	"slices"

	"github.com/cory-johannsen/warband/internal/game/grid"
)

// Unit describes one combatant.
type Unit struct {
	// ID identifies the unit template (shared across battles).
	ID string `json:"id"`
	// InstanceID identifies this combatant within one battle. Unique per battle.
	InstanceID string `json:"instanceId"`
	// Team is the owning side, 0 or 1.
	Team int `json:"team"`

	Alive       bool          `json:"alive"`
	HP          int           `json:"hp"`
	MaxHP       int           `json:"maxHp"`
	Attack      int           `json:"attack"`
	AttackCount int           `json:"attackCount"`
	Armor       int           `json:"armor"`
	Dodge       int           `json:"dodge"` // percent, 0-100
	Initiative  int           `json:"initiative"`
	Speed       int           `json:"speed"`
	Position    grid.Position `json:"position"`
	Range       int           `json:"range"`
	Role        string        `json:"role,omitempty"`
	Tags        []string      `json:"tags,omitempty"`

	// Extension groups. Zero-valued unless the owning mechanic is active.
	Facing    FacingState    `json:"facing,omitzero"`
	Morale    MoraleState    `json:"morale,omitzero"`
	Engage    EngageState    `json:"engage,omitzero"`
	Intercept InterceptState `json:"intercept,omitzero"`
	Vigilance VigilanceState `json:"vigilance,omitzero"`
	Ammo      AmmoState      `json:"ammo,omitzero"`
	Charge    ChargeState    `json:"charge,omitzero"`
	Riposte   RiposteState   `json:"riposte,omitzero"`
	Shred     ShredState     `json:"shred,omitzero"`
	Contagion ContagionState `json:"contagion,omitzero"`
}

// FacingState is the facing-mechanic extension.
type FacingState struct {
	Dir grid.Direction `json:"dir"`
}

// MoraleState is the morale-mechanic extension.
type MoraleState struct {
	// Resolve is the remaining willpower, 0-100.
	Resolve int `json:"resolve"`
	// Routing is true once resolve fell below the rout threshold; a routing
	// unit is excluded from the turn queue until it rallies.
	Routing bool `json:"routing"`
}

// EngageState is the zone-of-control extension.
type EngageState struct {
	Engaged bool `json:"engaged"`
	// EngagedBy lists the instance ids currently exerting ZoC on this unit.
	EngagedBy []string `json:"engagedBy,omitempty"`
}

// InterceptState is the intercept-mechanic extension.
type InterceptState struct {
	Remaining    int  `json:"remaining"`
	Max          int  `json:"max"`
	Intercepting bool `json:"intercepting"`
}

// VigilanceStatus is the overwatch readiness state machine.
type VigilanceStatus int

const (
	VigilanceInactive VigilanceStatus = iota
	VigilanceActive
	VigilanceTriggered
	VigilanceExhausted
)

// String returns the vigilance status label.
func (v VigilanceStatus) String() string {
	switch v {
	case VigilanceInactive:
		return "inactive"
	case VigilanceActive:
		return "active"
	case VigilanceTriggered:
		return "triggered"
	case VigilanceExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// VigilanceState is the overwatch-mechanic extension.
type VigilanceState struct {
	Status         VigilanceStatus `json:"status"`
	ShotsRemaining int             `json:"shotsRemaining"`
	// FiredAt lists movers already shot at during the current movement,
	// preventing double taps on the same target.
	FiredAt       []string `json:"firedAt,omitempty"`
	ActedThisTurn bool     `json:"actedThisTurn"`
}

// AmmoState is the ammunition-mechanic extension.
type AmmoState struct {
	Remaining int `json:"remaining"`
	Max       int `json:"max"`
}

// ChargeState is the charge/momentum extension.
type ChargeState struct {
	Charging   bool    `json:"charging"`
	Momentum   float64 `json:"momentum"`
	CellsMoved int     `json:"cellsMoved"`
}

// RiposteState is the riposte-mechanic extension.
type RiposteState struct {
	ChargesRemaining int `json:"chargesRemaining"`
}

// ShredState is the armor-shred extension.
type ShredState struct {
	Amount int `json:"amount"`
}

// Status is one timed affliction tracked by the contagion mechanic.
type Status struct {
	Kind           string `json:"kind"`
	DamagePerTurn  int    `json:"damagePerTurn"`
	TurnsRemaining int    `json:"turnsRemaining"`
}

// ContagionState is the contagion-mechanic extension.
type ContagionState struct {
	Statuses []Status `json:"statuses,omitempty"`
}

// HasTag reports whether the unit carries the given ability tag.
func (u Unit) HasTag(tag string) bool {
	return slices.Contains(u.Tags, tag)
}

// IsRanged reports whether the unit attacks at range.
//
// Postcondition: Returns true iff Range > 1.
func (u Unit) IsRanged() bool {
	return u.Range > 1
}

// IsMelee reports whether the unit fights in adjacent cells.
func (u Unit) IsMelee() bool {
	return u.Range <= 1
}

// CanAct reports whether this unit is eligible for a turn: alive, not
// routing, and not holding in vigilance.
func (u Unit) CanAct() bool {
	return u.Alive && !u.Morale.Routing && u.Vigilance.Status == VigilanceInactive
}

// HPRatio returns current HP as a fraction of max HP.
//
// Precondition: MaxHP > 0.
// Postcondition: 0 <= result <= 1 while invariants hold.
func (u Unit) HPRatio() float64 {
	return float64(u.HP) / float64(u.MaxHP)
}

// Clone returns a deep copy of the unit. Slice-typed extension fields are
// copied so that mutating the clone never aliases the original.
func (u Unit) Clone() Unit {
	c := u
	c.Tags = slices.Clone(u.Tags)
	c.Engage.EngagedBy = slices.Clone(u.Engage.EngagedBy)
	c.Vigilance.FiredAt = slices.Clone(u.Vigilance.FiredAt)
	c.Contagion.Statuses = slices.Clone(u.Contagion.Statuses)
	return c
}
