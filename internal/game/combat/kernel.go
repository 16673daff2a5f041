// Package combat implements the foundational combat kernel for the
// Warband autobattler: damage formulas, the dodge roll, and pure HP
// application. Every mechanic processor builds on these primitives.
package combat

import (
	"github.com/cory-johannsen/warband/internal/game/rng"
	"github.com/cory-johannsen/warband/internal/game/unit"
)

// Config holds the kernel tuning knobs.
type Config struct {
	// MinDamage is the floor every physical attack deals, armor
	// notwithstanding.
	MinDamage int `mapstructure:"min_damage" yaml:"min_damage"`
}

// DefaultConfig returns the standard kernel configuration.
func DefaultConfig() Config {
	return Config{MinDamage: 1}
}

// Modifiers carries the optional damage adjustments contributed by active
// mechanics. The zero value leaves damage unmodified.
type Modifiers struct {
	// FlankBonus is the additive damage fraction from attack direction
	// (0.3 = +30%). Supplied by the flanking mechanic.
	FlankBonus float64
	// MomentumBonus is the additive damage fraction from a charge.
	MomentumBonus float64
	// ArmorBonus is extra armor on the defender from auras or formations.
	ArmorBonus int
}

// EffectiveArmor returns the defender's armor after shred and bonuses,
// never below zero.
//
// Postcondition: Returns >= 0.
func EffectiveArmor(target unit.Unit, bonus int) int {
	armor := target.Armor + bonus - target.Shred.Amount
	if armor < 0 {
		return 0
	}
	return armor
}

// CalculatePhysicalDamage computes the damage of one physical attack:
//
//	max(minDamage, floor((atk − effArmor) × atkCount × (1+flank) × (1+momentum)))
//
// The floor is applied exactly once, after all multipliers.
//
// Precondition: attacker.AttackCount >= 1.
// Postcondition: Returns >= cfg.MinDamage.
func CalculatePhysicalDamage(attacker, target unit.Unit, cfg Config, mods Modifiers) int {
	armor := EffectiveArmor(target, mods.ArmorBonus)
	raw := float64(attacker.Attack-armor) * float64(attacker.AttackCount)
	raw *= 1 + mods.FlankBonus
	raw *= 1 + mods.MomentumBonus
	dmg := int(raw)
	if raw < 0 {
		dmg = 0
	}
	if dmg < cfg.MinDamage {
		return cfg.MinDamage
	}
	return dmg
}

// CalculateMagicDamage computes magic damage, which ignores armor and
// shred entirely: atk × atkCount.
//
// Postcondition: Returns attacker.Attack * attacker.AttackCount.
func CalculateMagicDamage(attacker unit.Unit) int {
	return attacker.Attack * attacker.AttackCount
}

// RollDodge performs the single seeded dodge draw for a physical attack.
// Magic attacks never call this.
//
// Postcondition: Dodge 0 never dodges; dodge 100 always dodges; the
// result is a pure function of (target.Dodge, seed).
func RollDodge(target unit.Unit, seed uint64) bool {
	return rng.Uniform(seed) < float64(target.Dodge)/100
}

// DamageResult reports the outcome of applying damage to a unit.
type DamageResult struct {
	NewHP    int
	Killed   bool
	Overkill int
}

// ApplyDamage computes the HP outcome of dealing amount damage to target.
// Pure: the input unit is not modified.
//
// Precondition: amount >= 0.
// Postcondition: 0 <= NewHP <= target.MaxHP; Killed iff NewHP == 0 and
// target was alive; Overkill is the damage beyond the HP that remained.
func ApplyDamage(target unit.Unit, amount int) DamageResult {
	newHP := target.HP - amount
	overkill := 0
	if newHP < 0 {
		overkill = -newHP
		newHP = 0
	}
	return DamageResult{
		NewHP:    newHP,
		Killed:   target.Alive && newHP == 0 && target.HP > 0,
		Overkill: overkill,
	}
}

// HealResult reports the outcome of applying healing to a unit.
type HealResult struct {
	NewHP    int
	Overheal int
}

// ApplyHealing computes the HP outcome of healing target by amount.
// Pure: the input unit is not modified.
//
// Precondition: amount >= 0.
// Postcondition: NewHP <= target.MaxHP; Overheal is the wasted portion.
func ApplyHealing(target unit.Unit, amount int) HealResult {
	newHP := target.HP + amount
	overheal := 0
	if newHP > target.MaxHP {
		overheal = newHP - target.MaxHP
		newHP = target.MaxHP
	}
	return HealResult{NewHP: newHP, Overheal: overheal}
}

// AttackResult is the full outcome of one resolved attack.
type AttackResult struct {
	Dodged   bool
	Damage   int
	NewHP    int
	Killed   bool
	Overkill int
}

// ResolvePhysicalAttack sequences dodge check, damage calculation, and HP
// application for one physical attack. A successful dodge short-circuits:
// zero damage, no kill, and the damage multipliers are never evaluated.
//
// Postcondition: The result is a pure function of (attacker, target, cfg,
// mods, seed); Dodged implies Damage == 0 and NewHP == target.HP.
func ResolvePhysicalAttack(attacker, target unit.Unit, cfg Config, mods Modifiers, seed uint64) AttackResult {
	if RollDodge(target, seed) {
		return AttackResult{Dodged: true, NewHP: target.HP}
	}
	dmg := CalculatePhysicalDamage(attacker, target, cfg, mods)
	applied := ApplyDamage(target, dmg)
	return AttackResult{
		Damage:   dmg,
		NewHP:    applied.NewHP,
		Killed:   applied.Killed,
		Overkill: applied.Overkill,
	}
}

// ResolveMagicAttack resolves one magic attack. Magic ignores armor and
// never rolls dodge.
//
// Postcondition: Damage == attacker.Attack * attacker.AttackCount.
func ResolveMagicAttack(attacker, target unit.Unit) AttackResult {
	dmg := CalculateMagicDamage(attacker)
	applied := ApplyDamage(target, dmg)
	return AttackResult{
		Damage:   dmg,
		NewHP:    applied.NewHP,
		Killed:   applied.Killed,
		Overkill: applied.Overkill,
	}
}
