package mechanics

import (
	"fmt"

	"github.com/cory-johannsen/warband/internal/game/unit"
)

// phaseMechanics maps each phase to the mechanics that participate in it,
// in tier-ascending order. The pipeline is the only place that knows
// this ordering; processors stay phase-agnostic.
var phaseMechanics = map[Phase][]Mechanic{
	PhaseTurnStart: {Morale, Intercept, Riposte, Overwatch, Contagion},
	PhaseMovement:  {Facing, Engagement, Charge, Intercept, Overwatch},
	PhaseAttack:    {Facing, Morale, Aura, Engagement, Flanking, Phalanx, Riposte, Ammunition, LineOfSight, ArmorShred},
	PhaseTurnEnd:   {Engagement, Charge, Overwatch, ArmorShred, Contagion},
}

// Pipeline holds the ordered set of active processors for one resolved
// configuration and dispatches phases to them.
type Pipeline struct {
	cfg   MechanicsConfig
	procs map[Mechanic]Processor
}

// NewPipeline resolves dependencies in cfg, validates the result, and
// instantiates one processor per enabled mechanic.
//
// Postcondition: Returns a non-nil Pipeline, or the validation result
// when the expanded configuration is invalid.
func NewPipeline(partial MechanicsConfig) (*Pipeline, error) {
	cfg := ResolveDependencies(partial)
	if res := ValidateMechanicsConfig(cfg); !res.Valid {
		return nil, fmt.Errorf("invalid mechanics config: %v", res.Errors)
	}

	p := &Pipeline{cfg: cfg, procs: make(map[Mechanic]Processor)}
	for _, m := range AllMechanics {
		if !cfg.Enabled(m) {
			continue
		}
		p.procs[m] = newProcessor(m, cfg)
	}

	// A spear wall in formation keeps hard-intercepting even with its
	// charges spent; wire that cross-mechanic check when both are active.
	if p.Enabled(Intercept) && p.Enabled(Phalanx) {
		p.InterceptProc().SetFormationCheck(p.PhalanxProc().InFormation)
	}
	return p, nil
}

// newProcessor constructs the processor for m. An unrecognized mechanic
// here means the dependency table and the constructor table drifted
// apart — an unreachable state, and the one place this package panics.
func newProcessor(m Mechanic, cfg MechanicsConfig) Processor {
	switch m {
	case Facing:
		return NewFacingProcessor(cfg)
	case Morale:
		return NewMoraleProcessor(cfg)
	case Engagement:
		return NewEngagementProcessor(cfg)
	case Flanking:
		return NewFlankingProcessor(cfg)
	case Aura:
		return NewAuraProcessor(cfg)
	case Riposte:
		return NewRiposteProcessor(cfg)
	case Intercept:
		return NewInterceptProcessor(cfg)
	case Charge:
		return NewChargeProcessor(cfg)
	case Phalanx:
		return NewPhalanxProcessor(cfg)
	case Ammunition:
		return NewAmmunitionProcessor(cfg)
	case LineOfSight:
		return NewLineOfSightProcessor(cfg)
	case Overwatch:
		return NewOverwatchProcessor(cfg)
	case ArmorShred:
		return NewArmorShredProcessor(cfg)
	case Contagion:
		return NewContagionProcessor(cfg)
	default:
		panic("mechanics: no processor wired for mechanic " + string(m))
	}
}

// Config returns the fully resolved configuration the pipeline runs with.
func (p *Pipeline) Config() MechanicsConfig {
	return p.cfg.Clone()
}

// Enabled reports whether mechanic m is active in this pipeline.
func (p *Pipeline) Enabled(m Mechanic) bool {
	_, ok := p.procs[m]
	return ok
}

// Apply folds every processor applicable to phase over st in fixed
// tier-ascending order, each consuming the state produced by the
// previous one.
//
// Postcondition: The input state is never mutated; with no applicable
// processors the input state is returned unchanged.
func (p *Pipeline) Apply(phase Phase, st unit.BattleState, ctx Context) unit.BattleState {
	for _, m := range phaseMechanics[phase] {
		proc, ok := p.procs[m]
		if !ok {
			continue
		}
		st = proc.Apply(phase, st, ctx)
	}
	return st
}

// Processor returns the active processor for m. Asking for a mechanic
// that was never wired up is a caller bug, not a recoverable condition,
// and panics.
func (p *Pipeline) Processor(m Mechanic) Processor {
	proc, ok := p.procs[m]
	if !ok {
		panic(fmt.Sprintf("mechanics: processor %q requested but not enabled", m))
	}
	return proc
}

// InterceptProc returns the typed intercept processor.
//
// Precondition: Intercept must be enabled.
func (p *Pipeline) InterceptProc() *InterceptProcessor {
	return p.Processor(Intercept).(*InterceptProcessor)
}

// OverwatchProc returns the typed overwatch processor.
//
// Precondition: Overwatch must be enabled.
func (p *Pipeline) OverwatchProc() *OverwatchProcessor {
	return p.Processor(Overwatch).(*OverwatchProcessor)
}

// ArmorShredProc returns the typed armor-shred processor.
//
// Precondition: ArmorShred must be enabled.
func (p *Pipeline) ArmorShredProc() *ArmorShredProcessor {
	return p.Processor(ArmorShred).(*ArmorShredProcessor)
}

// FacingProc returns the typed facing processor.
//
// Precondition: Facing must be enabled.
func (p *Pipeline) FacingProc() *FacingProcessor {
	return p.Processor(Facing).(*FacingProcessor)
}

// FlankingProc returns the typed flanking processor.
//
// Precondition: Flanking must be enabled.
func (p *Pipeline) FlankingProc() *FlankingProcessor {
	return p.Processor(Flanking).(*FlankingProcessor)
}

// AuraProc returns the typed aura processor.
//
// Precondition: Aura must be enabled.
func (p *Pipeline) AuraProc() *AuraProcessor {
	return p.Processor(Aura).(*AuraProcessor)
}

// ChargeProc returns the typed charge processor.
//
// Precondition: Charge must be enabled.
func (p *Pipeline) ChargeProc() *ChargeProcessor {
	return p.Processor(Charge).(*ChargeProcessor)
}

// PhalanxProc returns the typed phalanx processor.
//
// Precondition: Phalanx must be enabled.
func (p *Pipeline) PhalanxProc() *PhalanxProcessor {
	return p.Processor(Phalanx).(*PhalanxProcessor)
}

// EngagementProc returns the typed engagement processor.
//
// Precondition: Engagement must be enabled.
func (p *Pipeline) EngagementProc() *EngagementProcessor {
	return p.Processor(Engagement).(*EngagementProcessor)
}

// AmmunitionProc returns the typed ammunition processor.
//
// Precondition: Ammunition must be enabled.
func (p *Pipeline) AmmunitionProc() *AmmunitionProcessor {
	return p.Processor(Ammunition).(*AmmunitionProcessor)
}

// LineOfSightProc returns the typed line-of-sight processor.
//
// Precondition: LineOfSight must be enabled.
func (p *Pipeline) LineOfSightProc() *LineOfSightProcessor {
	return p.Processor(LineOfSight).(*LineOfSightProcessor)
}

// MoraleProc returns the typed morale processor.
//
// Precondition: Morale must be enabled.
func (p *Pipeline) MoraleProc() *MoraleProcessor {
	return p.Processor(Morale).(*MoraleProcessor)
}

// InitState gives every active processor a chance to populate the unit
// extension fields it owns before the first round (resolve, ammo,
// intercept charges, facing).
//
// Postcondition: The input state is not mutated.
func (p *Pipeline) InitState(st unit.BattleState) unit.BattleState {
	for _, m := range AllMechanics {
		proc, ok := p.procs[m]
		if !ok {
			continue
		}
		if init, ok := proc.(stateInitializer); ok {
			st = init.InitState(st)
		}
	}
	return st
}

// stateInitializer is implemented by processors that seed their extension
// fields at battle setup.
type stateInitializer interface {
	InitState(st unit.BattleState) unit.BattleState
}
