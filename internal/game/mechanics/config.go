package mechanics

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Setting is the configuration of one mechanic: disabled, enabled with
// defaults, or enabled with option overrides. In YAML a setting may be a
// bare boolean or a mapping:
//
//	armor_shred: true
//	morale: false
//	overwatch:
//	  enabled: true
//	  options:
//	    max_shots: 3
type Setting struct {
	Enabled bool               `yaml:"enabled" json:"enabled"`
	Options map[string]float64 `yaml:"options,omitempty" json:"options,omitempty"`
}

// UnmarshalYAML accepts either a scalar boolean or the full mapping form.
func (s *Setting) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var enabled bool
		if err := node.Decode(&enabled); err != nil {
			return fmt.Errorf("mechanic setting: %w", err)
		}
		*s = Setting{Enabled: enabled}
		return nil
	}
	type raw Setting
	var r raw
	if err := node.Decode(&r); err != nil {
		return fmt.Errorf("mechanic setting: %w", err)
	}
	*s = Setting(r)
	return nil
}

// MechanicsConfig maps mechanic name to its setting. A mechanic absent
// from the map is unspecified: off unless pulled in as a dependency. An
// explicit {Enabled: false} entry is a hard disable that dependency
// resolution refuses to override.
type MechanicsConfig map[Mechanic]Setting

// Enabled reports whether m is switched on in c.
func (c MechanicsConfig) Enabled(m Mechanic) bool {
	return c[m].Enabled
}

// Option returns the named option for m, falling back to the mechanic's
// default when the config does not override it.
//
// Precondition: key must exist in the defaults table for m.
func (c MechanicsConfig) Option(m Mechanic, key string) float64 {
	if s, ok := c[m]; ok {
		if v, ok := s.Options[key]; ok {
			return v
		}
	}
	d, ok := defaultOptions[m][key]
	if !ok {
		panic(fmt.Sprintf("mechanics: no default for option %s.%s", m, key))
	}
	return d
}

// Clone returns a deep copy of the config.
func (c MechanicsConfig) Clone() MechanicsConfig {
	out := make(MechanicsConfig, len(c))
	for m, s := range c {
		cp := Setting{Enabled: s.Enabled}
		if s.Options != nil {
			cp.Options = make(map[string]float64, len(s.Options))
			for k, v := range s.Options {
				cp.Options[k] = v
			}
		}
		out[m] = cp
	}
	return out
}

// defaultOptions holds every tunable with its default value. Options not
// listed here do not exist; Option panics on unknown keys so typos fail
// loudly in tests rather than silently reading zero.
var defaultOptions = map[Mechanic]map[string]float64{
	Facing: {},
	Morale: {
		"starting_resolve":  100,
		"rout_threshold":    25,
		"ally_death_loss":   15,
		"damage_loss_scale": 1, // resolve lost per point of damage taken
		"rally_chance":      0.3,
	},
	Engagement: {
		"aoo_damage_mult": 0.5,
	},
	Flanking: {
		"flank_bonus": 0.3,
		"rear_bonus":  0.5,
	},
	Aura: {
		"radius":      2,
		"armor_bonus": 2,
	},
	Riposte: {
		"counter_damage_mult": 0.5,
		"charges_per_round":   1,
	},
	Intercept: {
		"max_intercepts":   1,
		"disengage_cost":   2,
		"hard_damage_mult": 1.5,
	},
	Charge: {
		"min_cells":      3,
		"momentum_bonus": 0.25,
		"cavalry_mult":   2,
	},
	Phalanx: {
		"armor_bonus": 3,
	},
	Ammunition: {
		"max_ammo": 6,
	},
	LineOfSight: {},
	Overwatch: {
		"max_shots":        2,
		"accuracy_penalty": 0.2,
		"damage_mult":      0.75,
	},
	ArmorShred: {
		"shred_per_attack":  1,
		"max_shred_percent": 0.4,
		"decay_per_turn":    0,
	},
	Contagion: {
		"spread_chance": 0.35,
		"poison_damage": 2,
		"poison_turns":  3,
	},
}

// MVPPreset returns the baseline configuration with every mechanic
// disabled — behavior identical to the bare combat kernel.
func MVPPreset() MechanicsConfig {
	cfg := make(MechanicsConfig, len(AllMechanics))
	for _, m := range AllMechanics {
		cfg[m] = Setting{Enabled: false}
	}
	return cfg
}

// RoguelikePreset returns the full experience: every mechanic enabled
// with defaults.
func RoguelikePreset() MechanicsConfig {
	cfg := make(MechanicsConfig, len(AllMechanics))
	for _, m := range AllMechanics {
		cfg[m] = Setting{Enabled: true}
	}
	return cfg
}

// TacticalPreset returns the curated positional subset: facing,
// engagement, flanking, intercept, phalanx, and morale.
func TacticalPreset() MechanicsConfig {
	cfg := MVPPreset()
	for _, m := range []Mechanic{Facing, Engagement, Flanking, Intercept, Phalanx, Morale} {
		cfg[m] = Setting{Enabled: true}
	}
	return cfg
}

// LoadFile reads a mechanics toggle file of the form
//
//	mechanics:
//	  facing: true
//	  overwatch:
//	    enabled: true
//	    options:
//	      max_shots: 3
//
// The result is a partial config; callers resolve dependencies before
// building a pipeline.
func LoadFile(path string) (MechanicsConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mechanics file %s: %w", path, err)
	}
	var doc struct {
		Mechanics MechanicsConfig `yaml:"mechanics"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing mechanics file %s: %w", path, err)
	}
	if doc.Mechanics == nil {
		doc.Mechanics = MechanicsConfig{}
	}
	return doc.Mechanics, nil
}

// Preset returns the named preset configuration.
func Preset(name string) (MechanicsConfig, error) {
	switch name {
	case "mvp":
		return MVPPreset(), nil
	case "roguelike":
		return RoguelikePreset(), nil
	case "tactical":
		return TacticalPreset(), nil
	default:
		return nil, fmt.Errorf("unknown mechanics preset %q", name)
	}
}
