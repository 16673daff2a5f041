package mechanics

import "fmt"

// ValidationResult collects configuration problems. Errors block using
// the configuration; warnings surface suspicious-but-safe settings.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// ResolveDependencies expands a partial configuration into a complete,
// consistent one. Enabling a mechanic transitively enables its declared
// prerequisites with defaults, unless a prerequisite was explicitly
// disabled — that contradiction is left in place for Validate to report.
// Mechanics left unspecified stay disabled.
//
// Postcondition: The input config is not modified; every known mechanic
// has an entry in the result; expansion is deterministic.
func ResolveDependencies(partial MechanicsConfig) MechanicsConfig {
	cfg := partial.Clone()

	// Iterate in canonical order so expansion is reproducible.
	for _, m := range AllMechanics {
		if !cfg.Enabled(m) {
			continue
		}
		enableDeps(cfg, m)
	}

	// Fill unspecified mechanics with an explicit disable.
	for _, m := range AllMechanics {
		if _, ok := cfg[m]; !ok {
			cfg[m] = Setting{Enabled: false}
		}
	}
	return cfg
}

func enableDeps(cfg MechanicsConfig, m Mechanic) {
	for _, dep := range DependenciesOf(m) {
		if s, ok := cfg[dep]; ok {
			if s.Enabled {
				continue
			}
			// Explicitly disabled prerequisite: leave it for validation
			// rather than silently overriding the caller's choice.
			continue
		}
		cfg[dep] = Setting{Enabled: true}
		enableDeps(cfg, dep)
	}
}

// ValidateMechanicsConfig checks a configuration for unknown mechanics,
// dependency contradictions, and out-of-range options. It returns a
// structured result instead of an error so a caller can surface every
// problem at once.
func ValidateMechanicsConfig(cfg MechanicsConfig) ValidationResult {
	res := ValidationResult{Valid: true}

	for m := range cfg {
		if !Known(m) {
			res.Errors = append(res.Errors, fmt.Sprintf("unknown mechanic %q", m))
		}
	}

	for _, m := range AllMechanics {
		if !cfg.Enabled(m) {
			continue
		}
		for _, dep := range DependenciesOf(m) {
			if !cfg.Enabled(dep) {
				res.Errors = append(res.Errors, fmt.Sprintf(
					"mechanic %q requires %q, which is disabled", m, dep))
			}
		}
		for key := range cfg[m].Options {
			if _, ok := defaultOptions[m][key]; !ok {
				res.Errors = append(res.Errors, fmt.Sprintf(
					"mechanic %q has no option %q", m, key))
			}
		}
	}

	if cfg.Enabled(ArmorShred) {
		pct := cfg.Option(ArmorShred, "max_shred_percent")
		if pct < 0 || pct > 1 {
			res.Errors = append(res.Errors, fmt.Sprintf(
				"armor_shred max_shred_percent %v outside [0, 1]", pct))
		}
	}
	if cfg.Enabled(Overwatch) {
		if cfg.Option(Overwatch, "max_shots") < 1 {
			res.Errors = append(res.Errors, "overwatch max_shots must be >= 1")
		}
		pen := cfg.Option(Overwatch, "accuracy_penalty")
		if pen < 0 || pen > 1 {
			res.Warnings = append(res.Warnings, fmt.Sprintf(
				"overwatch accuracy_penalty %v outside [0, 1]", pen))
		}
	}
	if cfg.Enabled(Intercept) && cfg.Option(Intercept, "disengage_cost") < 0 {
		res.Errors = append(res.Errors, "intercept disengage_cost must be >= 0")
	}
	if cfg.Enabled(Morale) {
		thr := cfg.Option(Morale, "rout_threshold")
		if thr < 0 || thr > 100 {
			res.Errors = append(res.Errors, fmt.Sprintf(
				"morale rout_threshold %v outside [0, 100]", thr))
		}
	}

	res.Valid = len(res.Errors) == 0
	return res
}
