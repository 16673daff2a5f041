package mechanics

// Reason is a closed set of codes explaining why an action was refused.
// Expected, recoverable conditions are modeled as result values carrying
// one of these — never as errors or panics.
type Reason string

const (
	ReasonNone                 Reason = ""
	ReasonInsufficientMovement Reason = "insufficient_movement"
	ReasonNoAmmo               Reason = "no_ammo"
	ReasonAlreadyVigilant      Reason = "already_vigilant"
	ReasonNotRanged            Reason = "not_ranged"
	ReasonOutOfRange           Reason = "out_of_range"
	ReasonLoSBlocked           Reason = "los_blocked"
	ReasonNoCharges            Reason = "no_charges"
	ReasonNotEngaged           Reason = "not_engaged"
	ReasonStealthImmune        Reason = "stealth_immune"
	ReasonAlreadyActed         Reason = "already_acted"
	ReasonNoShots              Reason = "no_shots"
	ReasonNotEligible          Reason = "not_eligible"
	ReasonUnknownUnit          Reason = "unknown_unit"
)
