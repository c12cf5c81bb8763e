package stabilizer

// Reasons reported on a Decision.
const (
	ReasonBelowThreshold   = "below activation threshold"
	ReasonInsufficientData = "insufficient data"
	ReasonHighestScore     = "highest smoothed score"
	ReasonCooldown         = "cooldown"
	ReasonReset            = "reset"
)
