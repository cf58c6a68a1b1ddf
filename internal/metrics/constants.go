package metrics

const (
	namespace = "readkeeper"

	LabelMethod  = "method"
	LabelPath    = "path"
	LabelStatus  = "status"
	LabelRoute   = "route"
	LabelOutcome = "outcome"
	LabelOp      = "op"
	LabelKind    = "kind"
)

// Interception outcomes.
const (
	OutcomeNetwork     = "network"
	OutcomeCache       = "cache"
	OutcomeLocal       = "local"
	OutcomeOffline     = "offline"
	OutcomePlaceholder = "placeholder"
	OutcomeError       = "error"
)

var HTTPLatencyBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
