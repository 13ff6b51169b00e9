// Package classify maps extracted item attributes to a QA classification
// using a fixed, ordered rulebook. Classification is deterministic: the
// rules are evaluated top-down and the first match wins.
package classify

// Label is one of the fixed QA classification labels (1-13).
type Label int

const (
	LabelConsumableWithPNSpecQty Label = iota + 1
	LabelConsumableWithPNQty
	LabelConsumableNoQty
	LabelConsumableNoPN
	LabelConsumableObsoletePN
	LabelConsumablePNMismatch
	LabelVendorKitNoPN
	LabelVendorNameOnly
	LabelPreAssembledKit
	LabelNoConsumableMentioned
	LabelJigsToolsIdentified
	LabelPartialInfoAvailable
	LabelRequiresManualReview
)

// String returns a short human-readable name for the label.
func (l Label) String() string {
	switch l {
	case LabelConsumableWithPNSpecQty:
		return "consumable with PN, specs and quantity"
	case LabelConsumableWithPNQty:
		return "consumable with PN and quantity"
	case LabelConsumableNoQty:
		return "consumable without quantity"
	case LabelConsumableNoPN:
		return "consumable without part number"
	case LabelConsumableObsoletePN:
		return "obsolete part number"
	case LabelConsumablePNMismatch:
		return "part number mismatch"
	case LabelVendorKitNoPN:
		return "vendor kit without part number"
	case LabelVendorNameOnly:
		return "vendor name only"
	case LabelPreAssembledKit:
		return "pre-assembled kit"
	case LabelNoConsumableMentioned:
		return "no consumable identified"
	case LabelJigsToolsIdentified:
		return "jigs/tools identified"
	case LabelPartialInfoAvailable:
		return "partial info available"
	case LabelRequiresManualReview:
		return "requires manual review"
	default:
		return "unknown"
	}
}

// ConfidenceLevel expresses how reliable a classification is.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// ActionPath is the red/amber/green disposition attached to a classification.
type ActionPath string

const (
	// ActionGreen means automatic registration.
	ActionGreen ActionPath = "green"
	// ActionAmber means automatic registration with a review flag.
	ActionAmber ActionPath = "amber"
	// ActionRed means mandatory human review.
	ActionRed ActionPath = "red"
)

// Flags are the boolean/presence attributes of an item the rulebook
// evaluates. They are derived once at extraction time.
type Flags struct {
	Consumable bool
	HasPN      bool
	HasQty     bool
	HasSpecs   bool
	HasVendor  bool
	HasKit     bool
	PNMismatch bool
	ObsoletePN bool
}

// Result is the outcome of classifying one item.
type Result struct {
	Label      Label
	Confidence ConfidenceLevel
	Action     ActionPath
	Reasoning  string
}

// rule pairs a guard predicate with its classification outcome. Rules are
// evaluated in order; the first matching guard wins, which keeps the rule
// precedence auditable in one place.
type rule struct {
	match   func(Flags) bool
	outcome Result
}

var rulebook = []rule{
	{
		match: func(f Flags) bool { return f.Consumable && f.HasPN && f.HasQty && f.HasSpecs },
		outcome: Result{
			Label:      LabelConsumableWithPNSpecQty,
			Confidence: ConfidenceHigh,
			Action:     ActionGreen,
			Reasoning:  "Consumable with PN, specifications, and quantity - Auto-Register",
		},
	},
	{
		match: func(f Flags) bool { return f.Consumable && f.HasPN && f.HasQty },
		outcome: Result{
			Label:      LabelConsumableWithPNQty,
			Confidence: ConfidenceHigh,
			Action:     ActionGreen,
			Reasoning:  "Consumable with PN and quantity - Auto-Register",
		},
	},
	{
		match: func(f Flags) bool { return f.Consumable && f.HasPN && !f.HasQty },
		outcome: Result{
			Label:      LabelConsumableNoQty,
			Confidence: ConfidenceMedium,
			Action:     ActionAmber,
			Reasoning:  "Consumable with PN but no quantity - Auto with Flag",
		},
	},
	{
		match: func(f Flags) bool { return f.Consumable && !f.HasPN },
		outcome: Result{
			Label:      LabelConsumableNoPN,
			Confidence: ConfidenceLow,
			Action:     ActionRed,
			Reasoning:  "Consumable mentioned but no part number - Human Intervention Required",
		},
	},
	{
		match: func(f Flags) bool { return f.ObsoletePN },
		outcome: Result{
			Label:      LabelConsumableObsoletePN,
			Confidence: ConfidenceLow,
			Action:     ActionRed,
			Reasoning:  "Obsolete part number detected - Human Intervention Required",
		},
	},
	{
		match: func(f Flags) bool { return f.PNMismatch },
		outcome: Result{
			Label:      LabelConsumablePNMismatch,
			Confidence: ConfidenceLow,
			Action:     ActionRed,
			Reasoning:  "Part number mismatch detected - Human Intervention Required",
		},
	},
	{
		match: func(f Flags) bool { return f.HasVendor && f.HasKit && !f.HasPN },
		outcome: Result{
			Label:      LabelVendorKitNoPN,
			Confidence: ConfidenceLow,
			Action:     ActionRed,
			Reasoning:  "Vendor and kit mentioned but no PN - Human Intervention Required",
		},
	},
	{
		match: func(f Flags) bool { return f.HasVendor && !f.Consumable },
		outcome: Result{
			Label:      LabelVendorNameOnly,
			Confidence: ConfidenceMedium,
			Action:     ActionAmber,
			Reasoning:  "Only vendor name mentioned - Auto with Flag",
		},
	},
	{
		match: func(f Flags) bool { return f.HasKit },
		outcome: Result{
			Label:      LabelPreAssembledKit,
			Confidence: ConfidenceMedium,
			Action:     ActionAmber,
			Reasoning:  "Pre-assembled kit mentioned - Auto with Flag",
		},
	},
}

// fallbackResult is returned when no rule matches.
var fallbackResult = Result{
	Label:      LabelNoConsumableMentioned,
	Confidence: ConfidenceLow,
	Action:     ActionRed,
	Reasoning:  "No clear consumable/jigs/tools mentioned - Human Intervention Required",
}

// ManualReview is the universal safe outcome used when classification
// cannot be evaluated at all.
var ManualReview = Result{
	Label:      LabelRequiresManualReview,
	Confidence: ConfidenceLow,
	Action:     ActionRed,
	Reasoning:  "Classification error - Manual review required",
}

// Classify evaluates the rulebook against the given flags. It never fails:
// flags that match no rule fall through to the catch-all outcome.
func Classify(f Flags) Result {
	for _, r := range rulebook {
		if r.match(f) {
			return r.outcome
		}
	}
	return fallbackResult
}
