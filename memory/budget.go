package memory

const (
	// GiB is 1<<30 bytes.
	GiB uint64 = 1 << 30

	// DefaultMaxBytes is the default memory budget.
	DefaultMaxBytes = 8 * GiB

	// DefaultWarningFraction is the share of MaxBytes above which cleanup evicts.
	DefaultWarningFraction = 0.8

	// TargetFraction is the share of MaxBytes cleanup evicts down to.
	TargetFraction = 0.7

	// RecommendCeiling caps RecommendCacheSize.
	RecommendCeiling = 16 * GiB
)

// Budget is an immutable memory budget.
type Budget struct {
	MaxBytes     uint64
	WarningBytes uint64
	TargetBytes  uint64
}

// NewBudget derives a budget from maxBytes and a warning fraction in (0, 1].
// Zero or out-of-range inputs fall back to the defaults. The cleanup target is
// 70% of maxBytes, lowered to the warning threshold if that is smaller.
func NewBudget(maxBytes uint64, warningFraction float64) Budget {
	if maxBytes == 0 {
		maxBytes = DefaultMaxBytes
	}
	if !(warningFraction > 0 && warningFraction <= 1) {
		warningFraction = DefaultWarningFraction
	}

	warning := uint64(float64(maxBytes) * warningFraction)
	target := uint64(float64(maxBytes) * TargetFraction)
	if target > warning {
		target = warning
	}

	return Budget{MaxBytes: maxBytes, WarningBytes: warning, TargetBytes: target}
}

func recommend(systemTotal uint64) uint64 {
	if systemTotal == 0 {
		return DefaultMaxBytes
	}
	return min(systemTotal/2, RecommendCeiling)
}
