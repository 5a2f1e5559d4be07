package archive

import "time"

// NestedPolicy is the §4.5 policy for archives discovered inside
// archives.
type NestedPolicy string

const (
	NestedSkip     NestedPolicy = "skip"
	NestedCopy     NestedPolicy = "copy"
	NestedSanitize NestedPolicy = "sanitize"
)

// Guardrails holds every configurable ceiling §4.5 defines, plus the
// nested-archive policy and its own budgets.
type Guardrails struct {
	MaxMembers           int
	MaxMemberBytes       int64
	MaxTotalBytes        int64
	MaxCompressionRatio  float64
	CopyUnsupported      bool
	Nested               NestedPolicy
	NestedMaxDepth        int
	NestedMaxTotalBytes   int64
	NestedTimeBudget      time.Duration // 0 = disabled
}

// DefaultGuardrails returns the §4.5 default ceilings.
func DefaultGuardrails() Guardrails {
	return Guardrails{
		MaxMembers:          10000,
		MaxMemberBytes:      128 << 20, // 128 MiB
		MaxTotalBytes:       1 << 30,   // 1 GiB
		MaxCompressionRatio: 100,
		CopyUnsupported:     false,
		Nested:              NestedSkip,
		NestedMaxDepth:      4,
		NestedMaxTotalBytes: 1 << 30,
	}
}

// Budget threads mutable recursion state through nested-archive calls:
// the aggregate bytes decompressed across the whole recursion tree and
// an optional wall-clock deadline.
type Budget struct {
	NestedBytesUsed int64
	Deadline        time.Time
}

func (b *Budget) timeExceeded() bool {
	return b != nil && !b.Deadline.IsZero() && time.Now().After(b.Deadline)
}
