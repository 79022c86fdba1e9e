package model

// ActivityKind names one of the missionary activity counters.
type ActivityKind string

const (
	ActivityContacts   ActivityKind = "contatosMissionarios"
	ActivityLiterature ActivityKind = "literaturasDistribuidas"
	ActivityVisits     ActivityKind = "visitasMissionarias"
	ActivityStudies    ActivityKind = "estudosBiblicos"
	ActivityAssisted   ActivityKind = "pessoasAuxiliadas"
	ActivityBrought    ActivityKind = "pessoasTrazidasIgreja"
	ActivityVisitors   ActivityKind = "visitantes"
)

// ActivityKinds is the closed set of activity counters in wizard order.
var ActivityKinds = []ActivityKind{
	ActivityContacts,
	ActivityLiterature,
	ActivityVisits,
	ActivityStudies,
	ActivityAssisted,
	ActivityBrought,
	ActivityVisitors,
}

// IsValid reports whether k is one of the known activity kinds.
func (k ActivityKind) IsValid() bool {
	for _, known := range ActivityKinds {
		if k == known {
			return true
		}
	}
	return false
}

// ActivityCounts maps activity kinds to non-negative counts. Missing keys read as zero.
type ActivityCounts map[ActivityKind]int

// Get returns the count for kind, or 0.
func (c ActivityCounts) Get(kind ActivityKind) int {
	return c[kind]
}

// Set stores v for kind, clamping negatives to zero.
func (c ActivityCounts) Set(kind ActivityKind, v int) {
	if v < 0 {
		v = 0
	}
	c[kind] = v
}

// Complete returns a copy holding every known kind, defaulting to zero.
func (c ActivityCounts) Complete() ActivityCounts {
	out := make(ActivityCounts, len(ActivityKinds))
	for _, kind := range ActivityKinds {
		v := c[kind]
		if v < 0 {
			v = 0
		}
		out[kind] = v
	}
	return out
}

// Total sums all known counters.
func (c ActivityCounts) Total() int {
	total := 0
	for _, kind := range ActivityKinds {
		total += c[kind]
	}
	return total
}

// Add accumulates other into c.
func (c ActivityCounts) Add(other ActivityCounts) {
	for _, kind := range ActivityKinds {
		c[kind] += other[kind]
	}
}

// ActivityPayload is the loosely typed activity object exchanged with the
// persistence layer. Only the load path may read non-canonical keys from it.
type ActivityPayload map[string]any
