// Package ranking orders chargeback cases by operational urgency.
//
// Cases still actionable come first regardless of age, then resolved-lost
// cases (appeal candidates), then resolved-won cases, then everything else.
// Within a bucket the most recent dispute comes first.
package ranking

import (
	"sort"
	"time"

	"github.com/smallbiznis/chargedesk/internal/chargeback/domain"
)

type Bucket int

const (
	BucketActionable Bucket = 1
	BucketLost       Bucket = 2
	BucketWon        Bucket = 3
	BucketOther      Bucket = 4
)

// Key is the sort key of a single case.
type Key struct {
	Bucket     Bucket
	DisputedAt time.Time
	// Dated is false when the dispute date could not be parsed. Undated cases
	// rank after every dated case of the same bucket.
	Dated bool
}

// BucketFor assigns the urgency bucket. Rules are evaluated in priority order
// and the first match wins.
func BucketFor(status string, outcome *string) Bucket {
	out := ""
	if outcome != nil {
		out = *outcome
	}

	switch {
	case status == domain.StatusOpen || status == domain.StatusUnderReview:
		return BucketActionable
	case status == domain.StatusLost || out == domain.OutcomeLost:
		return BucketLost
	case status == domain.StatusWon || out == domain.OutcomeWon:
		return BucketWon
	default:
		return BucketOther
	}
}

func KeyFor(status string, outcome *string, disputeDate string) Key {
	key := Key{Bucket: BucketFor(status, outcome)}
	if parsed, err := domain.ParseStoreTime(disputeDate); err == nil {
		key.DisputedAt = parsed
		key.Dated = true
	}
	return key
}

// CaseKey computes the key of c.
func CaseKey(c domain.Case) Key {
	return KeyFor(c.Status, c.Outcome, c.DisputeDate)
}

// Less reports whether a ranks strictly before b.
func Less(a, b Key) bool {
	if a.Bucket != b.Bucket {
		return a.Bucket < b.Bucket
	}
	if a.Dated != b.Dated {
		return a.Dated
	}
	if !a.Dated {
		return false
	}
	return a.DisputedAt.After(b.DisputedAt)
}

// Sort orders cases in place. Cases with equal keys keep their input order.
func Sort(cases []domain.Case) {
	keys := make([]Key, len(cases))
	for i := range cases {
		keys[i] = CaseKey(cases[i])
	}
	sort.Stable(byKey{cases: cases, keys: keys})
}

type byKey struct {
	cases []domain.Case
	keys  []Key
}

func (b byKey) Len() int           { return len(b.cases) }
func (b byKey) Less(i, j int) bool { return Less(b.keys[i], b.keys[j]) }
func (b byKey) Swap(i, j int) {
	b.cases[i], b.cases[j] = b.cases[j], b.cases[i]
	b.keys[i], b.keys[j] = b.keys[j], b.keys[i]
}
