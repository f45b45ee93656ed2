package workflow

// Tier is a resource tier on entity kinds that have one. The rank
// order is the entitlement order: an actor entitled to a tier may use
// it and everything below it.
type Tier string

const (
	TierFree    Tier = "free"
	TierBasic   Tier = "basic"
	TierPremium Tier = "premium"
)

var tierRank = map[Tier]int{
	TierFree:    0,
	TierBasic:   1,
	TierPremium: 2,
}

// Valid reports whether t is a declared tier.
func (t Tier) Valid() bool {
	_, ok := tierRank[t]
	return ok
}

// CoveredBy reports whether an actor entitled to `entitled` may
// request t. Unknown tiers are never covered.
func (t Tier) CoveredBy(entitled Tier) bool {
	tr, ok := tierRank[t]
	if !ok {
		return false
	}
	er, ok := tierRank[entitled]
	if !ok {
		return false
	}
	return tr <= er
}
