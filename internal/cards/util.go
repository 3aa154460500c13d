package cards

// Util is the pure collaborator the dealer calls to judge and discover sets.
// Its semantics are owned by the game's feature rules, not by the
// concurrency core; see ClassicUtil for the classic Set implementation.
type Util interface {
	// TestSet reports whether the three given cards form a legal set.
	TestSet(cards [3]Card) bool

	// FindSets returns up to limit legal sets drawable from the given
	// multiset of cards; a limit <= 0 yields none. An empty result for a
	// positive limit means no set exists among them.
	FindSets(cards []Card, limit int) [][3]Card
}

// ClassicUtil implements the classic Set game rule: for each of
// Config.FeatureCount features, the three cards' digits in that feature
// must be either all equal or all distinct.
type ClassicUtil struct {
	Config Config
}

// NewClassicUtil returns a Util for the given feature geometry.
func NewClassicUtil(cfg Config) *ClassicUtil {
	return &ClassicUtil{Config: cfg}
}

// TestSet implements Util.
func (u *ClassicUtil) TestSet(c [3]Card) bool {
	a := u.Config.Features(c[0])
	b := u.Config.Features(c[1])
	d := u.Config.Features(c[2])
	for i := 0; i < u.Config.FeatureCount; i++ {
		allSame := a[i] == b[i] && b[i] == d[i]
		allDiff := a[i] != b[i] && b[i] != d[i] && a[i] != d[i]
		if !allSame && !allDiff {
			return false
		}
	}
	return true
}

// FindSets implements Util by exhaustively checking combinations, which is
// cheap at this domain's scale (at most 81 cards).
func (u *ClassicUtil) FindSets(cards []Card, limit int) [][3]Card {
	if limit <= 0 {
		return nil
	}
	var found [][3]Card
	n := len(cards)
	for i := 0; i < n && len(found) < limit; i++ {
		for j := i + 1; j < n && len(found) < limit; j++ {
			for k := j + 1; k < n && len(found) < limit; k++ {
				triple := [3]Card{cards[i], cards[j], cards[k]}
				if u.TestSet(triple) {
					found = append(found, triple)
				}
			}
		}
	}
	return found
}
