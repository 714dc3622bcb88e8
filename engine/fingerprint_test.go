package engine

import "testing"

func TestFingerprintTracksSharedState(t *testing.T) {
	m := newStartedMatch(t)
	c := m.Clone()
	if m.Fingerprint() != c.Fingerprint() {
		t.Fatal("clone fingerprint differs")
	}

	id := giveNumber(t, m, 0, 2)
	c = m.Clone()
	mustApply(t, m, 0, SelectCard{Card: id})
	if m.Fingerprint() != c.Fingerprint() {
		t.Fatal("selection changed the fingerprint")
	}

	mustApply(t, m, 0, ClickDeck{Family: FamilyAssist})
	if m.Fingerprint() == c.Fingerprint() {
		t.Fatal("draw left the fingerprint unchanged")
	}
}

func TestFingerprintDiffersBySeed(t *testing.T) {
	a := NewMatch(1, DefaultHouseRules())
	b := NewMatch(2, DefaultHouseRules())
	if a.Fingerprint() == b.Fingerprint() {
		t.Fatal("different shuffles share a fingerprint")
	}
}
