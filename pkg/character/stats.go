package character

import "fmt"

// Attribute names one of the six core ability scores.
type Attribute string

const (
	Strength     Attribute = "strength"
	Dexterity    Attribute = "dexterity"
	Constitution Attribute = "constitution"
	Intelligence Attribute = "intelligence"
	Wisdom       Attribute = "wisdom"
	Charisma     Attribute = "charisma"
)

// Attributes lists the ability scores in sheet order.
var Attributes = []Attribute{Strength, Dexterity, Constitution, Intelligence, Wisdom, Charisma}

// Valid reports whether a is one of the six ability scores.
func (a Attribute) Valid() bool {
	switch a {
	case Strength, Dexterity, Constitution, Intelligence, Wisdom, Charisma:
		return true
	}
	return false
}

// Stats represents the six core ability scores. Any integer is accepted.
type Stats struct {
	Strength     int `json:"strength"`
	Dexterity    int `json:"dexterity"`
	Constitution int `json:"constitution"`
	Intelligence int `json:"intelligence"`
	Wisdom       int `json:"wisdom"`
	Charisma     int `json:"charisma"`
}

// ToAttributes converts Stats to a map for d20.Actor compatibility
func (s *Stats) ToAttributes() map[string]int {
	return map[string]int{
		string(Strength):     s.Strength,
		string(Dexterity):    s.Dexterity,
		string(Constitution): s.Constitution,
		string(Intelligence): s.Intelligence,
		string(Wisdom):       s.Wisdom,
		string(Charisma):     s.Charisma,
	}
}

// Get returns the score for attr. Unknown attributes report false.
func (s *Stats) Get(attr Attribute) (int, bool) {
	switch attr {
	case Strength:
		return s.Strength, true
	case Dexterity:
		return s.Dexterity, true
	case Constitution:
		return s.Constitution, true
	case Intelligence:
		return s.Intelligence, true
	case Wisdom:
		return s.Wisdom, true
	case Charisma:
		return s.Charisma, true
	}
	return 0, false
}

// Set overwrites the score for attr.
func (s *Stats) Set(attr Attribute, value int) error {
	switch attr {
	case Strength:
		s.Strength = value
	case Dexterity:
		s.Dexterity = value
	case Constitution:
		s.Constitution = value
	case Intelligence:
		s.Intelligence = value
	case Wisdom:
		s.Wisdom = value
	case Charisma:
		s.Charisma = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAttribute, attr)
	}
	return nil
}

// DerivedStats holds the vitals computed from Stats.
// A MaxHP of zero means the values have never been computed.
type DerivedStats struct {
	HP    int `json:"hp"`
	MaxHP int `json:"maxHp"`
	SP    int `json:"sp"`
	MaxSP int `json:"maxSp"`
}

// MaxHP returns constitution*2 + floor(strength/2), never below zero.
func MaxHP(s Stats) int {
	return max(0, s.Constitution*2+FloorDiv(s.Strength, 2))
}

// MaxSP returns intelligence + wisdom + floor(charisma/2), never below zero.
func MaxSP(s Stats) int {
	return max(0, s.Intelligence+s.Wisdom+FloorDiv(s.Charisma, 2))
}

// Recompute derives new vitals from stats. On first computation (prev.MaxHP
// is zero) current values start at their maximums; afterwards current values
// are kept but capped to the new maximums.
func Recompute(stats Stats, prev DerivedStats) DerivedStats {
	next := DerivedStats{
		MaxHP: MaxHP(stats),
		MaxSP: MaxSP(stats),
	}
	if prev.MaxHP == 0 {
		next.HP = next.MaxHP
		next.SP = next.MaxSP
		return next
	}
	next.HP = Clamp(prev.HP, 0, next.MaxHP)
	next.SP = Clamp(prev.SP, 0, next.MaxSP)
	return next
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// FloorDiv divides rounding toward negative infinity. b must be positive.
func FloorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && a < 0 {
		q--
	}
	return q
}
