package enums

import "fmt"

// Gender uses the WeChat profile convention: 1 = male, 2 = female.
// Matching pairs opposite genders only.
type Gender int

const (
	GenderMale   Gender = 1
	GenderFemale Gender = 2
)

var validGenders = []Gender{GenderMale, GenderFemale}

// IsValid checks whether the value is one of the two matchable genders.
func (g Gender) IsValid() bool {
	for _, candidate := range validGenders {
		if candidate == g {
			return true
		}
	}
	return false
}

// Opposite returns the gender a roll of this gender is matched against.
func (g Gender) Opposite() Gender {
	if g == GenderMale {
		return GenderFemale
	}
	return GenderMale
}

func (g Gender) String() string {
	switch g {
	case GenderMale:
		return "male"
	case GenderFemale:
		return "female"
	default:
		return fmt.Sprintf("gender(%d)", int(g))
	}
}

// ParseGender converts raw integers into Gender.
func ParseGender(value int) (Gender, error) {
	g := Gender(value)
	if !g.IsValid() {
		return 0, fmt.Errorf("invalid gender %d", value)
	}
	return g, nil
}
