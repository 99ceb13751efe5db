package model

type AgeGroup string

const (
	AgeGroupPreschool AgeGroup = "3-6"
	AgeGroupPrimary   AgeGroup = "7-12"
	AgeGroupTeen      AgeGroup = "13-16"
)

var AgeGroups = []AgeGroup{AgeGroupPreschool, AgeGroupPrimary, AgeGroupTeen}

func (a AgeGroup) Valid() bool {
	for _, g := range AgeGroups {
		if g == a {
			return true
		}
	}
	return false
}

type Settings struct {
	AgeGroup AgeGroup `json:"ageGroup"`
}

func DefaultSettings() Settings {
	return Settings{AgeGroup: AgeGroupPrimary}
}
