package model

type Category string

const (
	CategoryStudy        Category = "学习成长"
	CategoryHealth       Category = "运动健康"
	CategoryLife         Category = "生活实践"
	CategoryPlay         Category = "自由游玩"
	CategoryPenaltyStudy Category = "学习违规"
	CategoryPenaltyLife  Category = "生活违规"
	CategoryPenaltyMoral Category = "品德违规"
)

var Categories = []Category{
	CategoryStudy,
	CategoryHealth,
	CategoryLife,
	CategoryPlay,
	CategoryPenaltyStudy,
	CategoryPenaltyLife,
	CategoryPenaltyMoral,
}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// IsPenalty reports whether c is one of the infraction sub-categories.
func (c Category) IsPenalty() bool {
	switch c {
	case CategoryPenaltyStudy, CategoryPenaltyLife, CategoryPenaltyMoral:
		return true
	}
	return false
}

// DirectDeduction marks a penalty option whose deduction is the entered
// minutes rather than a ratio.
const DirectDeduction = -1.0

type ActivityOption struct {
	ID                     string   `json:"id" yaml:"id"`
	Name                   string   `json:"name" yaml:"name"`
	Category               Category `json:"category" yaml:"category"`
	DefaultDurationMinutes int      `json:"defaultDurationMinutes" yaml:"default_duration_minutes"`
	ExchangeRatio          float64  `json:"exchangeRatio" yaml:"exchange_ratio"`
	Description            string   `json:"description,omitempty" yaml:"description"`
	IsPenalty              bool     `json:"isPenalty,omitempty" yaml:"is_penalty"`
}

// Catalog holds the two option namespaces. Ids are unique within a list,
// not across lists.
type Catalog struct {
	Earn    []ActivityOption `json:"earn"`
	Penalty []ActivityOption `json:"penalty"`
}

func (c Catalog) Clone() Catalog {
	return Catalog{
		Earn:    append([]ActivityOption(nil), c.Earn...),
		Penalty: append([]ActivityOption(nil), c.Penalty...),
	}
}
