package transactions

import "time"

type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

func (t Type) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

type Category string

const (
	CategoryFood           Category = "food"
	CategoryHousing        Category = "housing"
	CategoryTransportation Category = "transportation"
	CategoryUtilities      Category = "utilities"
	CategoryHealthcare     Category = "healthcare"
	CategoryEntertainment  Category = "entertainment"
	CategoryEducation      Category = "education"
	CategoryClothing       Category = "clothing"
	CategorySavings        Category = "savings"
	CategoryDebt           Category = "debt"
	CategoryGifts          Category = "gifts"
	CategoryOther          Category = "other"
	CategorySalary         Category = "salary"
	CategoryInvestment     Category = "investment"
	CategoryBonus          Category = "bonus"
)

var categories = []Category{
	CategoryFood, CategoryHousing, CategoryTransportation, CategoryUtilities, CategoryHealthcare,
	CategoryEntertainment, CategoryEducation, CategoryClothing, CategorySavings, CategoryDebt,
	CategoryGifts, CategoryOther, CategorySalary, CategoryInvestment, CategoryBonus,
}

// Categories returns the closed set of categories in declaration order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

type Transaction struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	UserID      string    `gorm:"type:uuid;index;not null"`
	Amount      float64   `gorm:"type:numeric(12,2);not null"`
	Description string    `gorm:"type:text;not null;default:''"`
	Type        Type      `gorm:"type:varchar(16);index;not null"`
	Category    Category  `gorm:"type:varchar(32);not null"`
	Date        time.Time `gorm:"index;not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

// ListFilter narrows a transaction listing. From and To are inclusive.
type ListFilter struct {
	UserIDs  []string
	Type     *Type
	Category *Category
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}

type CreateInput struct {
	UserID      string
	Amount      float64
	Description string
	Type        Type
	Category    Category
	Date        time.Time
}

// UpdateInput is a partial update; nil fields are left unchanged.
type UpdateInput struct {
	ID          string
	CallerID    string
	Amount      *float64
	Description *string
	Type        *Type
	Category    *Category
	Date        *time.Time
}

// Totals holds summed amounts per type.
type Totals struct {
	Income  float64
	Expense float64
}
