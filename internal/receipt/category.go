package receipt

import "strings"

// Category classifies a receipt by merchant type. The set is closed; any
// merchant that matches no known keyword maps to CategoryOther.
type Category string

const (
	CategoryGrocery       Category = "grocery"
	CategoryRestaurant    Category = "restaurant"
	CategoryFuel          Category = "fuel"
	CategoryPharmacy      Category = "pharmacy"
	CategoryRetail        Category = "retail"
	CategoryTransport     Category = "transport"
	CategoryEntertainment Category = "entertainment"
	CategoryUtilities     Category = "utilities"
	CategoryOther         Category = "other"
)

// categoryKeywords maps lowercase merchant substrings to categories. Order
// within a category does not matter; first matching category in iteration
// order below wins.
var categoryKeywords = []struct {
	cat   Category
	words []string
}{
	{CategoryGrocery, []string{"market", "grocery", "supermarket", "foods", "mart", "aldi", "lidl", "kroger", "safeway", "walmart", "costco", "trader joe"}},
	{CategoryRestaurant, []string{"restaurant", "cafe", "coffee", "pizza", "grill", "diner", "bistro", "bakery", "bar ", "burger", "sushi", "taco", "starbucks", "mcdonald", "subway"}},
	{CategoryFuel, []string{"gas", "fuel", "petrol", "shell", "chevron", "exxon", "bp ", "esso", "texaco"}},
	{CategoryPharmacy, []string{"pharmacy", "drug", "cvs", "walgreens", "apotheke", "chemist"}},
	{CategoryTransport, []string{"taxi", "uber", "lyft", "transit", "parking", "metro", "rail", "airline"}},
	{CategoryEntertainment, []string{"cinema", "theater", "theatre", "movie", "arcade", "bowling"}},
	{CategoryUtilities, []string{"electric", "water", "utility", "telecom", "internet", "mobile"}},
	{CategoryRetail, []string{"store", "shop", "outlet", "depot", "target", "ikea", "best buy", "home depot"}},
}

// CategoryFor maps a merchant name to its category, falling back to
// CategoryOther when nothing matches.
func CategoryFor(merchant string) Category {
	low := strings.ToLower(merchant)
	for _, entry := range categoryKeywords {
		for _, w := range entry.words {
			if strings.Contains(low, w) {
				return entry.cat
			}
		}
	}
	return CategoryOther
}

// Valid reports whether c is one of the closed set of categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryGrocery, CategoryRestaurant, CategoryFuel, CategoryPharmacy,
		CategoryRetail, CategoryTransport, CategoryEntertainment,
		CategoryUtilities, CategoryOther:
		return true
	}
	return false
}
