package domain

import "fmt"

// Category is the closed set of auction categories. Unknown values are
// rejected at the API boundary via ParseCategory, never deeper in the stack.
type Category string

const (
	CategoryAll        Category = "all"
	CategoryFurniture  Category = "furniture"
	CategoryPorcelain  Category = "porcelain"
	CategoryJewelry    Category = "jewelry"
	CategoryArt        Category = "art"
	CategorySilverware Category = "silverware"
	CategoryAntiques   Category = "antiques"
)

var categories = map[Category]struct{}{
	CategoryAll:        {},
	CategoryFurniture:  {},
	CategoryPorcelain:  {},
	CategoryJewelry:    {},
	CategoryArt:        {},
	CategorySilverware: {},
	CategoryAntiques:   {},
}

func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if _, ok := categories[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
	}
	return c, nil
}

func (c Category) String() string {
	return string(c)
}
