package model

import "fmt"

// Category classifies what kind of good an item is.
type Category string

const (
	CategoryMedication Category = "medication"
	CategoryVaccine    Category = "vaccine"
	CategoryFood       Category = "food"
	CategorySupply     Category = "supply"
	CategoryOther      Category = "other"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryMedication, CategoryVaccine, CategoryFood, CategorySupply, CategoryOther:
		return true
	}
	return false
}

func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}
