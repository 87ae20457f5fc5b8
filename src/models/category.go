package models

import "strings"

type Category string

const (
	CategoryOfficeSupplies       Category = "Office Supplies"
	CategoryTravel               Category = "Travel"
	CategoryMarketing            Category = "Marketing"
	CategoryEquipment            Category = "Equipment"
	CategorySoftware             Category = "Software"
	CategoryUtilities            Category = "Utilities"
	CategoryProfessionalServices Category = "Professional Services"
	CategoryOther                Category = "Other"
)

// Categories lists every accepted expense category in display order.
var Categories = []Category{
	CategoryOfficeSupplies,
	CategoryTravel,
	CategoryMarketing,
	CategoryEquipment,
	CategorySoftware,
	CategoryUtilities,
	CategoryProfessionalServices,
	CategoryOther,
}

// ParseCategory matches s case-insensitively against the known categories.
// An empty string yields CategoryOther.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CategoryOther, nil
	}
	for _, c := range Categories {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return "", InvalidInput("unknown category %q", s)
}

type BusinessArea string

const (
	BusinessAreaCreative    BusinessArea = "CREATIVE"
	BusinessAreaDevelopment BusinessArea = "DEVELOPMENT"
	BusinessAreaSupport     BusinessArea = "SUPPORT"
)

var BusinessAreas = []BusinessArea{
	BusinessAreaCreative,
	BusinessAreaDevelopment,
	BusinessAreaSupport,
}

// ParseBusinessArea matches s case-insensitively. An empty string yields
// BusinessAreaCreative.
func ParseBusinessArea(s string) (BusinessArea, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return BusinessAreaCreative, nil
	}
	for _, a := range BusinessAreas {
		if strings.EqualFold(string(a), s) {
			return a, nil
		}
	}
	return "", InvalidInput("unknown business area %q", s)
}

func (c Category) String() string     { return string(c) }
func (a BusinessArea) String() string { return string(a) }

// Valid reports whether c is exactly one of Categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

func (a BusinessArea) Valid() bool {
	for _, known := range BusinessAreas {
		if a == known {
			return true
		}
	}
	return false
}
