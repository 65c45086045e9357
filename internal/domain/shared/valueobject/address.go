package valueobject

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultCountry is used when an address is given without a country
const DefaultCountry = "France"

var postalCodePattern = regexp.MustCompile(`^[0-9A-Za-z][0-9A-Za-z \-]{1,9}$`)

// Address is a postal address value object.
// Fields are exported so persistence can embed it; use NewAddress to build a validated one.
type Address struct {
	Street     string `json:"street"`
	PostalCode string `json:"postalCode"`
	City       string `json:"city"`
	Country    string `json:"country"`
}

// NewAddress creates a trimmed and validated Address.
// An all-blank address is valid and means "not provided".
func NewAddress(street, postalCode, city, country string) (Address, error) {
	addr := Address{
		Street:     strings.TrimSpace(street),
		PostalCode: strings.TrimSpace(postalCode),
		City:       strings.TrimSpace(city),
		Country:    strings.TrimSpace(country),
	}
	if addr.IsEmpty() {
		return Address{}, nil
	}
	if addr.Country == "" {
		addr.Country = DefaultCountry
	}
	if err := addr.Validate(); err != nil {
		return Address{}, err
	}
	return addr, nil
}

// Validate checks field lengths and the postal code format
func (a Address) Validate() error {
	if a.IsEmpty() {
		return nil
	}
	if a.Street == "" {
		return fmt.Errorf("street is required")
	}
	if utf8.RuneCountInString(a.Street) > 255 {
		return fmt.Errorf("street cannot exceed 255 characters")
	}
	if a.City == "" {
		return fmt.Errorf("city is required")
	}
	if utf8.RuneCountInString(a.City) > 100 {
		return fmt.Errorf("city cannot exceed 100 characters")
	}
	if a.PostalCode != "" && !postalCodePattern.MatchString(a.PostalCode) {
		return fmt.Errorf("invalid postal code %q", a.PostalCode)
	}
	if utf8.RuneCountInString(a.Country) > 100 {
		return fmt.Errorf("country cannot exceed 100 characters")
	}
	return nil
}

// IsEmpty returns true if street, postal code and city are all blank
func (a Address) IsEmpty() bool {
	return a.Street == "" && a.PostalCode == "" && a.City == ""
}

// String formats the address on one line: "street, postalCode city, country"
func (a Address) String() string {
	if a.IsEmpty() {
		return ""
	}
	parts := make([]string, 0, 3)
	if a.Street != "" {
		parts = append(parts, a.Street)
	}
	locality := strings.TrimSpace(a.PostalCode + " " + a.City)
	if locality != "" {
		parts = append(parts, locality)
	}
	if a.Country != "" {
		parts = append(parts, a.Country)
	}
	return strings.Join(parts, ", ")
}

// Equals returns true if both addresses are equal
func (a Address) Equals(other Address) bool {
	return a == other
}
