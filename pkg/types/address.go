package types

import "strings"

const DefaultCountry = "US"

// ShippingAddress is the ship-to block sent with a checkout.
type ShippingAddress struct {
	Name     string `json:"shipName" validate:"required,max=200"`
	Address1 string `json:"shipAddress1" validate:"required,max=200"`
	Address2 string `json:"shipAddress2,omitempty" validate:"max=200"`
	City     string `json:"shipCity" validate:"required,max=100"`
	Region   string `json:"shipRegion" validate:"required,max=100"`
	Postal   string `json:"shipPostal" validate:"required,max=20"`
	Country  string `json:"shipCountry" validate:"required,len=2,alpha"`
}

// Normalize trims every field, upper-cases the country and defaults it to US.
func (a ShippingAddress) Normalize() ShippingAddress {
	out := ShippingAddress{
		Name:     strings.TrimSpace(a.Name),
		Address1: strings.TrimSpace(a.Address1),
		Address2: strings.TrimSpace(a.Address2),
		City:     strings.TrimSpace(a.City),
		Region:   strings.TrimSpace(a.Region),
		Postal:   strings.TrimSpace(a.Postal),
		Country:  strings.ToUpper(strings.TrimSpace(a.Country)),
	}
	if out.Country == "" {
		out.Country = DefaultCountry
	}
	return out
}
