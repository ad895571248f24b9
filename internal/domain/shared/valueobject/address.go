package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// ShippingAddress is a value object representing the delivery address
// captured on an order. It is immutable once constructed; orders store a
// snapshot of the address as it was at checkout time.
type ShippingAddress struct {
	name         string
	phone        string
	addressLine1 string
	city         string
	state        string
	pincode      string
}

// NewShippingAddress creates a new ShippingAddress with all required fields
func NewShippingAddress(name, phone, addressLine1, city, state, pincode string) (ShippingAddress, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	addressLine1 = strings.TrimSpace(addressLine1)
	city = strings.TrimSpace(city)
	state = strings.TrimSpace(state)
	pincode = strings.TrimSpace(pincode)

	if name == "" {
		return ShippingAddress{}, fmt.Errorf("recipient name cannot be empty")
	}
	if phone == "" {
		return ShippingAddress{}, fmt.Errorf("phone cannot be empty")
	}
	if addressLine1 == "" {
		return ShippingAddress{}, fmt.Errorf("address line cannot be empty")
	}
	if city == "" {
		return ShippingAddress{}, fmt.Errorf("city cannot be empty")
	}
	if state == "" {
		return ShippingAddress{}, fmt.Errorf("state cannot be empty")
	}
	if pincode == "" {
		return ShippingAddress{}, fmt.Errorf("pincode cannot be empty")
	}

	return ShippingAddress{
		name:         name,
		phone:        phone,
		addressLine1: addressLine1,
		city:         city,
		state:        state,
		pincode:      pincode,
	}, nil
}

// Name returns the recipient name
func (a ShippingAddress) Name() string { return a.name }

// Phone returns the contact phone number
func (a ShippingAddress) Phone() string { return a.phone }

// AddressLine1 returns the street address
func (a ShippingAddress) AddressLine1() string { return a.addressLine1 }

// City returns the city
func (a ShippingAddress) City() string { return a.city }

// State returns the state
func (a ShippingAddress) State() string { return a.state }

// Pincode returns the postal code
func (a ShippingAddress) Pincode() string { return a.pincode }

// IsEmpty returns true if the address has no fields set
func (a ShippingAddress) IsEmpty() bool {
	return a == ShippingAddress{}
}

type shippingAddressJSON struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"address_line1"`
	City         string `json:"city"`
	State        string `json:"state"`
	Pincode      string `json:"pincode"`
}

// MarshalJSON implements json.Marshaler
func (a ShippingAddress) MarshalJSON() ([]byte, error) {
	return json.Marshal(shippingAddressJSON{
		Name:         a.name,
		Phone:        a.phone,
		AddressLine1: a.addressLine1,
		City:         a.city,
		State:        a.state,
		Pincode:      a.pincode,
	})
}

// UnmarshalJSON implements json.Unmarshaler
func (a *ShippingAddress) UnmarshalJSON(data []byte) error {
	var v shippingAddressJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	a.name = v.Name
	a.phone = v.Phone
	a.addressLine1 = v.AddressLine1
	a.city = v.City
	a.state = v.State
	a.pincode = v.Pincode
	return nil
}

// Value implements driver.Valuer for database storage.
// The address is stored as a JSON string.
func (a ShippingAddress) Value() (driver.Value, error) {
	if a.IsEmpty() {
		return nil, nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner for database retrieval
func (a *ShippingAddress) Scan(value interface{}) error {
	if value == nil {
		*a = ShippingAddress{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into ShippingAddress", value)
	}

	return json.Unmarshal(data, a)
}
