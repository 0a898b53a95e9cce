package stop

import "strings"

// Contact is the recipient information shown to the driver. All fields are optional.
type Contact struct {
	name    string
	phone   string
	address string
}

// NewContact trims and stores the recipient details.
func NewContact(name, phone, address string) Contact {
	return Contact{
		name:    strings.TrimSpace(name),
		phone:   strings.TrimSpace(phone),
		address: strings.TrimSpace(address),
	}
}

// Name returns the recipient name.
func (c Contact) Name() string {
	return c.name
}

// Phone returns the recipient phone number.
func (c Contact) Phone() string {
	return c.phone
}

// Address returns the free-form delivery address.
func (c Contact) Address() string {
	return c.address
}
