package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Role is the fixed capability class of an account.
// The zero value is not a valid role.
type Role uint8

const (
	RoleCustomer Role = iota + 1
	RoleMechanic
	RoleDealer
)

var roleNames = map[Role]string{
	RoleCustomer: "Customer",
	RoleMechanic: "Mechanic",
	RoleDealer:   "Dealer",
}

// ParseRole converts a wire or storage name to a Role.
// "Car Dealer" is accepted as an alias of Dealer.
func ParseRole(s string) (Role, error) {
	switch strings.TrimSpace(s) {
	case "Customer":
		return RoleCustomer, nil
	case "Mechanic":
		return RoleMechanic, nil
	case "Dealer", "Car Dealer":
		return RoleDealer, nil
	}
	return 0, fmt.Errorf("unknown role %q", s)
}

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Role(%d)", uint8(r))
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid role %d", uint8(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Value implements driver.Valuer.
func (r Role) Value() (driver.Value, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid role %d", uint8(r))
	}
	return r.String(), nil
}

// Scan implements sql.Scanner.
func (r *Role) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		return r.UnmarshalText([]byte(v))
	case []byte:
		return r.UnmarshalText(v)
	}
	return fmt.Errorf("cannot scan %T into Role", src)
}

// Account is a registered identity. Credential is never serialized.
type Account struct {
	ID               int64  `db:"id" json:"id"`
	Username         string `db:"username" json:"username"`
	Role             Role   `db:"role" json:"role"`
	PayoutIdentifier string `db:"payout_identifier" json:"payout_identifier"`
	Credential       string `db:"credential" json:"-"`
}

// NewAccount holds the fields supplied at signup.
type NewAccount struct {
	Username         string `json:"username" validate:"required,max=64"`
	Role             string `json:"role" validate:"required"`
	PayoutIdentifier string `json:"payout_identifier" validate:"required,max=128"`
	Credential       string `json:"password" validate:"required"`
}

// Normalize trims surrounding whitespace from every field.
func (n *NewAccount) Normalize() {
	n.Username = strings.TrimSpace(n.Username)
	n.Role = strings.TrimSpace(n.Role)
	n.PayoutIdentifier = strings.TrimSpace(n.PayoutIdentifier)
	n.Credential = strings.TrimSpace(n.Credential)
}
