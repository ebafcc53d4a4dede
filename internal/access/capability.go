package access

import (
	"automind-api/internal/model"
	"automind-api/pkg/apierror"
)

// Capability names a mutating or reading operation that is gated by role.
type Capability string

const (
	CreateListing  Capability = "create_listing"
	DeleteListing  Capability = "delete_listing"
	CreateRequest  Capability = "create_request"
	ResolveRequest Capability = "resolve_request"
	ViewInbox      Capability = "view_inbox"
	SendMessage    Capability = "send_message"
	ReadMessages   Capability = "read_messages"
)

// capabilityRoles lists the roles allowed to exercise a capability.
// A nil entry means every role may.
var capabilityRoles = map[Capability][]model.Role{
	CreateListing:  {model.RoleDealer},
	DeleteListing:  {model.RoleDealer},
	ResolveRequest: {model.RoleDealer},
	ViewInbox:      {model.RoleDealer},
	CreateRequest:  {model.RoleCustomer},
	SendMessage:    nil,
	ReadMessages:   nil,
}

var capabilityDenials = map[Capability]string{
	CreateListing:  "Only dealers can add listings",
	DeleteListing:  "Only dealers can delete listings",
	ResolveRequest: "Only dealers can resolve requests",
	ViewInbox:      "Only dealers have a request inbox",
	CreateRequest:  "Only customers can send requests",
}

// Allowed reports whether role may exercise c.
func Allowed(role model.Role, c Capability) bool {
	roles, known := capabilityRoles[c]
	if !known || !role.Valid() {
		return false
	}
	if roles == nil {
		return true
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// Authorize returns Unauthorized for a nil caller and Forbidden when the
// caller's role does not carry c.
func Authorize(caller *model.Account, c Capability) error {
	if caller == nil {
		return apierror.Unauthorized("")
	}
	if !Allowed(caller.Role, c) {
		return apierror.Forbidden(capabilityDenials[c])
	}
	return nil
}
