// Package domain holds the profile-image entities and their error taxonomy.
package domain

import "strings"

// OwnerType tags which kind of profile an image belongs to.
// The numeric values are persisted and must not change.
type OwnerType int16

const (
	OwnerLead     OwnerType = 0
	OwnerCustomer OwnerType = 1
)

// ParseOwnerType accepts customer, customers, lead and leads in any case.
func ParseOwnerType(segment string) (OwnerType, bool) {
	switch strings.ToLower(strings.TrimSpace(segment)) {
	case "customer", "customers":
		return OwnerCustomer, true
	case "lead", "leads":
		return OwnerLead, true
	default:
		return 0, false
	}
}

func (t OwnerType) String() string {
	switch t {
	case OwnerCustomer:
		return "customer"
	case OwnerLead:
		return "lead"
	default:
		return "unknown"
	}
}

// Valid reports whether t is one of the two known owner kinds.
func (t OwnerType) Valid() bool {
	return t == OwnerCustomer || t == OwnerLead
}

// Owner identifies a customer or lead profile.
type Owner struct {
	Type OwnerType
	ID   int64
}
