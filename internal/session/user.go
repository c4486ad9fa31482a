package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// User is a provider user. It is immutable from the dashboard's perspective.
type User struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

func (u User) Equal(u2 User) bool {
	return u.ID == u2.ID && u.Email == u2.Email
}

type Role string

const (
	RoleTechnician Role = "technician"
	RoleCustomer   Role = "customer"
	RoleAdmin      Role = "admin"
)

// Normalize lower-cases and trims the Role.
func (r Role) Normalize() Role {
	return Role(strings.ToLower(strings.TrimSpace(string(r))))
}

// Profile is the application record keyed by User.ID, stored in the
// provider's user_profiles table.
type Profile struct {
	ID     uuid.UUID `json:"id"`
	Role   Role      `json:"role"`
	Badges Badges    `json:"badges"`
}

// Badges is the canonical, lower-cased set of badges held by a Profile.
//
// Historical rows store badges as null, a JSON list of strings, or a single
// comma-separated string. UnmarshalJSON accepts all three so nothing past
// decoding needs to care which one a row used.
type Badges map[string]struct{}

// NewBadges creates a Badges set from the passed values.
func NewBadges(values ...string) Badges {
	badges := make(Badges, len(values))
	for _, value := range values {
		badges.add(value)
	}
	return badges
}

// Has checks if the set contains badge, ignoring case.
func (b Badges) Has(badge string) bool {
	_, ok := b[strings.ToLower(strings.TrimSpace(badge))]
	return ok
}

// Slice returns the badges in sorted order.
func (b Badges) Slice() []string {
	values := make([]string, 0, len(b))
	for value := range b {
		values = append(values, value)
	}
	sort.Strings(values)
	return values
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *Badges) UnmarshalJSON(data []byte) error {
	set := make(Badges)

	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")):
	case data[0] == '[':
		var values []interface{}
		if err := json.Unmarshal(data, &values); err != nil {
			return fmt.Errorf("badges list; error: %w", err)
		}
		for _, value := range values {
			// non-string entries are ignored rather than rejected
			if str, ok := value.(string); ok {
				set.add(str)
			}
		}
	case data[0] == '"':
		var value string
		if err := json.Unmarshal(data, &value); err != nil {
			return fmt.Errorf("badges string; error: %w", err)
		}
		for _, part := range strings.Split(value, ",") {
			set.add(part)
		}
	default:
		return fmt.Errorf("badges; unexpected json: %s", string(data))
	}

	*b = set
	return nil
}

// MarshalJSON implements json.Marshaler. Badges are always written as a list.
func (b Badges) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Slice())
}

func (b Badges) add(value string) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return
	}
	b[value] = struct{}{}
}
