package models

import (
	"encoding/json"
	"strings"
)

type UserType string

const (
	UserTypeOfficial UserType = "Official"
	UserTypeResident UserType = "Resident"
)

// ParseUserTypeOrDefault maps a raw stored value onto the user type.
// Early records stored the type as a number (0 = Official,
// 1 = Resident); later ones store the string form. Official is only
// produced for 0 or a case-insensitive "Official"; everything else,
// including unrecognized input, is Resident.
func ParseUserTypeOrDefault(raw interface{}) UserType {
	switch v := raw.(type) {
	case string:
		if strings.EqualFold(strings.TrimSpace(v), "official") {
			return UserTypeOfficial
		}
		return UserTypeResident
	case json.Number:
		if n, err := v.Int64(); err == nil && n == 0 {
			return UserTypeOfficial
		}
		return UserTypeResident
	case float64:
		if v == 0 {
			return UserTypeOfficial
		}
		return UserTypeResident
	case int:
		if v == 0 {
			return UserTypeOfficial
		}
		return UserTypeResident
	case int64:
		if v == 0 {
			return UserTypeOfficial
		}
		return UserTypeResident
	}
	return UserTypeResident
}

func (t UserType) String() string {
	return string(t)
}

// UnmarshalJSON accepts both the legacy numeric form and the string
// form; undecodable input defaults to Resident.
func (t *UserType) UnmarshalJSON(data []byte) error {
	raw, err := decodeFlexible(data)
	if err != nil {
		*t = UserTypeResident
		return nil
	}
	*t = ParseUserTypeOrDefault(raw)
	return nil
}

// MarshalJSON always writes the string form, regardless of how the
// value was read.
func (t UserType) MarshalJSON() ([]byte, error) {
	out := t
	if out != UserTypeOfficial {
		out = UserTypeResident
	}
	return json.Marshal(string(out))
}

// User is a resident or official profile stored at users/{userId}.
// The userId is issued by the identity service and doubles as the
// session identifier.
type User struct {
	UserID      string   `json:"userId"`
	FirstName   string   `json:"firstName"`
	MiddleName  string   `json:"middleName,omitempty"`
	LastName    string   `json:"lastName"`
	Email       string   `json:"email"`
	Address     string   `json:"address,omitempty"`
	PhoneNumber string   `json:"phoneNumber,omitempty"`
	UserType    UserType `json:"userType"`
	CreatedAt   string   `json:"createdAt"`
}

// Normalize fills defaults for fields absent in the stored record.
func (u *User) Normalize() {
	if u.UserType == "" {
		u.UserType = UserTypeResident
	}
}

// FullName joins the name parts, collapsing the gap left by a missing
// middle name.
func (u *User) FullName() string {
	full := u.FirstName + " " + u.MiddleName + " " + u.LastName
	full = strings.ReplaceAll(full, "  ", " ")
	return strings.TrimSpace(full)
}
