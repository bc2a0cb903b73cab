package user

import "time"

type Role struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type School struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Name         string    `json:"name"`
	Phone        *string   `json:"phone,omitempty"`
	SchoolID     string    `json:"schoolId"`
	Roles        []Role    `json:"roles"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// RoleNames flattens the role associations into the claim shape tokens carry.
func (u User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))

	for _, r := range u.Roles {
		names = append(names, r.Name)
	}

	return names
}

// HasAnyRole reports whether the user holds at least one of the required
// role names. Empty required set never grants access.
func (u User) HasAnyRole(required []string) bool {
	for _, want := range required {
		for _, r := range u.Roles {
			if r.Name == want {
				return true
			}
		}
	}

	return false
}
