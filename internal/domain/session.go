package domain

type User struct {
	Username string `json:"username"`
}

// Identity is the payload of a successful /me revalidation.
type Identity struct {
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}
