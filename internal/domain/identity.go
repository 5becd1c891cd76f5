package domain

// Identity is what a verified identity token says about the caller.
type Identity struct {
	UID     string `json:"uid"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
	Email   string `json:"email,omitempty"`
}
