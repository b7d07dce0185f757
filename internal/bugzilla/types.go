package bugzilla

// Bug matches the Bugzilla REST API representation of a single bug. We
// cannot change this shape; Normalize owns the outward representation.
type Bug struct {
	ID            int         `json:"id"`
	Product       string      `json:"product"`
	Component     string      `json:"component"`
	Status        string      `json:"status"`
	Summary       string      `json:"summary"`
	Priority      string      `json:"priority"`
	Severity      string      `json:"severity"`
	Platform      string      `json:"platform"`
	CreationTime  string      `json:"creation_time"`
	CC            []string    `json:"cc"`
	Keywords      []string    `json:"keywords"`
	Groups        []string    `json:"groups"`
	IsConfirmed   bool        `json:"is_confirmed"`
	CreatorDetail *UserDetail `json:"creator_detail"`
}

// UserDetail is the expanded user object attached to a bug.
type UserDetail struct {
	Email string `json:"email"`
}

// Product is one entry of the accessible-products listing.
type Product struct {
	Name string `json:"name"`
}

// Field describes one searchable bug field and its legal values.
type Field struct {
	Name   string       `json:"name"`
	Values []FieldValue `json:"values"`
}

// FieldValue is one legal value of a bug field.
type FieldValue struct {
	Name string `json:"name"`
}

// Response envelopes of the REST endpoints.
type bugsResponse struct {
	Bugs []Bug `json:"bugs"`
}

type productsResponse struct {
	Products []Product `json:"products"`
}

type fieldsResponse struct {
	Fields []Field `json:"fields"`
}
