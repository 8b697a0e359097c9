package models

type Role string

const (
	RoleGuest    Role = "guest"
	RoleCustomer Role = "customer"
	RoleOperator Role = "operator"
)

// Caller identifies who issues a request. It is passed explicitly into every
// gateway call.
type Caller struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

func Guest() Caller {
	return Caller{Role: RoleGuest}
}

func (c Caller) IsOperator() bool {
	return c.Role == RoleOperator
}

func (c Caller) CanBook() bool {
	return c.Role == RoleCustomer || c.Role == RoleOperator
}

// Label is the identity recorded on audit rows.
func (c Caller) Label() string {
	switch {
	case c.Name != "" && c.ID != "":
		return c.Name + " (" + c.ID + ")"
	case c.ID != "":
		return c.ID
	case c.Name != "":
		return c.Name
	default:
		return string(c.Role)
	}
}
