package employee

// EmployeeRequest represents the input for creating or replacing an employee.
type EmployeeRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Position string `json:"position" binding:"max=100"`
	Company  string `json:"company" binding:"max=100"`
}

// MembershipRequest represents the request body for adding an employee to a team.
type MembershipRequest struct {
	Team string `json:"team" binding:"required,max=100"`
	Role string `json:"role" binding:"max=50"`
}

// Input converts the request into service input.
func (r EmployeeRequest) Input() Input {
	return Input{Name: r.Name, Email: r.Email, Position: r.Position, Company: r.Company}
}
