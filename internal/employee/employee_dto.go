package employee

type EmployeeResponse struct {
	ID           string `json:"id"`
	FullName     string `json:"full_name"`
	Email        string `json:"email,omitempty"`
	Balance      int    `json:"balance"`
	SuperiorID   string `json:"superior_id,omitempty"`
	SuperiorName string `json:"superior_name,omitempty"`
	OrgUnitID    string `json:"org_unit_id,omitempty"`
	OrgUnitName  string `json:"org_unit_name,omitempty"`
}

type SubordinateResponse struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Balance  int    `json:"balance"`
}
