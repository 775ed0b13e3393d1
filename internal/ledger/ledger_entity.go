package ledger

// Account is the balance-bearing projection of an employee row.
type Account struct {
	EmployeeID string `gorm:"column:id;primaryKey"`
	Balance    int    `gorm:"column:balance"`
}

func (Account) TableName() string {
	return "employees"
}
