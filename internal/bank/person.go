package bank

// Person holds the contact fields shared by admins and clients. It has no
// identity or lifecycle of its own.
type Person struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

func (p Person) FullName() string {
	return p.FirstName + " " + p.LastName
}
