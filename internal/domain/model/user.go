package model

import (
	"fmt"
	"strings"
	"time"
)

// User represents a registered customer or staff member.
type User struct {
	ID           int64
	Login        string
	PasswordHash string
	Admin        bool
	CreatedAt    time.Time
}

// Actor identifies who performs an operation.
type Actor struct {
	UserID int64
	Admin  bool
}

// CanAccess reports whether the actor may act on a resource owned by ownerID.
func (a Actor) CanAccess(ownerID int64) bool {
	return a.Admin || (a.UserID != 0 && a.UserID == ownerID)
}

// Address is a saved shipping destination of a user.
type Address struct {
	ID        int64
	UserID    int64
	Name      string
	Mobile    string
	Line1     string
	Line2     string
	City      string
	State     string
	Pincode   string
	Country   string
	Default   bool
	CreatedAt time.Time
}

// Format renders the address snapshot stored on orders.
func (a *Address) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s, %s\n%s", a.Name, a.Mobile, a.Line1)
	if strings.TrimSpace(a.Line2) != "" {
		fmt.Fprintf(&b, "\n%s", a.Line2)
	}
	fmt.Fprintf(&b, "\n%s, %s %s\n%s", a.City, a.State, a.Pincode, a.Country)
	return b.String()
}
