package dto

// AddressRequest creates a shipping address.
type AddressRequest struct {
	Name    string `json:"name"`
	Mobile  string `json:"mobile"`
	Line1   string `json:"line1"`
	Line2   string `json:"line2"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Country string `json:"country"`
	Default bool   `json:"is_default"`
}

// AddressResponse describes a saved address.
type AddressResponse struct {
	ID int64 `json:"id"`
	AddressRequest
}
