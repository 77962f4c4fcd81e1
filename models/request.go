package models

// Card contains payment card details.
type Card struct {
	// Number is the full card number (PAN).
	Number string

	// ExpirationMonth is the two-digit expiration month (e.g. "12").
	ExpirationMonth string

	// ExpirationYear is the four-digit expiration year (e.g. "2027").
	ExpirationYear string

	// CVN is the card verification number. Optional.
	CVN string

	// Type is the card type, either a CyberSource numeric code
	// (e.g. "001") or a brand name (e.g. "Visa"). Optional; unknown
	// values are dropped rather than sent.
	Type string
}

// BillTo contains the customer billing address and contact information.
// CyberSource expects the full set on requests that carry it, so the
// fields are treated as a unit: set them all or none.
type BillTo struct {
	FirstName  string
	LastName   string
	Street1    string
	Street2    string
	City       string
	State      string
	PostalCode string
	Country    string
	Email      string
	IPAddress  string
}
