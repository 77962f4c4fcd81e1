package models

// TransactionReply is the parsed result of a runTransaction call.
//
// Exactly one reply section is populated per service that ran; sections
// for services that were not part of the request are nil. The top-level
// ReasonCode summarizes the whole request, and each section carries its
// own reason code as well.
type TransactionReply struct {
	// MerchantReferenceCode is echoed back from the request.
	MerchantReferenceCode string `xml:"merchantReferenceCode"`

	// RequestID is the CyberSource-assigned transaction identifier.
	// It is the handle for follow-up calls (capture, credit, void,
	// reversal).
	RequestID string `xml:"requestID"`

	// Decision is ACCEPT, REVIEW, REJECT, or ERROR.
	Decision string `xml:"decision"`

	// ReasonCode is the numeric outcome code for the request as a
	// whole (100 = success).
	ReasonCode int `xml:"reasonCode"`

	// RequestToken is the opaque token for follow-up requests.
	RequestToken string `xml:"requestToken"`

	CCAuthReply         *CCAuthReply         `xml:"ccAuthReply"`
	CCCaptureReply      *CCCaptureReply      `xml:"ccCaptureReply"`
	CCAuthReversalReply *CCAuthReversalReply `xml:"ccAuthReversalReply"`
	CCCreditReply       *CCCreditReply       `xml:"ccCreditReply"`
	VoidReply           *VoidReply           `xml:"voidReply"`

	PaySubscriptionCreateReply   *PaySubscriptionCreateReply   `xml:"paySubscriptionCreateReply"`
	PaySubscriptionRetrieveReply *PaySubscriptionRetrieveReply `xml:"paySubscriptionRetrieveReply"`
	PaySubscriptionUpdateReply   *PaySubscriptionUpdateReply   `xml:"paySubscriptionUpdateReply"`
	PaySubscriptionDeleteReply   *PaySubscriptionDeleteReply   `xml:"paySubscriptionDeleteReply"`
}

// CCAuthReply contains the authorization service outcome.
type CCAuthReply struct {
	ReasonCode         int    `xml:"reasonCode"`
	Amount             string `xml:"amount"`
	AuthorizationCode  string `xml:"authorizationCode"`
	AVSCode            string `xml:"avsCode"`
	CVCode             string `xml:"cvCode"`
	AuthorizedDateTime string `xml:"authorizedDateTime"`
	ProcessorResponse  string `xml:"processorResponse"`
	ReconciliationID   string `xml:"reconciliationID"`
}

// CCCaptureReply contains the capture service outcome.
type CCCaptureReply struct {
	ReasonCode       int    `xml:"reasonCode"`
	Amount           string `xml:"amount"`
	RequestDateTime  string `xml:"requestDateTime"`
	ReconciliationID string `xml:"reconciliationID"`
}

// CCAuthReversalReply contains the authorization reversal outcome.
type CCAuthReversalReply struct {
	ReasonCode        int    `xml:"reasonCode"`
	Amount            string `xml:"amount"`
	ProcessorResponse string `xml:"processorResponse"`
	RequestDateTime   string `xml:"requestDateTime"`
}

// CCCreditReply contains the credit service outcome.
type CCCreditReply struct {
	ReasonCode       int    `xml:"reasonCode"`
	Amount           string `xml:"amount"`
	RequestDateTime  string `xml:"requestDateTime"`
	ReconciliationID string `xml:"reconciliationID"`
}

// VoidReply contains the void service outcome.
type VoidReply struct {
	ReasonCode      int    `xml:"reasonCode"`
	Amount          string `xml:"amount"`
	Currency        string `xml:"currency"`
	RequestDateTime string `xml:"requestDateTime"`
}

// PaySubscriptionCreateReply contains the result of creating a
// recurring subscription (payment token).
type PaySubscriptionCreateReply struct {
	ReasonCode     int    `xml:"reasonCode"`
	SubscriptionID string `xml:"subscriptionID"`
}

// PaySubscriptionRetrieveReply echoes the stored subscription profile.
// The card number comes back masked.
type PaySubscriptionRetrieveReply struct {
	ReasonCode          int    `xml:"reasonCode"`
	SubscriptionID      string `xml:"subscriptionID"`
	Status              string `xml:"status"`
	CardAccountNumber   string `xml:"cardAccountNumber"`
	CardExpirationMonth string `xml:"cardExpirationMonth"`
	CardExpirationYear  string `xml:"cardExpirationYear"`
	CardType            string `xml:"cardType"`
	FirstName           string `xml:"firstName"`
	LastName            string `xml:"lastName"`
	Street1             string `xml:"street1"`
	City                string `xml:"city"`
	State               string `xml:"state"`
	PostalCode          string `xml:"postalCode"`
	Country             string `xml:"country"`
	Email               string `xml:"email"`
	CurrencyCode        string `xml:"currency"`
	Frequency           string `xml:"frequency"`
}

// PaySubscriptionUpdateReply contains the subscription update outcome.
type PaySubscriptionUpdateReply struct {
	ReasonCode     int    `xml:"reasonCode"`
	SubscriptionID string `xml:"subscriptionID"`
}

// PaySubscriptionDeleteReply contains the subscription delete outcome.
type PaySubscriptionDeleteReply struct {
	ReasonCode     int    `xml:"reasonCode"`
	SubscriptionID string `xml:"subscriptionID"`
}

// Decision values returned by the gateway.
const (
	DecisionAccept = "ACCEPT"
	DecisionReview = "REVIEW"
	DecisionReject = "REJECT"
	DecisionError  = "ERROR"
)
