package cybersource

import (
	"encoding/xml"
	"sort"
	"strconv"
)

// ============================================
// Request document (Simple Order requestMessage)
// ============================================

// RequestMessage is the request document sent to runTransaction. One is
// built fresh per operation; the service pointers form a closed set of
// service-activation blocks and only the blocks an operation attaches
// are marshaled.
type RequestMessage struct {
	MerchantID            string `xml:"ns1:merchantID"`
	MerchantReferenceCode string `xml:"ns1:merchantReferenceCode"`
	ClientLibrary         string `xml:"ns1:clientLibrary"`
	ClientLibraryVersion  string `xml:"ns1:clientLibraryVersion"`
	ClientEnvironment     string `xml:"ns1:clientEnvironment,omitempty"`

	BillTo         *RequestBillTo  `xml:"ns1:billTo,omitempty"`
	PurchaseTotals *PurchaseTotals `xml:"ns1:purchaseTotals,omitempty"`
	Card           *RequestCard    `xml:"ns1:card,omitempty"`

	CCAuthService         *CCAuthService         `xml:"ns1:ccAuthService,omitempty"`
	CCCaptureService      *CCCaptureService      `xml:"ns1:ccCaptureService,omitempty"`
	CCCreditService       *CCCreditService       `xml:"ns1:ccCreditService,omitempty"`
	CCAuthReversalService *CCAuthReversalService `xml:"ns1:ccAuthReversalService,omitempty"`
	VoidService           *VoidService           `xml:"ns1:voidService,omitempty"`

	PaySubscriptionCreateService   *PaySubscriptionCreateService `xml:"ns1:paySubscriptionCreateService,omitempty"`
	PaySubscriptionRetrieveService *SubscriptionService          `xml:"ns1:paySubscriptionRetrieveService,omitempty"`
	PaySubscriptionUpdateService   *SubscriptionService          `xml:"ns1:paySubscriptionUpdateService,omitempty"`
	PaySubscriptionDeleteService   *SubscriptionService          `xml:"ns1:paySubscriptionDeleteService,omitempty"`

	RecurringSubscriptionInfo *RecurringSubscriptionInfo `xml:"ns1:recurringSubscriptionInfo,omitempty"`
	DecisionManager           *DecisionManager           `xml:"ns1:decisionManager,omitempty"`
	MerchantDefinedData       *MerchantDefinedData       `xml:"ns1:merchantDefinedData,omitempty"`
}

// RequestBillTo is the billing address block of a request.
type RequestBillTo struct {
	FirstName  string `xml:"ns1:firstName"`
	LastName   string `xml:"ns1:lastName"`
	Street1    string `xml:"ns1:street1"`
	Street2    string `xml:"ns1:street2,omitempty"`
	City       string `xml:"ns1:city"`
	State      string `xml:"ns1:state"`
	PostalCode string `xml:"ns1:postalCode"`
	Country    string `xml:"ns1:country"`
	Email      string `xml:"ns1:email"`
	IPAddress  string `xml:"ns1:ipAddress,omitempty"`
}

// RequestCard is the payment card block of a request. CardType holds
// the resolved numeric code; when empty the element is omitted.
type RequestCard struct {
	AccountNumber   string `xml:"ns1:accountNumber"`
	ExpirationMonth string `xml:"ns1:expirationMonth"`
	ExpirationYear  string `xml:"ns1:expirationYear"`
	CVNumber        string `xml:"ns1:cvNumber,omitempty"`
	CardType        string `xml:"ns1:cardType,omitempty"`
}

// PurchaseTotals carries the currency and amount of a request.
type PurchaseTotals struct {
	Currency         string `xml:"ns1:currency"`
	GrandTotalAmount string `xml:"ns1:grandTotalAmount,omitempty"`
}

// CCAuthService activates the card authorization service.
type CCAuthService struct {
	Run string `xml:"run,attr"`
}

// CCCaptureService activates the capture service. AuthRequestID points
// at the authorization being captured; empty for auth+capture calls.
type CCCaptureService struct {
	Run           string `xml:"run,attr"`
	AuthRequestID string `xml:"ns1:authRequestID,omitempty"`
}

// CCCreditService activates the credit (refund) service against a
// prior capture.
type CCCreditService struct {
	Run              string `xml:"run,attr"`
	CaptureRequestID string `xml:"ns1:captureRequestID,omitempty"`
}

// CCAuthReversalService activates the authorization reversal service.
type CCAuthReversalService struct {
	Run           string `xml:"run,attr"`
	AuthRequestID string `xml:"ns1:authRequestID"`
}

// VoidService activates the void service against a prior capture or
// credit.
type VoidService struct {
	Run           string `xml:"run,attr"`
	VoidRequestID string `xml:"ns1:voidRequestID"`
}

// PaySubscriptionCreateService activates subscription creation. Exactly
// one of PaymentRequestID or DisableAutoAuth is populated: the former
// reuses a prior payment, the latter controls the setup authorization
// for a fresh card.
type PaySubscriptionCreateService struct {
	Run              string `xml:"run,attr"`
	PaymentRequestID string `xml:"ns1:paymentRequestID,omitempty"`
	DisableAutoAuth  string `xml:"ns1:disableAutoAuth,omitempty"`
}

// SubscriptionService activates one of the parameterless subscription
// services (retrieve, update, delete); the target subscription is
// identified by the RecurringSubscriptionInfo block.
type SubscriptionService struct {
	Run string `xml:"run,attr"`
}

// RecurringSubscriptionInfo identifies or describes a subscription.
type RecurringSubscriptionInfo struct {
	SubscriptionID string `xml:"ns1:subscriptionID,omitempty"`
	Frequency      string `xml:"ns1:frequency,omitempty"`
}

// DecisionManager controls Decision Manager risk screening for the
// request; Enabled "false" bypasses it.
type DecisionManager struct {
	Enabled string `xml:"ns1:enabled"`
}

// MerchantDefinedData marshals the merchant-defined fields as an
// ordered sequence of mddField elements with an id attribute.
type MerchantDefinedData struct {
	Fields map[int]string
}

func (m MerchantDefinedData) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	keys := make([]int, 0, len(m.Fields))
	for k := range m.Fields {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	for _, k := range keys {
		el := xml.StartElement{
			Name: xml.Name{Local: "ns1:mddField"},
			Attr: []xml.Attr{{Name: xml.Name{Local: "id"}, Value: strconv.Itoa(k)}},
		}
		if err := e.EncodeElement(m.Fields[k], el); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

// AutoAuth controls the setup authorization when creating a
// subscription from a fresh card. AutoAuthUnspecified omits the field
// so the gateway falls back to the account setting.
type AutoAuth int

const (
	AutoAuthUnspecified AutoAuth = iota
	AutoAuthEnabled
	AutoAuthDisabled
)

// disableAutoAuthValue returns the wire value for the disableAutoAuth
// field. The field is inverted relative to the enum: enabling auto-auth
// means disableAutoAuth=false.
func (a AutoAuth) disableAutoAuthValue() string {
	switch a {
	case AutoAuthEnabled:
		return "false"
	case AutoAuthDisabled:
		return "true"
	default:
		return ""
	}
}

// serviceRun is the activation flag carried by every service block.
const serviceRun = "true"
