package cybersource

import (
	"context"
	"fmt"
	"runtime"

	"github.com/google/uuid"

	"github.com/cdtweb/go-cybersource/models"
)

// Client library identification stamped on every request; shows up in
// the gateway's transaction detail for diagnostics.
const (
	clientLibrary        = "go-cybersource"
	clientLibraryVersion = "1.0"
)

// State keys used in pre-flight checks. The reference code is always
// implicitly required.
const (
	fieldReferenceCode = "merchantReferenceCode"
	fieldCard          = "card"
	fieldBillTo        = "billTo"
	fieldCurrencyCode  = "currencyCode"
)

// Client interacts with the CyberSource Simple Order SOAP API.
//
// A Client holds session-scoped state (reference code, card, billing
// address, currency, merchant-defined fields) that its operation
// methods assemble into one-shot runTransaction calls. Each operation
// performs exactly one blocking round-trip and overwrites the
// LastRequest/LastReply debug state, so a Client is not safe for
// concurrent use without external synchronization.
//
// Gateway-reported business outcomes (declines, reviews) are not
// errors: they come back as a reply whose reason code callers inspect,
// with ReasonDescription as a lookup helper.
type Client struct {
	cfg       Config
	transport Transport

	referenceCode string
	card          *models.Card
	billTo        *models.BillTo
	currencyCode  string
	dataFields    map[int]string

	lastRequest *RequestMessage
	lastReply   *models.TransactionReply
}

// New creates a Simple Order API client. It validates the
// configuration, loads the optional P12 signing certificate, and
// prepares an HTTP transport with a fixed timeout against the
// environment's endpoint.
func New(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cert, err := loadSigningCertificate(cfg.P12Path, cfg.P12Password)
	if err != nil {
		return nil, fmt.Errorf("cybersource: load signing certificate: %w", err)
	}

	return &Client{
		cfg:       cfg,
		transport: newSOAPTransport(cfg, cert),
	}, nil
}

// NewWithTransport creates a client that dispatches through the given
// transport instead of the built-in SOAP one. Intended for tests.
func NewWithTransport(cfg Config, transport Transport) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{cfg: cfg, transport: transport}, nil
}

// NewReferenceCode generates a merchant reference code suitable for
// SetReferenceCode.
func NewReferenceCode() string {
	return uuid.NewString()
}

// MerchantID returns the configured merchant identifier.
func (c *Client) MerchantID() string {
	return c.cfg.MerchantID
}

// SetReferenceCode sets the merchant reference code correlating the
// next requests with the merchant's own records. Accepts a string or
// any numeric type; anything else returns an *InvalidArgumentError.
func (c *Client) SetReferenceCode(code any) error {
	switch v := code.(type) {
	case string:
		c.referenceCode = v
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		c.referenceCode = fmt.Sprint(v)
	default:
		return &InvalidArgumentError{Reason: "reference code must be a string or number"}
	}
	return nil
}

// ReferenceCode returns the current merchant reference code.
func (c *Client) ReferenceCode() string {
	return c.referenceCode
}

// SetCard stores the payment card. The card type, whether given as a
// brand name or a numeric code, is resolved to the numeric code here;
// unrecognized types are dropped so that no cardType field is sent.
func (c *Client) SetCard(card models.Card) {
	card.Type = normalizeCardType(card.Type)
	c.card = &card
}

// Card returns the stored payment card, or nil.
func (c *Client) Card() *models.Card {
	return c.card
}

// SetBillTo stores the billing address and contact block.
func (c *Client) SetBillTo(billTo models.BillTo) {
	c.billTo = &billTo
}

// BillTo returns the stored billing block, or nil.
func (c *Client) BillTo() *models.BillTo {
	return c.billTo
}

// SetCurrencyCode sets the ISO currency code used on amount-bearing
// requests.
func (c *Client) SetCurrencyCode(code string) {
	c.currencyCode = code
}

// CurrencyCode returns the current currency code.
func (c *Client) CurrencyCode() string {
	return c.currencyCode
}

// SetMerchantDefinedFields stores the merchant-defined data fields
// (field number to value) sent with every request until replaced.
func (c *Client) SetMerchantDefinedFields(fields map[int]string) {
	c.dataFields = fields
}

// MerchantDefinedFields returns the stored merchant-defined fields.
func (c *Client) MerchantDefinedFields() map[int]string {
	return c.dataFields
}

// LastRequest returns the request document of the most recent
// operation, recorded before dispatch.
func (c *Client) LastRequest() *RequestMessage {
	return c.lastRequest
}

// LastReply returns the reply of the most recent successful operation.
// Transport failures leave it untouched.
func (c *Client) LastReply() *models.TransactionReply {
	return c.lastReply
}

// ============================================
// Operations
// ============================================

// ValidateCard verifies the stored card by sending a zero-amount
// authorization.
func (c *Client) ValidateCard(ctx context.Context) (*models.TransactionReply, error) {
	if err := c.checkRequired(fieldCard, fieldBillTo, fieldCurrencyCode); err != nil {
		return nil, err
	}

	req := c.buildRequest()
	req.CCAuthService = &CCAuthService{Run: serviceRun}
	req.Card = c.requestCard()
	req.BillTo = c.requestBillTo()
	req.PurchaseTotals = &PurchaseTotals{
		Currency:         c.currencyCode,
		GrandTotalAmount: "0",
	}

	return c.send(ctx, req)
}

// Authorize creates an authorization for the given amount against the
// stored card. When authCapture is true the funds are captured in the
// same call, skipping a separate Capture.
func (c *Client) Authorize(ctx context.Context, amount string, authCapture bool) (*models.TransactionReply, error) {
	if err := c.checkRequired(fieldCard, fieldBillTo, fieldCurrencyCode); err != nil {
		return nil, err
	}

	req := c.buildRequest()
	req.CCAuthService = &CCAuthService{Run: serviceRun}
	if authCapture {
		req.CCCaptureService = &CCCaptureService{Run: serviceRun}
	}
	req.Card = c.requestCard()
	req.BillTo = c.requestBillTo()
	req.PurchaseTotals = &PurchaseTotals{
		Currency:         c.currencyCode,
		GrandTotalAmount: amount,
	}

	return c.send(ctx, req)
}

// ReverseAuthorization reverses a prior authorization identified by its
// request ID.
func (c *Client) ReverseAuthorization(ctx context.Context, requestID, amount string) (*models.TransactionReply, error) {
	if err := c.checkRequired(fieldCurrencyCode); err != nil {
		return nil, err
	}

	req := c.buildRequest()
	req.CCAuthReversalService = &CCAuthReversalService{
		Run:           serviceRun,
		AuthRequestID: requestID,
	}
	req.PurchaseTotals = &PurchaseTotals{
		Currency:         c.currencyCode,
		GrandTotalAmount: amount,
	}

	return c.send(ctx, req)
}

// Capture captures funds from a prior authorization identified by its
// request ID.
func (c *Client) Capture(ctx context.Context, requestID, amount string) (*models.TransactionReply, error) {
	if err := c.checkRequired(fieldCurrencyCode); err != nil {
		return nil, err
	}

	req := c.buildRequest()
	req.CCCaptureService = &CCCaptureService{
		Run:           serviceRun,
		AuthRequestID: requestID,
	}
	req.PurchaseTotals = &PurchaseTotals{
		Currency:         c.currencyCode,
		GrandTotalAmount: amount,
	}

	return c.send(ctx, req)
}

// Credit refunds a prior capture identified by its request ID.
func (c *Client) Credit(ctx context.Context, requestID, amount string) (*models.TransactionReply, error) {
	if err := c.checkRequired(fieldCurrencyCode); err != nil {
		return nil, err
	}

	req := c.buildRequest()
	req.CCCreditService = &CCCreditService{
		Run:              serviceRun,
		CaptureRequestID: requestID,
	}
	req.PurchaseTotals = &PurchaseTotals{
		Currency:         c.currencyCode,
		GrandTotalAmount: amount,
	}

	return c.send(ctx, req)
}

// Void cancels a capture or credit, identified by its request ID,
// before it settles.
func (c *Client) Void(ctx context.Context, requestID string) (*models.TransactionReply, error) {
	req := c.buildRequest()
	req.VoidService = &VoidService{
		Run:           serviceRun,
		VoidRequestID: requestID,
	}

	return c.send(ctx, req)
}

// GetSubscription retrieves a stored subscription profile.
func (c *Client) GetSubscription(ctx context.Context, subscriptionID string) (*models.TransactionReply, error) {
	req := c.buildRequest()
	req.PaySubscriptionRetrieveService = &SubscriptionService{Run: serviceRun}
	req.RecurringSubscriptionInfo = &RecurringSubscriptionInfo{SubscriptionID: subscriptionID}

	return c.send(ctx, req)
}

// CreateSubscription stores a card as an on-demand subscription.
//
// With a non-empty paymentRequestID the card and billing data of that
// prior payment are reused and only the currency is required; autoAuth
// is ignored. With an empty paymentRequestID the stored card and
// billing block are sent, and autoAuth controls the setup
// authorization: AutoAuthUnspecified defers to the account setting.
func (c *Client) CreateSubscription(ctx context.Context, paymentRequestID string, autoAuth AutoAuth) (*models.TransactionReply, error) {
	if paymentRequestID == "" {
		if err := c.checkRequired(fieldCard, fieldBillTo, fieldCurrencyCode); err != nil {
			return nil, err
		}
	} else {
		if err := c.checkRequired(fieldCurrencyCode); err != nil {
			return nil, err
		}
	}

	req := c.buildRequest()
	svc := &PaySubscriptionCreateService{Run: serviceRun}
	if paymentRequestID != "" {
		svc.PaymentRequestID = paymentRequestID
	} else {
		svc.DisableAutoAuth = autoAuth.disableAutoAuthValue()
	}
	req.PaySubscriptionCreateService = svc
	req.RecurringSubscriptionInfo = &RecurringSubscriptionInfo{Frequency: "on-demand"}

	if paymentRequestID == "" {
		req.Card = c.requestCard()
		req.BillTo = c.requestBillTo()
	}
	req.PurchaseTotals = &PurchaseTotals{Currency: c.currencyCode}

	return c.send(ctx, req)
}

// ChargeSubscription authorizes and captures an amount against a
// subscription in one call. skipDecisionManager bypasses risk screening
// for the charge.
func (c *Client) ChargeSubscription(ctx context.Context, subscriptionID, amount string, skipDecisionManager bool) (*models.TransactionReply, error) {
	if err := c.checkRequired(fieldCurrencyCode); err != nil {
		return nil, err
	}

	req := c.buildRequest()
	req.CCAuthService = &CCAuthService{Run: serviceRun}
	req.CCCaptureService = &CCCaptureService{Run: serviceRun}
	req.RecurringSubscriptionInfo = &RecurringSubscriptionInfo{SubscriptionID: subscriptionID}
	req.PurchaseTotals = &PurchaseTotals{
		Currency:         c.currencyCode,
		GrandTotalAmount: amount,
	}
	if skipDecisionManager {
		req.DecisionManager = &DecisionManager{Enabled: "false"}
	}

	return c.send(ctx, req)
}

// UpdateSubscription replaces the billing block stored on a
// subscription with the client's current one.
func (c *Client) UpdateSubscription(ctx context.Context, subscriptionID string) (*models.TransactionReply, error) {
	if err := c.checkRequired(fieldBillTo); err != nil {
		return nil, err
	}

	req := c.buildRequest()
	req.PaySubscriptionUpdateService = &SubscriptionService{Run: serviceRun}
	req.RecurringSubscriptionInfo = &RecurringSubscriptionInfo{SubscriptionID: subscriptionID}
	req.BillTo = c.requestBillTo()

	return c.send(ctx, req)
}

// DeleteSubscription cancels a subscription.
func (c *Client) DeleteSubscription(ctx context.Context, subscriptionID string) (*models.TransactionReply, error) {
	req := c.buildRequest()
	req.PaySubscriptionDeleteService = &SubscriptionService{Run: serviceRun}
	req.RecurringSubscriptionInfo = &RecurringSubscriptionInfo{SubscriptionID: subscriptionID}

	return c.send(ctx, req)
}

// ============================================
// Internals
// ============================================

// checkRequired verifies that the named state fields are present before
// a request is built. The reference code is always appended to the
// list. Presence only: the first empty field, in list order, fails the
// check; sub-fields are not inspected.
func (c *Client) checkRequired(keys ...string) error {
	keys = append(keys, fieldReferenceCode)

	for _, key := range keys {
		var empty bool
		switch key {
		case fieldReferenceCode:
			empty = c.referenceCode == ""
		case fieldCard:
			empty = c.card == nil
		case fieldBillTo:
			empty = c.billTo == nil
		case fieldCurrencyCode:
			empty = c.currencyCode == ""
		}
		if empty {
			return &MissingFieldError{Field: key}
		}
	}
	return nil
}

// buildRequest creates the base request document shared by every
// operation: merchant identity, reference code, merchant-defined
// fields when present, and client library metadata.
func (c *Client) buildRequest() *RequestMessage {
	req := &RequestMessage{
		MerchantID:            c.cfg.MerchantID,
		MerchantReferenceCode: c.referenceCode,
		ClientLibrary:         clientLibrary,
		ClientLibraryVersion:  clientLibraryVersion,
		ClientEnvironment:     runtime.GOOS + "/" + runtime.Version(),
	}

	if len(c.dataFields) > 0 {
		fields := make(map[int]string, len(c.dataFields))
		for k, v := range c.dataFields {
			fields[k] = v
		}
		req.MerchantDefinedData = &MerchantDefinedData{Fields: fields}
	}

	return req
}

func (c *Client) requestCard() *RequestCard {
	if c.card == nil {
		return nil
	}
	return &RequestCard{
		AccountNumber:   c.card.Number,
		ExpirationMonth: c.card.ExpirationMonth,
		ExpirationYear:  c.card.ExpirationYear,
		CVNumber:        c.card.CVN,
		CardType:        c.card.Type,
	}
}

func (c *Client) requestBillTo() *RequestBillTo {
	if c.billTo == nil {
		return nil
	}
	return &RequestBillTo{
		FirstName:  c.billTo.FirstName,
		LastName:   c.billTo.LastName,
		Street1:    c.billTo.Street1,
		Street2:    c.billTo.Street2,
		City:       c.billTo.City,
		State:      c.billTo.State,
		PostalCode: c.billTo.PostalCode,
		Country:    c.billTo.Country,
		Email:      c.billTo.Email,
		IPAddress:  c.billTo.IPAddress,
	}
}

// send records the request for debugging, dispatches it, and records
// the reply. LastReply is only updated on success.
func (c *Client) send(ctx context.Context, req *RequestMessage) (*models.TransactionReply, error) {
	c.lastRequest = req

	reply, err := c.transport.Send(ctx, req)
	if err != nil {
		return nil, err
	}

	c.lastReply = reply
	return reply, nil
}
