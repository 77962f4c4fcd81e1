package cybersource

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cdtweb/go-cybersource/models"
)

type mockTransport struct {
	requests []*RequestMessage
	replies  []*models.TransactionReply
	err      error
}

func (m *mockTransport) Send(_ context.Context, req *RequestMessage) (*models.TransactionReply, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	reply := m.replies[0]
	if len(m.replies) > 1 {
		m.replies = m.replies[1:]
	}
	return reply, nil
}

func (m *mockTransport) last() *RequestMessage {
	return m.requests[len(m.requests)-1]
}

func okReply(requestID string) *models.TransactionReply {
	return &models.TransactionReply{
		RequestID:  requestID,
		Decision:   models.DecisionAccept,
		ReasonCode: 100,
	}
}

func testClient(t *testing.T, transport Transport) *Client {
	t.Helper()
	c, err := NewWithTransport(Config{MerchantID: "test_merchant", APIKey: "secret"}, transport)
	require.NoError(t, err)
	return c
}

func testCard() models.Card {
	return models.Card{
		Number:          "4111111111111111",
		ExpirationMonth: "12",
		ExpirationYear:  "2030",
		CVN:             "123",
		Type:            "Visa",
	}
}

func testBillTo() models.BillTo {
	return models.BillTo{
		FirstName:  "Jane",
		LastName:   "Doe",
		Street1:    "1295 Charleston Rd",
		Street2:    "Suite 2",
		City:       "Mountain View",
		State:      "CA",
		PostalCode: "94043",
		Country:    "US",
		Email:      "jane.doe@example.com",
		IPAddress:  "203.0.113.10",
	}
}

func readyClient(t *testing.T, transport Transport) *Client {
	t.Helper()
	c := testClient(t, transport)
	require.NoError(t, c.SetReferenceCode("order-1001"))
	c.SetCard(testCard())
	c.SetBillTo(testBillTo())
	c.SetCurrencyCode("USD")
	return c
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(Config{APIKey: "secret"})
	require.Error(t, err)

	_, err = New(Config{MerchantID: "test_merchant"})
	require.Error(t, err)
}

func TestSettersRoundTrip(t *testing.T) {
	c := testClient(t, &mockTransport{})

	require.NoError(t, c.SetReferenceCode("order-42"))
	assert.Equal(t, "order-42", c.ReferenceCode())

	require.NoError(t, c.SetReferenceCode(12345))
	assert.Equal(t, "12345", c.ReferenceCode())

	c.SetCurrencyCode("EUR")
	assert.Equal(t, "EUR", c.CurrencyCode())

	card := testCard()
	c.SetCard(card)
	got := c.Card()
	require.NotNil(t, got)
	assert.Equal(t, card.Number, got.Number)
	assert.Equal(t, card.ExpirationMonth, got.ExpirationMonth)
	assert.Equal(t, card.ExpirationYear, got.ExpirationYear)
	assert.Equal(t, card.CVN, got.CVN)
	assert.Equal(t, "001", got.Type) // brand name resolved at set time

	billTo := testBillTo()
	c.SetBillTo(billTo)
	require.NotNil(t, c.BillTo())
	assert.Equal(t, billTo, *c.BillTo())

	fields := map[int]string{1: "loyalty", 4: "web"}
	c.SetMerchantDefinedFields(fields)
	assert.Equal(t, fields, c.MerchantDefinedFields())
}

func TestSetReferenceCodeRejectsNonScalar(t *testing.T) {
	c := testClient(t, &mockTransport{})

	err := c.SetReferenceCode([]string{"nope"})
	var invalid *InvalidArgumentError
	require.ErrorAs(t, err, &invalid)

	require.Error(t, c.SetReferenceCode(nil))
	require.Error(t, c.SetReferenceCode(struct{}{}))
}

func TestCheckRequired(t *testing.T) {
	t.Run("reference code is implicitly required", func(t *testing.T) {
		c := testClient(t, &mockTransport{})
		c.SetCard(testCard())
		c.SetBillTo(testBillTo())
		c.SetCurrencyCode("USD")

		_, err := c.Authorize(context.Background(), "10.00", false)
		var missing *MissingFieldError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, "merchantReferenceCode", missing.Field)
	})

	t.Run("first empty field in list order is named", func(t *testing.T) {
		c := testClient(t, &mockTransport{})
		require.NoError(t, c.SetReferenceCode("order-1"))
		c.SetCard(testCard())

		_, err := c.Authorize(context.Background(), "10.00", false)
		var missing *MissingFieldError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, "billTo", missing.Field)
	})

	t.Run("no request is sent on validation failure", func(t *testing.T) {
		transport := &mockTransport{replies: []*models.TransactionReply{okReply("r1")}}
		c := testClient(t, transport)

		_, err := c.Capture(context.Background(), "req-1", "10.00")
		require.Error(t, err)
		assert.Empty(t, transport.requests)
		assert.Nil(t, c.LastRequest())
	})
}

func TestValidateCardForcesZeroAmount(t *testing.T) {
	transport := &mockTransport{replies: []*models.TransactionReply{okReply("r1")}}
	c := readyClient(t, transport)

	_, err := c.ValidateCard(context.Background())
	require.NoError(t, err)

	req := transport.last()
	require.NotNil(t, req.CCAuthService)
	assert.Nil(t, req.CCCaptureService)
	require.NotNil(t, req.PurchaseTotals)
	assert.Equal(t, "0", req.PurchaseTotals.GrandTotalAmount)
	assert.Equal(t, "USD", req.PurchaseTotals.Currency)
}

func TestAuthorize(t *testing.T) {
	t.Run("auth only", func(t *testing.T) {
		transport := &mockTransport{replies: []*models.TransactionReply{okReply("r1")}}
		c := readyClient(t, transport)

		reply, err := c.Authorize(context.Background(), "49.95", false)
		require.NoError(t, err)
		assert.Equal(t, 100, reply.ReasonCode)

		req := transport.last()
		require.NotNil(t, req.CCAuthService)
		assert.Equal(t, "true", req.CCAuthService.Run)
		assert.Nil(t, req.CCCaptureService)
		assert.Equal(t, "49.95", req.PurchaseTotals.GrandTotalAmount)
		require.NotNil(t, req.Card)
		assert.Equal(t, "4111111111111111", req.Card.AccountNumber)
		assert.Equal(t, "001", req.Card.CardType)
		require.NotNil(t, req.BillTo)
		assert.Equal(t, "Jane", req.BillTo.FirstName)
		assert.Equal(t, "test_merchant", req.MerchantID)
		assert.Equal(t, "order-1001", req.MerchantReferenceCode)
		assert.Equal(t, clientLibrary, req.ClientLibrary)
		assert.NotEmpty(t, req.ClientEnvironment)
	})

	t.Run("auto-capture adds exactly one more service", func(t *testing.T) {
		transport := &mockTransport{replies: []*models.TransactionReply{okReply("r1")}}
		c := readyClient(t, transport)

		_, err := c.Authorize(context.Background(), "49.95", true)
		require.NoError(t, err)

		req := transport.last()
		require.NotNil(t, req.CCAuthService)
		require.NotNil(t, req.CCCaptureService)
		assert.Empty(t, req.CCCaptureService.AuthRequestID)
		assert.Equal(t, "49.95", req.PurchaseTotals.GrandTotalAmount)
	})
}

func TestReverseAuthorization(t *testing.T) {
	transport := &mockTransport{replies: []*models.TransactionReply{okReply("r2")}}
	c := readyClient(t, transport)

	_, err := c.ReverseAuthorization(context.Background(), "auth-1", "49.95")
	require.NoError(t, err)

	req := transport.last()
	require.NotNil(t, req.CCAuthReversalService)
	assert.Equal(t, "auth-1", req.CCAuthReversalService.AuthRequestID)
	assert.Equal(t, "49.95", req.PurchaseTotals.GrandTotalAmount)
	assert.Nil(t, req.Card)
	assert.Nil(t, req.BillTo)
}

func TestCapture(t *testing.T) {
	transport := &mockTransport{replies: []*models.TransactionReply{okReply("r2")}}
	c := readyClient(t, transport)

	_, err := c.Capture(context.Background(), "auth-1", "49.95")
	require.NoError(t, err)

	req := transport.last()
	require.NotNil(t, req.CCCaptureService)
	assert.Equal(t, "auth-1", req.CCCaptureService.AuthRequestID)
	assert.Nil(t, req.CCAuthService)
}

func TestVoidSkipsPreflight(t *testing.T) {
	// Matches the gateway contract: void needs only the request ID, so
	// an otherwise-unconfigured client may send it.
	transport := &mockTransport{replies: []*models.TransactionReply{okReply("r3")}}
	c := testClient(t, transport)

	_, err := c.Void(context.Background(), "capture-1")
	require.NoError(t, err)

	req := transport.last()
	require.NotNil(t, req.VoidService)
	assert.Equal(t, "capture-1", req.VoidService.VoidRequestID)
	assert.Nil(t, req.PurchaseTotals)
}

func TestCreateSubscription(t *testing.T) {
	t.Run("fresh card sends card and billing", func(t *testing.T) {
		transport := &mockTransport{replies: []*models.TransactionReply{okReply("r4")}}
		c := readyClient(t, transport)

		_, err := c.CreateSubscription(context.Background(), "", AutoAuthUnspecified)
		require.NoError(t, err)

		req := transport.last()
		require.NotNil(t, req.PaySubscriptionCreateService)
		assert.Empty(t, req.PaySubscriptionCreateService.PaymentRequestID)
		assert.Empty(t, req.PaySubscriptionCreateService.DisableAutoAuth)
		require.NotNil(t, req.RecurringSubscriptionInfo)
		assert.Equal(t, "on-demand", req.RecurringSubscriptionInfo.Frequency)
		assert.NotNil(t, req.Card)
		assert.NotNil(t, req.BillTo)
		assert.Equal(t, "USD", req.PurchaseTotals.Currency)
		assert.Empty(t, req.PurchaseTotals.GrandTotalAmount)
	})

	t.Run("auto-auth tri-state", func(t *testing.T) {
		for _, tc := range []struct {
			mode AutoAuth
			want string
		}{
			{AutoAuthUnspecified, ""},
			{AutoAuthEnabled, "false"},
			{AutoAuthDisabled, "true"},
		} {
			transport := &mockTransport{replies: []*models.TransactionReply{okReply("r4")}}
			c := readyClient(t, transport)

			_, err := c.CreateSubscription(context.Background(), "", tc.mode)
			require.NoError(t, err)
			assert.Equal(t, tc.want, transport.last().PaySubscriptionCreateService.DisableAutoAuth)
		}
	})

	t.Run("prior payment omits card and billing", func(t *testing.T) {
		transport := &mockTransport{replies: []*models.TransactionReply{okReply("r4")}}
		c := testClient(t, transport)
		require.NoError(t, c.SetReferenceCode("order-1001"))
		c.SetCurrencyCode("USD")

		_, err := c.CreateSubscription(context.Background(), "auth-1", AutoAuthDisabled)
		require.NoError(t, err)

		req := transport.last()
		assert.Equal(t, "auth-1", req.PaySubscriptionCreateService.PaymentRequestID)
		// autoAuth only applies to fresh-card setups
		assert.Empty(t, req.PaySubscriptionCreateService.DisableAutoAuth)
		assert.Nil(t, req.Card)
		assert.Nil(t, req.BillTo)
	})

	t.Run("fresh card without stored card fails pre-flight", func(t *testing.T) {
		transport := &mockTransport{replies: []*models.TransactionReply{okReply("r4")}}
		c := testClient(t, transport)
		require.NoError(t, c.SetReferenceCode("order-1001"))
		c.SetCurrencyCode("USD")

		_, err := c.CreateSubscription(context.Background(), "", AutoAuthUnspecified)
		var missing *MissingFieldError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, "card", missing.Field)
		assert.Empty(t, transport.requests)
	})
}

func TestGetSubscription(t *testing.T) {
	transport := &mockTransport{replies: []*models.TransactionReply{okReply("r5")}}
	c := testClient(t, transport)

	_, err := c.GetSubscription(context.Background(), "sub-9")
	require.NoError(t, err)

	req := transport.last()
	require.NotNil(t, req.PaySubscriptionRetrieveService)
	assert.Equal(t, "sub-9", req.RecurringSubscriptionInfo.SubscriptionID)
}

func TestChargeSubscription(t *testing.T) {
	t.Run("auth and capture in one call", func(t *testing.T) {
		transport := &mockTransport{replies: []*models.TransactionReply{okReply("r6")}}
		c := readyClient(t, transport)

		_, err := c.ChargeSubscription(context.Background(), "sub-9", "15.00", false)
		require.NoError(t, err)

		req := transport.last()
		require.NotNil(t, req.CCAuthService)
		require.NotNil(t, req.CCCaptureService)
		assert.Equal(t, "sub-9", req.RecurringSubscriptionInfo.SubscriptionID)
		assert.Equal(t, "15.00", req.PurchaseTotals.GrandTotalAmount)
		assert.Nil(t, req.DecisionManager)
	})

	t.Run("risk screening bypass", func(t *testing.T) {
		transport := &mockTransport{replies: []*models.TransactionReply{okReply("r6")}}
		c := readyClient(t, transport)

		_, err := c.ChargeSubscription(context.Background(), "sub-9", "15.00", true)
		require.NoError(t, err)

		req := transport.last()
		require.NotNil(t, req.DecisionManager)
		assert.Equal(t, "false", req.DecisionManager.Enabled)
	})
}

func TestUpdateSubscription(t *testing.T) {
	transport := &mockTransport{replies: []*models.TransactionReply{okReply("r7")}}
	c := testClient(t, transport)
	require.NoError(t, c.SetReferenceCode("order-1001"))

	_, err := c.UpdateSubscription(context.Background(), "sub-9")
	var missing *MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "billTo", missing.Field)

	c.SetBillTo(testBillTo())
	_, err = c.UpdateSubscription(context.Background(), "sub-9")
	require.NoError(t, err)

	req := transport.last()
	require.NotNil(t, req.PaySubscriptionUpdateService)
	assert.Equal(t, "sub-9", req.RecurringSubscriptionInfo.SubscriptionID)
	require.NotNil(t, req.BillTo)
	assert.Equal(t, "Jane", req.BillTo.FirstName)
}

func TestDeleteSubscription(t *testing.T) {
	transport := &mockTransport{replies: []*models.TransactionReply{okReply("r8")}}
	c := testClient(t, transport)

	_, err := c.DeleteSubscription(context.Background(), "sub-9")
	require.NoError(t, err)

	req := transport.last()
	require.NotNil(t, req.PaySubscriptionDeleteService)
	assert.Equal(t, "sub-9", req.RecurringSubscriptionInfo.SubscriptionID)
}

func TestMerchantDefinedDataOnlyWhenSet(t *testing.T) {
	transport := &mockTransport{replies: []*models.TransactionReply{okReply("r1")}}
	c := readyClient(t, transport)

	_, err := c.Void(context.Background(), "req-1")
	require.NoError(t, err)
	assert.Nil(t, transport.last().MerchantDefinedData)

	c.SetMerchantDefinedFields(map[int]string{2: "gift"})
	_, err = c.Void(context.Background(), "req-1")
	require.NoError(t, err)
	require.NotNil(t, transport.last().MerchantDefinedData)
	assert.Equal(t, "gift", transport.last().MerchantDefinedData.Fields[2])
}

func TestLastRequestAndReply(t *testing.T) {
	t.Run("recorded on success", func(t *testing.T) {
		reply := okReply("r1")
		transport := &mockTransport{replies: []*models.TransactionReply{reply}}
		c := readyClient(t, transport)

		got, err := c.Authorize(context.Background(), "10.00", false)
		require.NoError(t, err)
		assert.Same(t, transport.last(), c.LastRequest())
		assert.Same(t, reply, c.LastReply())
		assert.Same(t, got, c.LastReply())
	})

	t.Run("transport failure records request but not reply", func(t *testing.T) {
		transport := &mockTransport{err: errors.New("connection reset")}
		c := readyClient(t, transport)

		_, err := c.Authorize(context.Background(), "10.00", false)
		require.Error(t, err)
		assert.NotNil(t, c.LastRequest())
		assert.Nil(t, c.LastReply())
	})
}

// TestPaymentLifecycle threads the returned request ID through the full
// authorize → capture → credit → void sequence, the way a host
// application would.
func TestPaymentLifecycle(t *testing.T) {
	transport := &mockTransport{replies: []*models.TransactionReply{
		{RequestID: "auth-1", Decision: models.DecisionAccept, ReasonCode: 100,
			CCAuthReply: &models.CCAuthReply{ReasonCode: 100, Amount: "25.00", AuthorizationCode: "831000"}},
		{RequestID: "capture-1", Decision: models.DecisionAccept, ReasonCode: 100,
			CCCaptureReply: &models.CCCaptureReply{ReasonCode: 100, Amount: "25.00"}},
		{RequestID: "credit-1", Decision: models.DecisionAccept, ReasonCode: 100,
			CCCreditReply: &models.CCCreditReply{ReasonCode: 100, Amount: "25.00"}},
		{RequestID: "void-1", Decision: models.DecisionAccept, ReasonCode: 100,
			VoidReply: &models.VoidReply{ReasonCode: 100, Amount: "25.00"}},
	}}
	c := readyClient(t, transport)
	ctx := context.Background()

	auth, err := c.Authorize(ctx, "25.00", false)
	require.NoError(t, err)
	require.NotNil(t, auth.CCAuthReply)

	capture, err := c.Capture(ctx, auth.RequestID, "25.00")
	require.NoError(t, err)
	require.NotNil(t, capture.CCCaptureReply)

	credit, err := c.Credit(ctx, capture.RequestID, "25.00")
	require.NoError(t, err)
	require.NotNil(t, credit.CCCreditReply)

	void, err := c.Void(ctx, credit.RequestID)
	require.NoError(t, err)
	require.NotNil(t, void.VoidReply)

	require.Len(t, transport.requests, 4)
	for _, req := range transport.requests {
		assert.Equal(t, "order-1001", req.MerchantReferenceCode)
	}
	assert.Equal(t, "auth-1", transport.requests[1].CCCaptureService.AuthRequestID)
	assert.Equal(t, "capture-1", transport.requests[2].CCCreditService.CaptureRequestID)
	assert.Equal(t, "credit-1", transport.requests[3].VoidService.VoidRequestID)
}

func TestNewReferenceCode(t *testing.T) {
	a := NewReferenceCode()
	b := NewReferenceCode()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)

	c := testClient(t, &mockTransport{})
	require.NoError(t, c.SetReferenceCode(a))
	assert.Equal(t, a, c.ReferenceCode())
}

func TestReasonDescriptionUsage(t *testing.T) {
	reply := okReply("r1")
	assert.Equal(t, "Successful transaction.", ReasonDescription(reply.ReasonCode))
	assert.Equal(t, "Undefined", ReasonDescription(999))
}
