package cybersource

import (
	"bytes"
	"encoding/xml"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestMessageMarshaling(t *testing.T) {
	req := &RequestMessage{
		MerchantID:            "test_merchant",
		MerchantReferenceCode: "order-1",
		ClientLibrary:         clientLibrary,
		ClientLibraryVersion:  clientLibraryVersion,
		CCAuthService:         &CCAuthService{Run: "true"},
		PurchaseTotals:        &PurchaseTotals{Currency: "USD", GrandTotalAmount: "10.00"},
	}

	out, err := xml.Marshal(soapBody{RequestMessage: req})
	require.NoError(t, err)
	s := string(out)

	assert.Contains(t, s, `<ns1:merchantID>test_merchant</ns1:merchantID>`)
	assert.Contains(t, s, `<ns1:ccAuthService run="true">`)
	assert.Contains(t, s, `<ns1:grandTotalAmount>10.00</ns1:grandTotalAmount>`)

	// Unattached service blocks stay out of the document entirely.
	assert.NotContains(t, s, "ccCaptureService")
	assert.NotContains(t, s, "voidService")
	assert.NotContains(t, s, "merchantDefinedData")
	assert.NotContains(t, s, "recurringSubscriptionInfo")
}

func TestPurchaseTotalsOmitsEmptyAmount(t *testing.T) {
	out, err := xml.Marshal(&PurchaseTotals{Currency: "USD"})
	require.NoError(t, err)
	assert.NotContains(t, string(out), "grandTotalAmount")

	out, err = xml.Marshal(&PurchaseTotals{Currency: "USD", GrandTotalAmount: "0"})
	require.NoError(t, err)
	assert.Contains(t, string(out), `<ns1:grandTotalAmount>0</ns1:grandTotalAmount>`)
}

func TestMerchantDefinedDataOrdering(t *testing.T) {
	mdd := MerchantDefinedData{Fields: map[int]string{10: "ten", 2: "two", 7: "seven"}}
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	err := enc.EncodeElement(&mdd, xml.StartElement{Name: xml.Name{Local: "ns1:merchantDefinedData"}})
	require.NoError(t, err)
	require.NoError(t, enc.Flush())
	out := buf.Bytes()

	want := `<ns1:merchantDefinedData>` +
		`<ns1:mddField id="2">two</ns1:mddField>` +
		`<ns1:mddField id="7">seven</ns1:mddField>` +
		`<ns1:mddField id="10">ten</ns1:mddField>` +
		`</ns1:merchantDefinedData>`
	assert.Equal(t, want, string(out))
}

func TestAutoAuthWireValues(t *testing.T) {
	assert.Equal(t, "", AutoAuthUnspecified.disableAutoAuthValue())
	assert.Equal(t, "false", AutoAuthEnabled.disableAutoAuthValue())
	assert.Equal(t, "true", AutoAuthDisabled.disableAutoAuthValue())
}
