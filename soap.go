package cybersource

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/tls"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cdtweb/go-cybersource/models"
)

// requestTimeout is the fixed connect/response timeout applied to every
// call.
const requestTimeout = 30 * time.Second

// soapAction is the single remote operation exposed by the Simple Order
// API.
const soapAction = "runTransaction"

// Transport performs the secured SOAP exchange for a request document.
// The default implementation talks HTTP to the configured endpoint;
// tests substitute their own.
type Transport interface {
	Send(ctx context.Context, req *RequestMessage) (*models.TransactionReply, error)
}

type soapTransport struct {
	httpClient *http.Client
	endpoint   string
	token      SecurityToken
	cert       *tls.Certificate
}

func newSOAPTransport(cfg Config, cert *tls.Certificate) *soapTransport {
	return &soapTransport{
		httpClient: &http.Client{Timeout: requestTimeout},
		endpoint:   cfg.DefaultBaseURL(),
		token:      UsernameToken(cfg.MerchantID, cfg.APIKey),
		cert:       cert,
	}
}

// Send serializes the request into a SOAP envelope, secures it, posts
// it to the gateway, and parses the reply. Failures are surfaced as
// *HTTPError, *SOAPFault, or wrapped transport errors; no retries.
func (t *soapTransport) Send(ctx context.Context, req *RequestMessage) (*models.TransactionReply, error) {
	envelope := soapEnvelope{
		SoapNS: soapNS,
		CybsNS: cybsNS,
		Body:   soapBody{RequestMessage: req},
	}

	xmlData, err := xml.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("cybersource: marshal SOAP request: %w", err)
	}
	payload := []byte(xml.Header + string(xmlData))

	secured, err := secureEnvelope(payload, t.token, t.cert)
	if err != nil {
		return nil, fmt.Errorf("cybersource: secure SOAP request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(secured))
	if err != nil {
		return nil, fmt.Errorf("cybersource: create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "text/xml; charset=utf-8")
	httpReq.Header.Set("SOAPAction", soapAction)
	// Setting Accept-Encoding by hand disables the automatic gzip
	// handling in net/http, so the response is inflated below.
	httpReq.Header.Set("Accept-Encoding", "gzip")

	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("cybersource: send SOAP request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("cybersource: read response: %w", err)
	}

	var soapResp soapResponseEnvelope
	if err := xml.Unmarshal(respBody, &soapResp); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &HTTPError{
				StatusCode: resp.StatusCode,
				Status:     resp.Status,
				Body:       respBody,
				Headers:    resp.Header,
			}
		}
		return nil, fmt.Errorf("cybersource: parse SOAP response (HTTP %d): %w", resp.StatusCode, err)
	}

	if soapResp.Body.Fault != nil {
		return nil, &SOAPFault{
			FaultCode:   soapResp.Body.Fault.FaultCode,
			FaultString: strings.TrimSpace(soapResp.Body.Fault.FaultString),
			RawBody:     respBody,
		}
	}

	if soapResp.Body.ReplyMessage == nil {
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       respBody,
			Headers:    resp.Header,
		}
	}

	return soapResp.Body.ReplyMessage, nil
}

func readResponseBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	if strings.Contains(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip response: %w", err)
		}
		defer gz.Close()
		reader = gz
	}
	return io.ReadAll(reader)
}

// ============================================
// SOAP envelope structures
// ============================================

type soapEnvelope struct {
	XMLName xml.Name `xml:"SOAP-ENV:Envelope"`
	SoapNS  string   `xml:"xmlns:SOAP-ENV,attr"`
	CybsNS  string   `xml:"xmlns:ns1,attr"`
	Header  string   `xml:"SOAP-ENV:Header"`
	Body    soapBody `xml:"SOAP-ENV:Body"`
}

type soapBody struct {
	RequestMessage *RequestMessage `xml:"ns1:requestMessage"`
}

type soapResponseEnvelope struct {
	XMLName xml.Name         `xml:"Envelope"`
	Body    soapResponseBody `xml:"Body"`
}

type soapResponseBody struct {
	ReplyMessage *models.TransactionReply `xml:"replyMessage"`
	Fault        *soapFaultBody           `xml:"Fault"`
}

type soapFaultBody struct {
	FaultCode   string `xml:"faultcode"`
	FaultString string `xml:"faultstring"`
}
