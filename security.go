package cybersource

import (
	"bytes"
	"crypto"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/beevik/etree"
	dsig "github.com/russellhaering/goxmldsig"
)

const (
	wsuNS  = "http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-wssecurity-utility-1.0.xsd"
	wsseNS = "http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-wssecurity-secext-1.0.xsd"
	soapNS = "http://schemas.xmlsoap.org/soap/envelope/"
	dsNS   = "http://www.w3.org/2000/09/xmldsig#"
	cybsNS = "urn:schemas-cybersource-com:transaction-data-" + APIVersion

	passwordTextType = "http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-username-token-profile-1.0#PasswordText"

	algExcC14N   = "http://www.w3.org/2001/10/xml-exc-c14n#"
	algRsaSha256 = "http://www.w3.org/2001/04/xmldsig-more#rsa-sha256"
	algSha256    = "http://www.w3.org/2001/04/xmlenc#sha256"
)

// SecurityToken is the canonical WS-Security UsernameToken content for
// a call: the merchant identifier as username and the transaction
// security key as a PasswordText password. It is independent of any
// SOAP toolkit; secureEnvelope renders it into the wire header.
type SecurityToken struct {
	Username string
	Password string
}

// UsernameToken builds the security token for a merchant credential
// pair.
func UsernameToken(merchantID, apiKey string) SecurityToken {
	return SecurityToken{Username: merchantID, Password: apiKey}
}

// secureEnvelope injects a wsse:Security header carrying the
// UsernameToken into a serialized SOAP envelope. When cert is non-nil
// it additionally inserts an X.509 BinarySecurityToken and signs the
// Body (exclusive C14N, RSA-SHA256).
func secureEnvelope(unsignedXML []byte, token SecurityToken, cert *tls.Certificate) ([]byte, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(unsignedXML); err != nil {
		return nil, fmt.Errorf("parse soap xml: %w", err)
	}

	env := doc.Root()
	if env == nil {
		return nil, fmt.Errorf("soap envelope missing")
	}

	header := findChild(env, "Header")
	body := findChild(env, "Body")
	if body == nil {
		return nil, fmt.Errorf("soap Body not found")
	}
	if header == nil {
		header = etree.NewElement("SOAP-ENV:Header")
		env.InsertChildAt(0, header)
	}

	// wsse:Security with local namespace scoping; mustUnderstand per
	// the Simple Order API security requirements.
	security := etree.NewElement("wsse:Security")
	ensureXMLNS(security, "wsse", wsseNS)
	security.CreateAttr("SOAP-ENV:mustUnderstand", "1")
	header.AddChild(security)

	ut := etree.NewElement("wsse:UsernameToken")
	security.AddChild(ut)

	user := etree.NewElement("wsse:Username")
	user.SetText(token.Username)
	ut.AddChild(user)

	pass := etree.NewElement("wsse:Password")
	pass.CreateAttr("Type", passwordTextType)
	pass.SetText(token.Password)
	ut.AddChild(pass)

	if cert != nil {
		if err := signBody(doc, env, body, security, cert); err != nil {
			return nil, err
		}
	} else {
		doc.Indent(2)
	}

	out := bytes.NewBuffer(nil)
	if _, err := doc.WriteTo(out); err != nil {
		return nil, fmt.Errorf("serialize secured xml: %w", err)
	}
	return out.Bytes(), nil
}

// signBody appends a BinarySecurityToken and a ds:Signature over the
// Body to an already-built wsse:Security element.
func signBody(doc *etree.Document, env, body, security *etree.Element, cert *tls.Certificate) error {
	leaf, err := leafCertificate(cert)
	if err != nil {
		return err
	}
	privKey, ok := cert.PrivateKey.(*rsa.PrivateKey)
	if !ok {
		return fmt.Errorf("private key is not RSA (got %T)", cert.PrivateKey)
	}

	// Declare namespaces on Body and requestMessage so that the
	// goxmldsig exclusive C14N canonicalizer can resolve prefixes
	// (it cannot walk above the canonicalized subtree root).
	ensureXMLNS(body, "SOAP-ENV", soapNS)
	ensureXMLNS(body, "wsu", wsuNS)
	if rm := findChild(body, "requestMessage"); rm != nil {
		ensureXMLNS(rm, "ns1", cybsNS)
	}

	body.RemoveAttr("wsu:Id")
	body.CreateAttr("wsu:Id", "Body")

	bst := etree.NewElement("wsse:BinarySecurityToken")
	ensureXMLNS(bst, "wsu", wsuNS)
	bst.CreateAttr("ValueType", "http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-x509-token-profile-1.0#X509v3")
	bst.CreateAttr("EncodingType", "http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-soap-message-security-1.0#Base64Binary")
	bst.CreateAttr("wsu:Id", "X509Token")
	bst.SetText(base64.StdEncoding.EncodeToString(leaf.Raw))
	security.AddChild(bst)

	sig := etree.NewElement("ds:Signature")
	ensureXMLNS(sig, "ds", dsNS)
	security.AddChild(sig)

	signedInfo := etree.NewElement("ds:SignedInfo")
	ensureXMLNS(signedInfo, "ds", dsNS)
	sig.AddChild(signedInfo)

	cm := etree.NewElement("ds:CanonicalizationMethod")
	cm.CreateAttr("Algorithm", algExcC14N)
	signedInfo.AddChild(cm)

	sm := etree.NewElement("ds:SignatureMethod")
	sm.CreateAttr("Algorithm", algRsaSha256)
	signedInfo.AddChild(sm)

	ref := etree.NewElement("ds:Reference")
	ref.CreateAttr("URI", "#Body")
	signedInfo.AddChild(ref)

	transforms := etree.NewElement("ds:Transforms")
	ref.AddChild(transforms)
	tr := etree.NewElement("ds:Transform")
	tr.CreateAttr("Algorithm", algExcC14N)
	transforms.AddChild(tr)

	dm := etree.NewElement("ds:DigestMethod")
	dm.CreateAttr("Algorithm", algSha256)
	ref.AddChild(dm)

	dv := etree.NewElement("ds:DigestValue")
	ref.AddChild(dv)

	sv := etree.NewElement("ds:SignatureValue")
	sig.AddChild(sv)

	ki := etree.NewElement("ds:KeyInfo")
	sig.AddChild(ki)
	str := etree.NewElement("wsse:SecurityTokenReference")
	ki.AddChild(str)
	tokenRef := etree.NewElement("wsse:Reference")
	tokenRef.CreateAttr("URI", "#X509Token")
	str.AddChild(tokenRef)

	// Namespaces are declared locally; keep the Envelope clean.
	env.RemoveAttr("xmlns:wsse")
	env.RemoveAttr("xmlns:wsu")
	env.RemoveAttr("xmlns:ds")

	// Indent BEFORE computing digest/signature so the canonical form
	// matches the serialized output exactly.
	doc.Indent(2)

	bodyC14N, err := exclusiveC14N(body)
	if err != nil {
		return fmt.Errorf("c14n body: %w", err)
	}
	dv.SetText(base64.StdEncoding.EncodeToString(sha256Sum(bodyC14N)))

	signedInfoC14N, err := exclusiveC14N(signedInfo)
	if err != nil {
		return fmt.Errorf("c14n signedInfo: %w", err)
	}
	signature, err := rsa.SignPKCS1v15(nil, privKey, crypto.SHA256, sha256Sum(signedInfoC14N))
	if err != nil {
		return fmt.Errorf("rsa sign: %w", err)
	}
	sv.SetText(base64.StdEncoding.EncodeToString(signature))

	return nil
}

// ============================================
// XML helpers
// ============================================

func ensureXMLNS(el *etree.Element, prefix, uri string) {
	attrName := "xmlns:" + prefix
	for _, a := range el.Attr {
		if a.Key == attrName {
			return
		}
	}
	el.CreateAttr(attrName, uri)
}

func findChild(parent *etree.Element, localName string) *etree.Element {
	for _, c := range parent.ChildElements() {
		tag := c.Tag
		if tag == localName {
			return c
		}
		if idx := strings.LastIndex(tag, ":"); idx >= 0 {
			if tag[idx+1:] == localName {
				return c
			}
		}
	}
	return nil
}

func leafCertificate(cert *tls.Certificate) (*x509.Certificate, error) {
	if cert.Leaf != nil {
		return cert.Leaf, nil
	}
	if len(cert.Certificate) == 0 {
		return nil, fmt.Errorf("tls cert has no certificate chain")
	}
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return nil, fmt.Errorf("parse leaf: %w", err)
	}
	return leaf, nil
}

func exclusiveC14N(node *etree.Element) ([]byte, error) {
	canon := dsig.MakeC14N10ExclusiveCanonicalizerWithPrefixList("")
	return canon.Canonicalize(node)
}

func sha256Sum(data []byte) []byte {
	h := crypto.SHA256.New()
	h.Write(data)
	return h.Sum(nil)
}
