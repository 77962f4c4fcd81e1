package cybersource

// CardTypeCodes maps a card brand name to the CyberSource card type code.
var CardTypeCodes = map[string]string{
	"Visa":             "001",
	"MasterCard":       "002",
	"American Express": "003",
	"Discover":         "004",
	"Diners Club":      "005",
	"Carte Blanche":    "006",
	"JCB":              "007",
}

// normalizeCardType resolves a card type given either as a brand name
// or as a numeric code into the numeric code. Unknown values resolve to
// "" so that no cardType field is sent at all.
func normalizeCardType(t string) string {
	for _, code := range CardTypeCodes {
		if t == code {
			return code
		}
	}
	if code, ok := CardTypeCodes[t]; ok {
		return code
	}
	return ""
}

// DetectCardBrand returns the card brand name based on the card number
// (BIN/IIN), using the same names as CardTypeCodes. Returns "" when the
// number matches no known brand.
func DetectCardBrand(number string) string {
	if len(number) < 1 {
		return ""
	}

	// Visa: starts with 4
	if number[0] == '4' {
		return "Visa"
	}

	if len(number) >= 2 {
		p2 := number[:2]

		// Amex: 34 or 37
		if p2 == "34" || p2 == "37" {
			return "American Express"
		}

		// Diners Club: 36, 38, 300-305
		if p2 == "36" || p2 == "38" {
			return "Diners Club"
		}
		if len(number) >= 3 {
			p3 := number[:3]
			if p3 >= "300" && p3 <= "305" {
				return "Diners Club"
			}
		}

		// Mastercard: 51-55 or 2221-2720
		if p2 >= "51" && p2 <= "55" {
			return "MasterCard"
		}
		if len(number) >= 4 {
			p4 := number[:4]
			if p4 >= "2221" && p4 <= "2720" {
				return "MasterCard"
			}

			// JCB: 3528-3589
			if p4 >= "3528" && p4 <= "3589" {
				return "JCB"
			}
		}

		// Discover: 6011, 622126-622925, 644-649, 65
		if p2 == "65" {
			return "Discover"
		}
		if len(number) >= 3 {
			p3 := number[:3]
			if p3 >= "644" && p3 <= "649" {
				return "Discover"
			}
		}
		if len(number) >= 4 && number[:4] == "6011" {
			return "Discover"
		}
		if len(number) >= 6 {
			p6 := number[:6]
			if p6 >= "622126" && p6 <= "622925" {
				return "Discover"
			}
		}
	}

	return ""
}
