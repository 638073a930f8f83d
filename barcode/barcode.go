package barcode

import (
	"errors"
	"fmt"
	"strings"
)

// Result holds the fields decoded from a scanned code.
type Result struct {
	Gtin14     string `json:"gtin14"`               // AI (01)
	ExpiryDate string `json:"expiryDate,omitempty"` // AI (17), normalized to YYYYMM
	LotNumber  string `json:"lotNumber,omitempty"`  // AI (10)
}

var ErrEmpty = errors.New("barcode is empty")

// maximum length of variable-length AIs
var aiLengths = map[string]int{
	"10": 20,
}

// Parse classifies a scanned string and extracts its GTIN:
//   - 15+ digits: a GS1 element string starting with AI (01)
//   - 14 digits: GTIN-14
//   - 13 digits: EAN-13, padded to 14
//   - shorter: EAN-8 and friends, zero-padded to 14
func Parse(code string) (*Result, error) {
	code = strings.TrimSpace(code)
	length := len(code)

	switch {
	case length == 0:
		return nil, ErrEmpty
	case length >= 15:
		if strings.HasPrefix(code, "01") {
			return parseAIString(code)
		}
		return nil, fmt.Errorf("code of %d characters does not start with AI (01)", length)
	case length == 14:
		return &Result{Gtin14: code}, nil
	case length == 13:
		return &Result{Gtin14: "0" + code}, nil
	default:
		return &Result{Gtin14: fmt.Sprintf("%014s", code)}, nil
	}
}

// IsNumeric reports whether code consists only of ASCII digits. Internal
// codes like AMX-001 are not GTINs and are matched verbatim.
func IsNumeric(code string) bool {
	if code == "" {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func parseAIString(code string) (*Result, error) {
	result := &Result{}
	i := 0
	length := len(code)

	for i < length {
		if strings.HasPrefix(code[i:], "01") {
			if i+16 > length {
				return nil, fmt.Errorf("AI (01) data is truncated")
			}
			result.Gtin14 = code[i+2 : i+16]
			i += 16
			continue
		}

		if strings.HasPrefix(code[i:], "17") {
			if i+8 > length {
				return nil, fmt.Errorf("AI (17) data is truncated")
			}
			yymmdd := code[i+2 : i+8]
			result.ExpiryDate = "20" + yymmdd[0:2] + yymmdd[2:4]
			i += 8
			continue
		}

		if strings.HasPrefix(code[i:], "10") {
			dataStart := i + 2
			dataEnd := dataStart
			maxLength := aiLengths["10"]

			for dataEnd < length {
				if dataEnd-dataStart >= maxLength {
					break
				}
				// only split on a following AI that is complete
				remaining := code[dataEnd:]
				if len(remaining) >= 2 {
					next := remaining[:2]
					if next == "01" && len(remaining) >= 16 {
						break
					}
					if next == "17" && len(remaining) >= 8 {
						break
					}
				}
				dataEnd++
			}

			result.LotNumber = code[dataStart:dataEnd]
			i = dataEnd
			continue
		}

		i++
	}

	if result.Gtin14 == "" {
		return nil, fmt.Errorf("no AI (01) GTIN found in code")
	}
	return result, nil
}
