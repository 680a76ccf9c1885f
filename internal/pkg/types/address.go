package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Address represents an EVM account or contract address in its canonical
// form: "0x" followed by 40 lowercase hex characters. All comparisons across
// the pipeline rely on this normalization, so addresses must be constructed
// through AddressFromString or NormalizeAddress.
type Address string

// addressHexLength is the number of hex characters in an EVM address,
// excluding the "0x" prefix.
const addressHexLength = 40

// AddressFromString validates the input string and returns the canonical
// lowercase Address value.
func AddressFromString(s string) (Address, error) {
	if err := validateAddress(s); err != nil {
		return "", err
	}
	return NormalizeAddress(s), nil
}

// NormalizeAddress lowercases an address string without validating it. Use
// when the input is already known to be a well-formed address (e.g. values
// decoded from chain logs).
func NormalizeAddress(s string) Address {
	return Address(strings.ToLower(s))
}

// validateAddress checks the "0x" prefix, the length and the hex alphabet.
func validateAddress(s string) error {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return fmt.Errorf("address must start with 0x")
	}

	body := s[2:]
	if len(body) != addressHexLength {
		return fmt.Errorf("address must contain %d hex characters, got %d", addressHexLength, len(body))
	}

	for _, c := range body {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return fmt.Errorf("address contains a non-hex character: %q", c)
		}
	}

	return nil
}

// IsZero reports whether the address is the zero address or empty. AMM
// factories return the zero address for pairs that do not exist.
func (a Address) IsZero() bool {
	if a == "" {
		return true
	}
	return strings.Trim(string(a)[2:], "0") == ""
}

// String returns the canonical string form.
func (a Address) String() string {
	return string(a)
}

// MarshalJSON encodes the Address as a JSON string.
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(a))
}

// UnmarshalJSON parses, validates and normalizes a JSON-encoded address.
func (a *Address) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid address string: %w", err)
	}

	if err := validateAddress(s); err != nil {
		return err
	}

	*a = NormalizeAddress(s)
	return nil
}
