package env

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	ethAddressPattern = regexp.MustCompile("^0x[0-9a-fA-F]{40}$")
	privateKeyPattern = regexp.MustCompile("^(0x)?[0-9a-fA-F]{64}$")
	decimalPattern    = regexp.MustCompile("^[0-9]+$")
)

func IsEmpty(value string) bool {
	return value == ""
}

// Ethereum Address
func IsValidEthAddress(address string) bool {
	return ethAddressPattern.MatchString(address)
}

// ECDSA Private Key, with or without 0x prefix
func IsValidPrivateKey(privateKey string) bool {
	return privateKeyPattern.MatchString(privateKey)
}

// Non-negative base-10 integer, e.g. an amount in wei
func IsValidDecimal(value string) bool {
	return decimalPattern.MatchString(value)
}

// IsValidURL accepts absolute URLs with one of the given schemes (http/https when none given)
func IsValidURL(raw string, schemes ...string) bool {
	if raw == "" {
		return false
	}
	if len(schemes) == 0 {
		schemes = []string{"http", "https"}
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return false
	}
	for _, scheme := range schemes {
		if strings.EqualFold(parsed.Scheme, scheme) {
			return true
		}
	}
	return false
}
