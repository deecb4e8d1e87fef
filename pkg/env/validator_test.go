package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEthAddress(t *testing.T) {
	assert.True(t, IsValidEthAddress("0xFa1A4998136377DB9b09e24567bd6D17Ad78AaE6"))
	assert.False(t, IsValidEthAddress("Fa1A4998136377DB9b09e24567bd6D17Ad78AaE6"))
	assert.False(t, IsValidEthAddress("0xFa1A"))
	assert.False(t, IsValidEthAddress("0xZZ1A4998136377DB9b09e24567bd6D17Ad78AaE6"))
}

func TestIsValidPrivateKey(t *testing.T) {
	key := "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

	assert.True(t, IsValidPrivateKey(key))
	assert.True(t, IsValidPrivateKey("0x"+key))
	assert.False(t, IsValidPrivateKey(key[:60]))
}

func TestIsValidDecimal(t *testing.T) {
	assert.True(t, IsValidDecimal("100000000000000000"))
	assert.False(t, IsValidDecimal("0.1"))
	assert.False(t, IsValidDecimal(""))
}

func TestIsValidURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		schemes  []string
		expected bool
	}{
		{"https", "https://api.example.com/v1", nil, true},
		{"http with port", "http://localhost:8545", nil, true},
		{"missing scheme", "api.example.com", nil, false},
		{"empty", "", nil, false},
		{"websocket allowed", "wss://rpc.example.com", []string{"ws", "wss"}, true},
		{"websocket not allowed by default", "wss://rpc.example.com", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsValidURL(tt.url, tt.schemes...))
		})
	}
}
