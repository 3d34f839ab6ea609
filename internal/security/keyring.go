// Package security stores upstream provider credentials in the OS
// keyring, as an alternative to the TOKENCAP_*_API_KEY environment
// variables for operators who don't want provider keys sitting in their
// process environment.
package security

import (
	"github.com/zalando/go-keyring"
)

const serviceName = "tokencap-gateway"

// SetAPIKey stores an upstream provider's API key ("openai", "anthropic")
// in the OS keyring.
func SetAPIKey(provider, key string) error {
	return keyring.Set(serviceName, provider, key)
}

// GetAPIKey retrieves a provider's API key from the OS keyring. It
// returns keyring.ErrNotFound if no key has been stored.
func GetAPIKey(provider string) (string, error) {
	return keyring.Get(serviceName, provider)
}

// DeleteAPIKey removes a provider's stored API key.
func DeleteAPIKey(provider string) error {
	return keyring.Delete(serviceName, provider)
}
