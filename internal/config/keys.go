package config

import (
	"encoding/hex"
	"fmt"

	"firestige.xyz/strix/internal/core"
)

// KeyType identifies the HMAC algorithm protecting map-server registration.
type KeyType int

const (
	KeyNone       KeyType = 0
	KeyHMACSHA1   KeyType = 1
	KeyHMACSHA256 KeyType = 2
)

func (k KeyType) String() string {
	switch k {
	case KeyNone:
		return "NONE"
	case KeyHMACSHA1:
		return "HMAC-SHA-1-96"
	case KeyHMACSHA256:
		return "HMAC-SHA-256-128"
	}
	return fmt.Sprintf("key-type-%d", int(k))
}

// KeyLen returns the raw key length in bytes, zero for KeyNone.
func (k KeyType) KeyLen() int {
	switch k {
	case KeyHMACSHA1:
		return 20
	case KeyHMACSHA256:
		return 32
	}
	return 0
}

func ParseKeyType(n int) (KeyType, error) {
	switch k := KeyType(n); k {
	case KeyNone, KeyHMACSHA1, KeyHMACSHA256:
		return k, nil
	}
	return 0, fmt.Errorf("%w: unknown key type %d", core.ErrInvalidKey, n)
}

// DecodeKey decodes hex key material, requiring the exact length of the key
// type. Short, long or non-hex input is rejected outright.
func DecodeKey(k KeyType, hexKey string) ([]byte, error) {
	want := k.KeyLen()
	if want == 0 {
		return nil, fmt.Errorf("%w: key type %s carries no key", core.ErrInvalidKey, k)
	}
	if len(hexKey) != want*2 {
		return nil, fmt.Errorf("%w: key type %s needs %d hex characters, got %d",
			core.ErrInvalidKey, k, want*2, len(hexKey))
	}
	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidKey, err)
	}
	return raw, nil
}
