// Package cryptox wraps argon2id password hashing.
//
// Hashes are stored in the PHC string format
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
//
// with unpadded standard base64 for salt and key, so the parameters travel
// with every hash and can be raised later without invalidating old rows.
package cryptox

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	argonTime    uint32 = 1
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 4
	argonKeyLen  uint32 = 32
	saltLen             = 16
)

// ErrMalformedHash is returned when a stored hash cannot be parsed.
var ErrMalformedHash = errors.New("malformed password hash")

// DeriveKey runs argon2id with the package defaults.
func DeriveKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// HashPassword returns an encoded argon2id hash of password with a fresh
// random salt.
func HashPassword(password string) (string, error) {
	salt := common.GenerateRandByteArray(saltLen)
	if salt == nil {
		return "", errors.New("read random salt")
	}

	pw := []byte(password)
	defer common.WipeByteArray(pw)

	key := DeriveKey(pw, salt)
	b64 := base64.RawStdEncoding

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		b64.EncodeToString(salt), b64.EncodeToString(key)), nil
}

// ComparePassword reports whether password matches the encoded hash.
// The comparison of derived keys is constant-time.
func ComparePassword(encoded, password string) (bool, error) {
	p, salt, key, err := decodeHash(encoded)
	if err != nil {
		return false, err
	}

	pw := []byte(password)
	defer common.WipeByteArray(pw)

	other := argon2.IDKey(pw, salt, p.time, p.memory, p.threads, uint32(len(key)))
	return subtle.ConstantTimeCompare(key, other) == 1, nil
}

var (
	dummyOnce sync.Once
	dummyHash string
)

// DummyCompare burns the same amount of work as ComparePassword. It is used
// when no stored hash exists so lookups of unknown emails take as long as
// lookups of known ones.
func DummyCompare(password string) {
	dummyOnce.Do(func() {
		dummyHash, _ = HashPassword("dummy-password-for-timing")
	})
	_, _ = ComparePassword(dummyHash, password)
}

type params struct {
	memory  uint32
	time    uint32
	threads uint8
}

func decodeHash(encoded string) (params, []byte, []byte, error) {
	var p params

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return p, nil, nil, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return p, nil, nil, ErrMalformedHash
	}
	if version != argon2.Version {
		return p, nil, nil, fmt.Errorf("%w: unsupported version %d", ErrMalformedHash, version)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return p, nil, nil, ErrMalformedHash
	}

	b64 := base64.RawStdEncoding
	salt, err := b64.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, ErrMalformedHash
	}
	key, err := b64.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return p, nil, nil, ErrMalformedHash
	}

	return p, salt, key, nil
}
