package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"session-lab/errors"
)

// argon2id cost of the admin password hash. A login is rare enough to afford it.
const (
	Memory      = 64 * 1024 // KiB
	Iterations  = 3
	Parallelism = 2
	SaltLength  = 16
	KeyLength   = 32
)

// adminHash is the decoded form of the hash kept in the admin account configuration:
// $argon2id$v=19$m=65536,t=3,p=2$<salt>$<key>
type adminHash struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
	salt        []byte
	key         []byte
}

func (h adminHash) String() string {
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s", argon2.Version,
		h.memory, h.iterations, h.parallelism,
		base64.RawStdEncoding.EncodeToString(h.salt), base64.RawStdEncoding.EncodeToString(h.key))
}

func (h adminHash) derive(password string, keyLen int) []byte {
	return argon2.IDKey([]byte(password), h.salt, h.iterations, h.memory, h.parallelism, uint32(keyLen))
}

// HashPassword hashes the admin password with a fresh salt, ready for the config file.
func HashPassword(password string) (string, error) {
	h := adminHash{memory: Memory, iterations: Iterations, parallelism: Parallelism, salt: make([]byte, SaltLength)}
	if _, err := rand.Read(h.salt); err != nil {
		return "", err
	}
	h.key = h.derive(password, KeyLength)
	return h.String(), nil
}

// ComparePassword reports whether password matches the configured hash.
// A hash that cannot be decoded is an error, not a mismatch.
func ComparePassword(password, encoded string) (bool, error) {
	h, err := parseAdminHash(encoded)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(h.key, h.derive(password, len(h.key))) == 1, nil
}

func parseAdminHash(encoded string) (adminHash, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return adminHash{}, errors.ErrMalformedHash
	}
	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return adminHash{}, fmt.Errorf("%w: unsupported version %q", errors.ErrMalformedHash, parts[2])
	}
	var h adminHash
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &h.memory, &h.iterations, &h.parallelism); err != nil {
		return adminHash{}, fmt.Errorf("%w: %v", errors.ErrMalformedHash, err)
	}
	var err error
	if h.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return adminHash{}, fmt.Errorf("%w: salt: %v", errors.ErrMalformedHash, err)
	}
	if h.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(h.key) == 0 {
		return adminHash{}, fmt.Errorf("%w: key", errors.ErrMalformedHash)
	}
	return h, nil
}
