// AngelaMos | 2026
// security.go

package core

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/qhub-dev/qhub/internal/config"
)

const dummyPassword = "dummy_password_for_timing_attack_prevention"

// Stored hashes may carry costs up to costHeadroom times the configured
// ones (or the floors below, whichever is larger). Anything above is
// treated as corrupt rather than computed.
const (
	costHeadroom  = 4
	memoryFloor   = 64 * 1024
	timeFloor     = 4
	maxHashLength = 1024
)

type argonParams struct {
	memory  uint32
	time    uint32
	threads uint8
	keyLen  uint32
}

// PasswordHasher hashes and verifies passwords with argon2id. Its cost
// parameters are fixed at construction.
type PasswordHasher struct {
	params    argonParams
	saltLen   uint32
	dummyHash string
}

func NewPasswordHasher(cfg config.HashingConfig) (*PasswordHasher, error) {
	h := &PasswordHasher{
		params: argonParams{
			memory:  cfg.Memory,
			time:    cfg.Iterations,
			threads: cfg.Parallelism,
			keyLen:  cfg.KeyLength,
		},
		saltLen: cfg.SaltLength,
	}

	dummy, err := h.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("generate dummy hash: %w", err)
	}
	h.dummyHash = dummy

	return h, nil
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	salt := make([]byte, h.saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w: %w", ErrHashing, err)
	}

	hash := argon2.IDKey(
		[]byte(password),
		salt,
		h.params.time,
		h.params.memory,
		h.params.threads,
		h.params.keyLen,
	)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.memory,
		h.params.time,
		h.params.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// Verify recomputes the hash with the parameters embedded in encodedHash,
// not the hasher's current ones, so older hashes keep verifying.
func (h *PasswordHasher) Verify(password, encodedHash string) (bool, error) {
	params, salt, hash, err := h.decodeHash(encodedHash)
	if err != nil {
		return false, err
	}

	otherHash := argon2.IDKey(
		[]byte(password),
		salt,
		params.time,
		params.memory,
		params.threads,
		params.keyLen,
	)

	return subtle.ConstantTimeCompare(hash, otherHash) == 1, nil
}

// VerifyWithRehash also returns a fresh hash when the stored one was made
// with different parameters. The new hash is empty when no upgrade is due.
func (h *PasswordHasher) VerifyWithRehash(
	password, encodedHash string,
) (bool, string, error) {
	valid, err := h.Verify(password, encodedHash)
	if err != nil || !valid {
		return false, "", err
	}

	if !h.needsRehash(encodedHash) {
		return true, "", nil
	}

	newHash, hashErr := h.Hash(password)
	if hashErr != nil {
		//nolint:nilerr // password verified; rehash failure is non-critical
		return true, "", nil
	}
	return true, newHash, nil
}

// VerifyTimingSafe runs a full verification even when the account has no
// stored hash, so missing accounts cost the same as wrong passwords.
func (h *PasswordHasher) VerifyTimingSafe(
	password string,
	encodedHash *string,
) (bool, string, error) {
	if encodedHash == nil || *encodedHash == "" {
		_, _, _ = h.VerifyWithRehash(password, h.dummyHash) //nolint:errcheck // timing only
		return false, "", nil
	}

	return h.VerifyWithRehash(password, *encodedHash)
}

func (h *PasswordHasher) decodeHash(encodedHash string) (*argonParams, []byte, []byte, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return nil, nil, nil, fmt.Errorf("%w: expected 6 segments", ErrInvalidHashFormat)
	}

	if parts[1] != "argon2id" {
		return nil, nil, nil, fmt.Errorf(
			"%w: unsupported algorithm %q", ErrInvalidHashFormat, parts[1],
		)
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: version: %w", ErrInvalidHashFormat, err)
	}

	if version != argon2.Version {
		return nil, nil, nil, fmt.Errorf(
			"%w: incompatible version %d", ErrInvalidHashFormat, version,
		)
	}

	params := &argonParams{}
	_, err := fmt.Sscanf(
		parts[3],
		"m=%d,t=%d,p=%d",
		&params.memory,
		&params.time,
		&params.threads,
	)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: params: %w", ErrInvalidHashFormat, err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: salt: %w", ErrInvalidHashFormat, err)
	}

	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: hash: %w", ErrInvalidHashFormat, err)
	}

	if len(hash) == 0 || params.time == 0 || params.threads == 0 {
		return nil, nil, nil, fmt.Errorf("%w: empty parameters", ErrInvalidHashFormat)
	}

	if err := h.checkCost(params, len(salt), len(hash)); err != nil {
		return nil, nil, nil, err
	}

	//nolint:gosec // G115: bounded by maxHashLength
	params.keyLen = uint32(len(hash))

	return params, salt, hash, nil
}

func (h *PasswordHasher) needsRehash(encodedHash string) bool {
	params, _, _, err := h.decodeHash(encodedHash)
	if err != nil {
		return true
	}

	return params.memory != h.params.memory ||
		params.time != h.params.time ||
		params.threads != h.params.threads ||
		params.keyLen != h.params.keyLen
}

// HashToken returns the hex sha256 digest under which a session token is
// stored. The raw token is never persisted.
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

func CompareTokenHash(token, hash string) bool {
	return subtle.ConstantTimeCompare([]byte(HashToken(token)), []byte(hash)) == 1
}

func (h *PasswordHasher) checkCost(params *argonParams, saltLen, hashLen int) error {
	maxMemory := costHeadroom * uint64(max(h.params.memory, memoryFloor))
	maxTime := costHeadroom * uint64(max(h.params.time, timeFloor))

	switch {
	case uint64(params.memory) > maxMemory:
		return fmt.Errorf("%w: memory cost %d exceeds %d", ErrInvalidHashFormat, params.memory, maxMemory)
	case uint64(params.time) > maxTime:
		return fmt.Errorf("%w: time cost %d exceeds %d", ErrInvalidHashFormat, params.time, maxTime)
	case saltLen > maxHashLength || hashLen > maxHashLength:
		return fmt.Errorf("%w: salt or hash too long", ErrInvalidHashFormat)
	}
	return nil
}
