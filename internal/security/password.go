// Copyright (c) 2026 ToeiRei
// Intelhub - credential and incident record keeping
// This source code is licensed under the MIT license found in the LICENSE file.

package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Algorithm names a password hashing algorithm.
type Algorithm string

const (
	AlgorithmBcrypt   Algorithm = "bcrypt"
	AlgorithmArgon2id Algorithm = "argon2id"
)

// DefaultBcryptCost is the work factor used for new bcrypt hashes.
const DefaultBcryptCost = 12

var (
	// ErrInvalidHash is returned when a hash string cannot be parsed.
	ErrInvalidHash = errors.New("security: invalid or unrecognised hash string")
	// ErrInvalidOption is returned when hasher options are out of range.
	ErrInvalidOption = errors.New("security: invalid hasher option")
)

// Argon2Params are the argon2id cost parameters.
type Argon2Params struct {
	Memory  uint32 // KiB
	Time    uint32
	Threads uint8
	KeyLen  uint32
	SaltLen uint32
}

// Options configures a PasswordHasher.
type Options struct {
	Algorithm  Algorithm
	BcryptCost int
	Argon2     Argon2Params
}

// DefaultOptions returns bcrypt at DefaultBcryptCost with argon2id defaults
// ready for when the algorithm is switched.
func DefaultOptions() Options {
	return Options{
		Algorithm:  AlgorithmBcrypt,
		BcryptCost: DefaultBcryptCost,
		Argon2: Argon2Params{
			Memory:  64 * 1024,
			Time:    3,
			Threads: 2,
			KeyLen:  32,
			SaltLen: 16,
		},
	}
}

// Hasher hashes and verifies passwords.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
	NeedsRehash(hash string) bool
}

// PasswordHasher is the Hasher used by the auth service. It is immutable
// after construction and safe for concurrent use.
type PasswordHasher struct {
	opts Options
}

// NewPasswordHasher validates opts and returns a hasher.
func NewPasswordHasher(opts Options) (*PasswordHasher, error) {
	switch opts.Algorithm {
	case AlgorithmBcrypt:
		if opts.BcryptCost < bcrypt.MinCost || opts.BcryptCost > bcrypt.MaxCost {
			return nil, fmt.Errorf("%w: bcrypt cost %d must be in [%d, %d]",
				ErrInvalidOption, opts.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
		}
	case AlgorithmArgon2id:
		p := opts.Argon2
		if p.Time < 1 || p.Threads < 1 || p.KeyLen < 16 || p.SaltLen < 8 || p.Memory < 8*uint32(p.Threads) {
			return nil, fmt.Errorf("%w: argon2id parameters m=%d t=%d p=%d key=%d salt=%d",
				ErrInvalidOption, p.Memory, p.Time, p.Threads, p.KeyLen, p.SaltLen)
		}
	default:
		return nil, fmt.Errorf("%w: unknown algorithm %q", ErrInvalidOption, opts.Algorithm)
	}
	return &PasswordHasher{opts: opts}, nil
}

// Algorithm returns the algorithm used for new hashes.
func (h *PasswordHasher) Algorithm() Algorithm { return h.opts.Algorithm }

// Hash returns a self-describing salted hash of plaintext. Every call uses
// a fresh salt. bcrypt rejects inputs longer than 72 bytes.
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	if h.opts.Algorithm == AlgorithmArgon2id {
		p := h.opts.Argon2
		salt := make([]byte, p.SaltLen)
		if _, err := rand.Read(salt); err != nil {
			return "", fmt.Errorf("security: read salt: %w", err)
		}
		key := argon2.IDKey([]byte(plaintext), salt, p.Time, p.Memory, p.Threads, p.KeyLen)
		return encodeArgon2id(p, salt, key), nil
	}
	out, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.opts.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("security: bcrypt: %w", err)
	}
	return string(out), nil
}

// Verify reports whether plaintext matches hash. Malformed or unknown
// hashes never match.
func (h *PasswordHasher) Verify(plaintext, hash string) bool {
	alg, ok := DetectAlgorithm(hash)
	if !ok {
		return false
	}
	switch alg {
	case AlgorithmBcrypt:
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
	case AlgorithmArgon2id:
		p, salt, key, err := decodeArgon2id(hash)
		if err != nil || !h.argon2WithinLimits(p) {
			return false
		}
		got := argon2.IDKey([]byte(plaintext), salt, p.Time, p.Memory, p.Threads, uint32(len(key)))
		return subtle.ConstantTimeCompare(got, key) == 1
	}
	return false
}

// argon2CostFactor bounds how far a stored hash's memory and time cost may
// exceed the configured (or default) parameters before Verify refuses it.
const argon2CostFactor = 4

// argon2WithinLimits keeps Verify from running an argon2id computation whose
// cost was taken from an untrusted hash string.
func (h *PasswordHasher) argon2WithinLimits(p Argon2Params) bool {
	base := DefaultOptions().Argon2
	limit := h.opts.Argon2
	limitMem := uint64(max(limit.Memory, base.Memory)) * argon2CostFactor
	limitTime := uint64(max(limit.Time, base.Time)) * argon2CostFactor
	return uint64(p.Memory) <= limitMem && uint64(p.Time) <= limitTime
}

// NeedsRehash reports whether hash was produced with a different algorithm
// or different cost parameters than the current configuration.
func (h *PasswordHasher) NeedsRehash(hash string) bool {
	alg, ok := DetectAlgorithm(hash)
	if !ok || alg != h.opts.Algorithm {
		return true
	}
	if alg == AlgorithmBcrypt {
		cost, err := bcrypt.Cost([]byte(hash))
		return err != nil || cost != h.opts.BcryptCost
	}
	p, salt, key, err := decodeArgon2id(hash)
	if err != nil {
		return true
	}
	want := h.opts.Argon2
	return p.Memory != want.Memory || p.Time != want.Time || p.Threads != want.Threads ||
		uint32(len(key)) != want.KeyLen || uint32(len(salt)) != want.SaltLen
}

// DetectAlgorithm inspects the hash prefix. It does not validate the rest.
func DetectAlgorithm(hash string) (Algorithm, bool) {
	switch {
	case strings.HasPrefix(hash, "$argon2id$"):
		return AlgorithmArgon2id, true
	case strings.HasPrefix(hash, "$2a$"),
		strings.HasPrefix(hash, "$2b$"),
		strings.HasPrefix(hash, "$2y$"):
		return AlgorithmBcrypt, true
	default:
		return "", false
	}
}

func encodeArgon2id(p Argon2Params, salt, key []byte) string {
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Time, p.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key))
}

// decodeArgon2id parses "$argon2id$v=19$m=..,t=..,p=..$salt$key".
func decodeArgon2id(encoded string) (Argon2Params, []byte, []byte, error) {
	var p Argon2Params
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != string(AlgorithmArgon2id) {
		return p, nil, nil, ErrInvalidHash
	}
	if parts[2] != "v="+strconv.Itoa(argon2.Version) {
		return p, nil, nil, fmt.Errorf("%w: unsupported version %q", ErrInvalidHash, parts[2])
	}
	for _, kv := range strings.Split(parts[3], ",") {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return p, nil, nil, fmt.Errorf("%w: bad parameter %q", ErrInvalidHash, kv)
		}
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return p, nil, nil, fmt.Errorf("%w: bad parameter %q", ErrInvalidHash, kv)
		}
		switch k {
		case "m":
			p.Memory = uint32(n)
		case "t":
			p.Time = uint32(n)
		case "p":
			if n > 255 {
				return p, nil, nil, fmt.Errorf("%w: bad parameter %q", ErrInvalidHash, kv)
			}
			p.Threads = uint8(n)
		}
	}
	if p.Memory == 0 || p.Time == 0 || p.Threads == 0 {
		return p, nil, nil, fmt.Errorf("%w: missing m/t/p", ErrInvalidHash)
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, fmt.Errorf("%w: salt: %v", ErrInvalidHash, err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return p, nil, nil, fmt.Errorf("%w: key", ErrInvalidHash)
	}
	p.KeyLen = uint32(len(key))
	p.SaltLen = uint32(len(salt))
	return p, salt, key, nil
}
