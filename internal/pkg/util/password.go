package util

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	saltLength         = 16
	defaultMemory      = 64 * 1024
	defaultIterations  = 3
	defaultParallelism = 2
	keyLength          = 32
)

var (
	ErrInvalidHash     = errors.New("invalid hash format")
	ErrInvalidPassword = errors.New("invalid password")
)

// Password hashes and verifies account passwords.
type Password interface {
	Hash(password string) (string, error)
	Compare(encodedHash, password string) error
}

type argon2Password struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
}

type Option func(*argon2Password)

// WithCost overrides memory (KiB) and iterations; tests use it to keep hashing fast.
func WithCost(memory, iterations uint32) Option {
	return func(p *argon2Password) {
		p.memory = memory
		p.iterations = iterations
	}
}

// NewArgon2Password returns an argon2id Password. Hashes embed their own
// parameters, so changing the cost never invalidates stored hashes.
func NewArgon2Password(opts ...Option) Password {
	p := &argon2Password{
		memory:      defaultMemory,
		iterations:  defaultIterations,
		parallelism: defaultParallelism,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *argon2Password) Hash(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, p.iterations, p.memory, p.parallelism, keyLength)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.memory, p.iterations, p.parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash))

	return encoded, nil
}

func (p *argon2Password) Compare(encodedHash, password string) error {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return ErrInvalidHash
	}

	var mem, iter uint32
	var par uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &iter, &par); err != nil {
		return fmt.Errorf("failed to parse hash parameters: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return fmt.Errorf("failed to decode salt: %w", err)
	}

	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return fmt.Errorf("failed to decode hash: %w", err)
	}

	computed := argon2.IDKey([]byte(password), salt, iter, mem, par, uint32(len(expected)))
	if subtle.ConstantTimeCompare(expected, computed) != 1 {
		return ErrInvalidPassword
	}
	return nil
}
