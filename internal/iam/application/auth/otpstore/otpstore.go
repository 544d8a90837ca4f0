// Package otpstore keeps short-lived password reset codes in memory.
package otpstore

import (
	"crypto/rand"
	"math/big"
	"time"

	"github.com/patrickmn/go-cache"
)

type Store struct {
	codes *cache.Cache
}

func New(ttl time.Duration) *Store {
	return &Store{codes: cache.New(ttl, 2*ttl)}
}

func (s *Store) Save(email, code string) {
	s.codes.SetDefault(email, code)
}

func (s *Store) Get(email string) (string, bool) {
	v, found := s.codes.Get(email)
	if !found {
		return "", false
	}
	return v.(string), true
}

func (s *Store) Delete(email string) {
	s.codes.Delete(email)
}

// Generate returns n random decimal digits.
func Generate(n int) (string, error) {
	digits := make([]byte, n)
	for i := range digits {
		d, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + d.Int64())
	}
	return string(digits), nil
}
