package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/sifan077/SnipURL/internal/app/repository"
)

// Codes are 4 random bytes hex-encoded, giving 8 characters and a 2^32 space.
const (
	codeRandomBytes = 4
	maxCodeAttempts = 16
)

// ErrCodeSpaceExhausted is returned when generation keeps colliding. With a
// 2^32 space this practically never happens; the cap just guarantees
// termination.
var ErrCodeSpaceExhausted = errors.New("could not generate a unique short code")

const (
	bloomExpectedCodes     = 1_000_000
	bloomFalsePositiveRate = 0.01
)

// codeAllocator hands out collision-free short codes. A bloom filter seeded
// with every existing code answers most uniqueness probes in memory; the
// store lookup stays authoritative since the filter can report false
// positives (which only cost a regenerate) and the unique index on
// short_code is the final backstop.
type codeAllocator struct {
	mu     sync.Mutex
	filter *bloom.BloomFilter
	links  repository.LinkRepository
}

func newCodeAllocator(links repository.LinkRepository) *codeAllocator {
	return &codeAllocator{
		filter: bloom.NewWithEstimates(bloomExpectedCodes, bloomFalsePositiveRate),
		links:  links,
	}
}

// Seed loads all existing codes into the filter. Called once at startup.
func (a *codeAllocator) Seed(ctx context.Context) error {
	codes, err := a.links.ListCodes(ctx)
	if err != nil {
		return fmt.Errorf("list codes: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for _, code := range codes {
		a.filter.AddString(code)
	}
	return nil
}

// Generate produces a short code that no existing link uses and records it
// in the filter.
func (a *codeAllocator) Generate(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		buf := make([]byte, codeRandomBytes)
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		code := hex.EncodeToString(buf)

		taken, err := a.isTaken(ctx, code)
		if err != nil {
			return "", err
		}
		if taken {
			continue
		}

		a.Remember(code)
		return code, nil
	}
	return "", ErrCodeSpaceExhausted
}

// Claim checks a caller-supplied code and records it in the filter.
func (a *codeAllocator) Claim(ctx context.Context, code string) error {
	taken, err := a.isTaken(ctx, code)
	if err != nil {
		return err
	}
	if taken {
		return ErrCodeTaken
	}
	a.Remember(code)
	return nil
}

// Remember marks a code as used without a store round trip.
func (a *codeAllocator) Remember(code string) {
	a.mu.Lock()
	a.filter.AddString(code)
	a.mu.Unlock()
}

func (a *codeAllocator) isTaken(ctx context.Context, code string) (bool, error) {
	a.mu.Lock()
	maybe := a.filter.TestString(code)
	a.mu.Unlock()

	// The filter has no false negatives for codes seeded or allocated here,
	// so a miss means the code is free. A hit may be a false positive and
	// must be confirmed against the store.
	if !maybe {
		return false, nil
	}

	exists, err := a.links.CodeExists(ctx, code)
	if err != nil {
		return false, fmt.Errorf("check code: %w", err)
	}
	return exists, nil
}
