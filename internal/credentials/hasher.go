// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package credentials

import (
	"crypto/rand"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/canonical/project-hub/internal/apperror"
)

const DefaultCost = 10

type HasherInterface interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

// Hasher stores passwords as bcrypt digests.
type Hasher struct {
	cost int

	decoyOnce sync.Once
	decoy     []byte
}

func (h *Hasher) Hash(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", apperror.Validation("Password is too long")
	}
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(digest), nil
}

// Compare reports whether password matches the stored digest, malformed
// digests never match. An empty digest, for an account that does not exist,
// is checked against a decoy so it takes as long as a real mismatch.
func (h *Hasher) Compare(hash, password string) bool {
	if hash == "" {
		_ = bcrypt.CompareHashAndPassword(h.decoyDigest(), []byte(password))
		return false
	}

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// decoyDigest hashes a random secret at the configured cost on first use.
func (h *Hasher) decoyDigest() []byte {
	h.decoyOnce.Do(func() {
		secret := make([]byte, 32)
		_, _ = rand.Read(secret)

		digest, err := bcrypt.GenerateFromPassword(secret, h.cost)
		if err != nil {
			return
		}
		h.decoy = digest
	})

	return h.decoy
}

func NewHasher(cost int) *Hasher {
	h := new(Hasher)

	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	h.cost = cost

	return h
}
