package access

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// CredentialVerifier turns a signup credential into its stored form and
// checks a presented credential against it.
type CredentialVerifier interface {
	Seal(credential string) (string, error)
	Verify(stored, presented string) bool
}

// PlaintextVerifier stores credentials as given and compares them literally.
// It carries no protection for stored credentials; BcryptVerifier does.
type PlaintextVerifier struct{}

// Seal returns the credential unchanged.
func (PlaintextVerifier) Seal(credential string) (string, error) {
	return credential, nil
}

// Verify reports whether presented equals stored.
func (PlaintextVerifier) Verify(stored, presented string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) == 1
}

// BcryptVerifier stores bcrypt hashes.
type BcryptVerifier struct {
	Cost int
}

// Seal hashes the credential.
func (v BcryptVerifier) Seal(credential string) (string, error) {
	cost := v.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(credential), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash credential: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether presented matches the stored hash.
func (BcryptVerifier) Verify(stored, presented string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(presented)) == nil
}

// NewCredentialVerifier returns the verifier for a configured scheme name.
func NewCredentialVerifier(scheme string) (CredentialVerifier, error) {
	switch strings.ToLower(strings.TrimSpace(scheme)) {
	case "", "plaintext":
		return PlaintextVerifier{}, nil
	case "bcrypt":
		return BcryptVerifier{}, nil
	}
	return nil, errors.New("unknown credential scheme: " + scheme)
}
