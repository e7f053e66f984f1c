package auth

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

const (
	// MinVerifierLength and MaxVerifierLength bound a code verifier (RFC 7636 4.1).
	MinVerifierLength = 43
	MaxVerifierLength = 128

	// ChallengeMethodPlain sends the verifier itself as the challenge.
	ChallengeMethodPlain = "plain"

	verifierAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-._~"
)

// PKCEGenerator defines how code verifiers and challenges are produced.
type PKCEGenerator interface {
	GenerateCodeVerifier(length int) (string, error)
	GenerateCodeChallenge(verifier string) (string, error)
}

// plainPKCE implements PKCEGenerator with the "plain" challenge method.
type plainPKCE struct {
	random io.Reader
}

// NewPKCEGenerator returns a PKCEGenerator backed by crypto/rand.
func NewPKCEGenerator() PKCEGenerator {
	return &plainPKCE{random: rand.Reader}
}

// GenerateCodeVerifier draws length characters uniformly from the unreserved
// URI alphabet.
func (p *plainPKCE) GenerateCodeVerifier(length int) (string, error) {
	if length < MinVerifierLength || length > MaxVerifierLength {
		return "", fmt.Errorf("code verifier length must be between %d and %d, got %d",
			MinVerifierLength, MaxVerifierLength, length)
	}

	max := big.NewInt(int64(len(verifierAlphabet)))
	verifier := make([]byte, length)
	for i := range verifier {
		n, err := rand.Int(p.random, max)
		if err != nil {
			return "", fmt.Errorf("failed to read random source: %w", err)
		}
		verifier[i] = verifierAlphabet[n.Int64()]
	}
	return string(verifier), nil
}

// GenerateCodeChallenge returns the challenge for verifier. With the plain
// method the challenge equals the verifier.
func (p *plainPKCE) GenerateCodeChallenge(verifier string) (string, error) {
	if verifier == "" {
		return "", fmt.Errorf("code verifier cannot be empty")
	}
	return verifier, nil
}
