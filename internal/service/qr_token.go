package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// TokenSource issues opaque tokens handed to the charge point on
// booking approval. Injectable so tests can use fixed values.
type TokenSource interface {
	Token() string
}

type randomTokenSource struct{}

func (randomTokenSource) Token() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}

// RandomTokenSource returns the crypto/rand backed token source.
func RandomTokenSource() TokenSource { return randomTokenSource{} }
