package minting

import (
	"regexp"
	"strings"

	"ms-nft-ticketing/internal/models"
)

var base58Re = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)

// DetectChain guesses the chain from the shape of a wallet address. It
// backs the legacy behavior where the chain was never an explicit
// choice; callers should pass an explicit chain and use this only when
// none was given.
func DetectChain(address string) string {
	if strings.HasPrefix(address, "0x") && len(address) == 42 {
		return models.ChainPolygon
	}
	if base58Re.MatchString(address) {
		return models.ChainSolana
	}
	return ""
}

// ValidChain reports whether the caller-supplied chain hint is one the
// mint capability understands.
func ValidChain(chain string) bool {
	switch chain {
	case models.ChainEthereum, models.ChainPolygon, models.ChainSolana:
		return true
	}
	return false
}
