package marketplace

import (
	"fmt"

	"ms-nft-ticketing/internal/models"
)

const openSeaBase = "https://opensea.io/assets"

// OpenSeaURL formats the marketplace link for a minted token. Pure
// string formatting, no network calls.
func OpenSeaURL(mintAddress, chain string) string {
	switch chain {
	case models.ChainEthereum:
		return fmt.Sprintf("%s/ethereum/%s", openSeaBase, mintAddress)
	case models.ChainPolygon:
		return fmt.Sprintf("%s/matic/%s", openSeaBase, mintAddress)
	case models.ChainSolana:
		return fmt.Sprintf("%s/solana/%s", openSeaBase, mintAddress)
	default:
		return ""
	}
}
