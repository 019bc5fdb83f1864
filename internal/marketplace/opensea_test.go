package marketplace_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ms-nft-ticketing/internal/marketplace"
	"ms-nft-ticketing/internal/models"
)

func TestOpenSeaURL(t *testing.T) {
	assert.Equal(t,
		"https://opensea.io/assets/ethereum/0xabc",
		marketplace.OpenSeaURL("0xabc", models.ChainEthereum))
	assert.Equal(t,
		"https://opensea.io/assets/matic/0xabc",
		marketplace.OpenSeaURL("0xabc", models.ChainPolygon))
	assert.Equal(t,
		"https://opensea.io/assets/solana/So11111111111111111111111111111111111111112",
		marketplace.OpenSeaURL("So11111111111111111111111111111111111111112", models.ChainSolana))
	assert.Empty(t, marketplace.OpenSeaURL("0xabc", "unknown"))
	assert.Empty(t, marketplace.OpenSeaURL("0xabc", ""))
}
