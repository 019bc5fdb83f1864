package models

// Chain identifies which network a token was (or will be) minted on.
const (
	ChainEthereum = "ethereum"
	ChainPolygon  = "polygon"
	ChainSolana   = "solana"
)

// NFTAttribute follows the trait_type/value convention understood by
// marketplace metadata viewers.
type NFTAttribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

// NFTMetadata is derived from an AttendanceRecord and its Event. It is
// regenerable and never persisted on its own.
type NFTMetadata struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Image       string         `json:"image"`
	ExternalURL string         `json:"external_url,omitempty"`
	Attributes  []NFTAttribute `json:"attributes"`
}

type MintResult struct {
	MintAddress string `json:"mint_address"`
	TxHash      string `json:"tx_hash"`
	Chain       string `json:"chain"`
}
