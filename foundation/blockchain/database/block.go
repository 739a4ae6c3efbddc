package database

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/karmacoin/node/foundation/blockchain/signature"
)

// Block represents a group of executed transactions chained to the previous
// block and signed by the producer.
type Block struct {
	TimeMS          uint64              `json:"time"` // Unix milliseconds the block was sealed.
	Author          AccountID           `json:"author"`
	Height          uint64              `json:"height"`
	TxHashes        []TxHash            `json:"transactions_hashes"`
	Fees            uint64              `json:"fees"`
	PrevBlockDigest hexutil.Bytes       `json:"prev_block_digest"` // Empty at genesis.
	Signature       signature.Signature `json:"signature"`
	Digest          hexutil.Bytes       `json:"digest"`
}

// SignMessage returns the canonical encoding with the signature and digest
// cleared. The digest is the SHA-256 of exactly these bytes, so computing it
// before or after the signature is set yields the same value.
func (b Block) SignMessage() []byte {
	b.Signature = signature.Signature{}
	b.Digest = nil
	return EncodeBlock(b)
}

// Seal computes the block digest and signs it with the producer keypair.
func (b *Block) Seal(kp signature.Keypair) {
	msg := b.SignMessage()
	digest := signature.Hash(msg)

	b.Digest = digest[:]
	b.Signature = signature.Sign(kp, msg)
}

// VerifySignature checks the block signature and that the digest matches
// the sign message.
func (b Block) VerifySignature() error {
	msg := b.SignMessage()

	digest := signature.Hash(msg)
	if len(b.Digest) != len(digest) || string(b.Digest) != string(digest[:]) {
		return fmt.Errorf("block %d digest mismatch", b.Height)
	}

	return signature.Verify(b.Author[:], msg, b.Signature)
}

// ContainsTx reports whether the block includes the transaction hash.
func (b Block) ContainsTx(hash TxHash) bool {
	for _, h := range b.TxHashes {
		if h == hash {
			return true
		}
	}
	return false
}
