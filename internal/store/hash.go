package store

import (
	"crypto/sha256"
	"encoding/hex"
)

// DomainDocument prefixes document hashes.
// Version suffix enables future algorithm migration.
const DomainDocument = "dvscene/document/v1"

// DocumentHash computes SHA-256 of an encoded document with domain
// separation: SHA256(domain + 0x00 + data).
func DocumentHash(data []byte) string {
	h := sha256.New()
	h.Write([]byte(DomainDocument))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
