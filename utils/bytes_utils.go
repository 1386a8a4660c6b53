package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

func BytesToHex(bytes []byte) string {
	return hex.EncodeToString(bytes)
}

func HexToBytes(str string) ([]byte, error) {
	bytes, err := hex.DecodeString(str)
	if err != nil {
		return nil, err
	}
	return bytes, nil
}

// IsHexDigest reports whether s is the hex form of a SHA256 digest.
func IsHexDigest(s string) bool {
	bytes, err := HexToBytes(s)
	return err == nil && len(bytes) == sha256.Size
}

// Hash message using SHA256
func SHA256(msg []byte) []byte {
	sum := sha256.Sum256(msg)
	return sum[:]
}
