// Package program loads program sources and checks them without running.
package program

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
)

// DomainProgram prefixes program hashes. The version suffix allows the
// hashing scheme to change without colliding with stored hashes.
const DomainProgram = "bfe/program/v1"

// Load reads a program file. Bytes are returned as-is: every byte is a
// program cell, instruction or not.
func Load(path string) ([]byte, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load program: %w", err)
	}
	return src, nil
}

// Hash returns the content hash of a program.
// Format: hex(SHA256(DomainProgram + 0x00 + src))
func Hash(src []byte) string {
	h := sha256.New()
	h.Write([]byte(DomainProgram))
	h.Write([]byte{0x00})
	h.Write(src)
	return hex.EncodeToString(h.Sum(nil))
}
