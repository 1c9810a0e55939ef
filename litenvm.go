// package litenvm is the root of the LitenVM module.
//
// The executor lives in lvm1, the program file format in lvmfile and the
// command line tool in lvmcmd.
package litenvm

import (
	"encoding/hex"

	"lukechampine.com/blake3"
)

// Version is reported by the version command.
const Version = "0.3.0"

const (
	// FingerprintSize is the size of a program fingerprint in bytes.
	FingerprintSize = 32
	// DefaultExtension is the file extension used for compiled programs.
	DefaultExtension = ".lvm"
)

// Fingerprint identifies the bytes of an encoded program.
type Fingerprint [FingerprintSize]byte

func (fp Fingerprint) String() string {
	return hex.EncodeToString(fp[:])
}

// Short returns the first 8 bytes of the fingerprint in hex.
func (fp Fingerprint) Short() string {
	return hex.EncodeToString(fp[:8])
}

func (fp Fingerprint) IsZero() bool {
	return fp == (Fingerprint{})
}

// Hash calculates the fingerprint of x.
// If key == nil, then the hash is unkeyed.
func Hash(key *Fingerprint, x []byte) (ret Fingerprint) {
	var k []byte
	if key != nil {
		k = key[:]
	}
	h := blake3.New(FingerprintSize, k)
	h.Write(x)
	h.Sum(ret[:0])
	return ret
}
