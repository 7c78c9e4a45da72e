// Package crypto wraps the block-cipher primitives the NCA formats need
// (AES-ECB, AES-CTR, AES-XTS) as pure functions over byte buffers. Per
// spec.md §6 these are treated as an external collaborator; this
// package is the concrete implementation of that interface.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"fmt"
	"sync"
)

// Cipher cache to avoid recreating AES ciphers for the same key.
var (
	cipherCache   = make(map[[16]byte]cipher.Block)
	cipherCacheMu sync.RWMutex
)

func cachedCipher(key []byte) (cipher.Block, error) {
	if len(key) != 16 {
		return nil, fmt.Errorf("crypto: key must be 16 bytes, got %d", len(key))
	}

	var keyArr [16]byte
	copy(keyArr[:], key)

	cipherCacheMu.RLock()
	block, ok := cipherCache[keyArr]
	cipherCacheMu.RUnlock()
	if ok {
		return block, nil
	}

	cipherCacheMu.Lock()
	defer cipherCacheMu.Unlock()

	if block, ok = cipherCache[keyArr]; ok {
		return block, nil
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	cipherCache[keyArr] = block
	return block, nil
}

// ECBDecrypt decrypts data using AES-ECB.
// Note: ECB is not secure for general purpose, but used in Switch formats.
func ECBDecrypt(data, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	if len(data)%block.BlockSize() != 0 {
		return nil, fmt.Errorf("crypto: ecb data length not a multiple of block size")
	}

	out := make([]byte, len(data))
	for i := 0; i < len(data); i += block.BlockSize() {
		block.Decrypt(out[i:i+block.BlockSize()], data[i:i+block.BlockSize()])
	}
	return out, nil
}

// IVFromUint128 packs (hi, lo) as a 16-byte big-endian integer, the
// shape every AES-CTR IV in this module takes (spec.md §3: "IV for
// AES-CTR ... is (A>>4) | (ctr_upper<<64) as a big-endian 128-bit int").
func IVFromUint128(hi, lo uint64) []byte {
	iv := make([]byte, 16)
	binary.BigEndian.PutUint64(iv[0:8], hi)
	binary.BigEndian.PutUint64(iv[8:16], lo)
	return iv
}

// CTRDecrypt XORs the AES-CTR keystream derived from key and the 16-byte
// big-endian iv into ciphertext, returning the decrypted buffer. The
// length need not be block-aligned; CtrRegion callers always pass
// block-aligned buffers (spec.md §4.3) but this primitive doesn't
// require it.
func CTRDecrypt(key, iv, ciphertext []byte) ([]byte, error) {
	if len(iv) != 16 {
		return nil, fmt.Errorf("crypto: ctr iv must be 16 bytes, got %d", len(iv))
	}
	block, err := cachedCipher(key)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(ciphertext))
	cipher.NewCTR(block, iv).XORKeyStream(out, ciphertext)
	return out, nil
}

// XTSSectorDecrypt decrypts a single sectorSize-byte sector using
// AES-128-XTS with the given 32-byte key (two concatenated 16-byte
// halves) and sector number; the tweak is the sector number packed as a
// 16-byte big-endian integer, encrypted with the key's second half
// (spec.md §6).
func XTSSectorDecrypt(data, key []byte, sector uint64) ([]byte, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("crypto: xts key must be 32 bytes (2x16) for AES-128")
	}

	c1, err := aes.NewCipher(key[:16]) // K1
	if err != nil {
		return nil, err
	}
	c2, err := aes.NewCipher(key[16:]) // K2
	if err != nil {
		return nil, err
	}

	tweak := IVFromUint128(0, sector)
	tweakEnc := make([]byte, 16)
	c2.Encrypt(tweakEnc, tweak)
	tweak = tweakEnc

	out := make([]byte, len(data))
	buf := make([]byte, 16)
	dec := make([]byte, 16)

	for i := 0; i < len(data); i += 16 {
		chunk := data[i : i+16]

		xor16(buf, chunk, tweak)
		c1.Decrypt(dec, buf)
		xor16(out[i:i+16], dec, tweak)

		gfMul2(tweak)
	}
	return out, nil
}

// XTSDecrypt decrypts data (a multiple of sectorSize) as consecutive
// AES-XTS sectors starting at startingSector. The NCA header (spec.md
// §4.4) decrypts with sectorSize=0x200 starting at sector 0.
func XTSDecrypt(data, key []byte, sectorSize int, startingSector uint64) ([]byte, error) {
	if sectorSize <= 0 || len(data)%sectorSize != 0 {
		return nil, fmt.Errorf("crypto: xts data length not a multiple of sector size %d", sectorSize)
	}

	out := make([]byte, len(data))
	sector := startingSector
	for off := 0; off < len(data); off += sectorSize {
		plain, err := XTSSectorDecrypt(data[off:off+sectorSize], key, sector)
		if err != nil {
			return nil, err
		}
		copy(out[off:off+sectorSize], plain)
		sector++
	}
	return out, nil
}

func xor16(dst, a, b []byte) {
	for i := 0; i < 16; i++ {
		dst[i] = a[i] ^ b[i]
	}
}

func gfMul2(tweak []byte) {
	var carry byte
	for i := 0; i < 16; i++ {
		b := tweak[i]
		nextCarry := b >> 7
		tweak[i] = (b << 1) | carry
		carry = nextCarry
	}
	if carry != 0 {
		tweak[0] ^= 0x87
	}
}
