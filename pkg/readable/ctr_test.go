package readable

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"testing"

	"github.com/XtremeTHN/nxroms/pkg/crypto"
)

func encryptCTR(t *testing.T, key, iv, plain []byte) []byte {
	t.Helper()
	block, err := aes.NewCipher(key)
	if err != nil {
		t.Fatalf("aes.NewCipher: %v", err)
	}
	out := make([]byte, len(plain))
	cipher.NewCTR(block, iv).XORKeyStream(out, plain)
	return out
}

func TestCtrRegionDecryptsUnalignedReads(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, 16)
	ctrUpper := uint64(0)
	plain := make([]byte, 0x40)
	for i := range plain {
		plain[i] = byte(i)
	}

	iv := crypto.IVFromUint128(ctrUpper, 0)
	cipherText := encryptCTR(t, key, iv, plain)

	parent := NewMemoryRegion(cipherText)
	region := NewCtrRegion(parent, 0, int64(len(cipherText)), key, ctrUpper)

	// Unaligned read starting mid-block.
	got, err := region.ReadAt(5, 7)
	if err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	if !bytes.Equal(got, plain[5:12]) {
		t.Fatalf("got %x, want %x", got, plain[5:12])
	}
}

func TestCtrRegionIVUsesAbsoluteOffset(t *testing.T) {
	key := bytes.Repeat([]byte{0x11}, 16)
	ctrUpper := uint64(7)
	plain := bytes.Repeat([]byte{0xAB}, 0x20)

	// The region starts at absolute offset 0x100 within a larger parent;
	// the IV must be derived from that absolute offset, not 0.
	absoluteStart := int64(0x100)
	iv := crypto.IVFromUint128(ctrUpper, uint64(absoluteStart>>4))
	cipherText := encryptCTR(t, key, iv, plain)

	full := make([]byte, absoluteStart+int64(len(cipherText)))
	copy(full[absoluteStart:], cipherText)

	parent := NewMemoryRegion(full)
	region := NewCtrRegion(parent, absoluteStart, absoluteStart+int64(len(cipherText)), key, ctrUpper)

	got, err := region.Read(int64(len(plain)))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(got, plain) {
		t.Fatalf("got %x, want %x", got, plain)
	}
}
