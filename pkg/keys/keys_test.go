package keys

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeKeyFile(t *testing.T, content string) string {
	t.Helper()
	tmp := t.TempDir()
	path := filepath.Join(tmp, "prod.keys")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write key file: %v", err)
	}
	return path
}

func TestLoadParsesFlatAndTieredKeys(t *testing.T) {
	path := writeKeyFile(t, `
# comment line, should be skipped
header_key = 000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f

key_area_key_application_00 = 00000000000000000000000000000000
key_area_key_application_01 = 11111111111111111111111111111111
key_area_key_ocean_00 = 22222222222222222222222222222222
key_area_key_system_00 = 33333333333333333333333333333333
`)

	store, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := store.Get("header_key"); len(got) != 32 {
		t.Fatalf("header_key length = %d, want 32", len(got))
	}

	app0 := store.KeyAreaKey(KeyAreaApplication, 0)
	if app0 == nil || app0[0] != 0x00 {
		t.Fatalf("KeyAreaApplication gen 0 = %x", app0)
	}
	app1 := store.KeyAreaKey(KeyAreaApplication, 1)
	if app1 == nil || app1[0] != 0x11 {
		t.Fatalf("KeyAreaApplication gen 1 = %x", app1)
	}
	if got := store.KeyAreaKey(KeyAreaOcean, 0); got == nil || got[0] != 0x22 {
		t.Fatalf("KeyAreaOcean gen 0 = %x", got)
	}
	if got := store.KeyAreaKey(KeyAreaSystem, 0); got == nil || got[0] != 0x33 {
		t.Fatalf("KeyAreaSystem gen 0 = %x", got)
	}
}

func TestKeyAreaKeyOutOfRangeReturnsNil(t *testing.T) {
	path := writeKeyFile(t, "key_area_key_application_00 = 00000000000000000000000000000000\n")
	store, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := store.KeyAreaKey(KeyAreaApplication, 5); got != nil {
		t.Fatalf("expected nil for unprovisioned generation, got %x", got)
	}
	if got := store.KeyAreaKey(KeyAreaApplication, -1); got != nil {
		t.Fatalf("expected nil for negative generation, got %x", got)
	}
}

func TestLoadMissingFileReturnsKeysNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.keys"))
	if !errors.Is(err, ErrKeysNotFound) {
		t.Fatalf("expected ErrKeysNotFound for missing key file, got %v", err)
	}
}

func TestLoadInvalidHexReturnsInvalidKeys(t *testing.T) {
	path := writeKeyFile(t, "header_key = not-hex\n")
	_, err := Load(path)
	if !errors.Is(err, ErrInvalidKeys) {
		t.Fatalf("expected ErrInvalidKeys for invalid hex value, got %v", err)
	}
}
