package nca

import "testing"

func TestEffectiveKeyGenerationTakesMaxThenDecrements(t *testing.T) {
	cases := []struct {
		old, gen byte
		want     int
	}{
		{old: 0, gen: 0, want: 0},         // 1.0.0: max(0,0)=0, clamped at 0
		{old: 2, gen: 0, want: 1},         // legacy-only field carries 3.0.0
		{old: 0, gen: 5, want: 4},         // new field dominates
		{old: 3, gen: 3, want: 2},         // equal: max=3, -1=2
	}
	for _, c := range cases {
		h := &Header{KeyGenerationOld: KeyGenerationOld(c.old), KeyGeneration: c.gen}
		if got := h.EffectiveKeyGeneration(); got != c.want {
			t.Errorf("old=%d gen=%d: EffectiveKeyGeneration() = %d, want %d", c.old, c.gen, got, c.want)
		}
	}
}

func TestFsEntryForMatchesByIndex(t *testing.T) {
	h := &Header{FsEntries: []FsEntry{
		{Index: 0, StartByte: 0, EndByte: 0x200},
		{Index: 2, StartByte: 0x200, EndByte: 0x400},
	}}

	if _, ok := h.FsEntryFor(FsHeader{Index: 1}); ok {
		t.Fatal("expected no match for index 1 (zero-filtered)")
	}
	entry, ok := h.FsEntryFor(FsHeader{Index: 2})
	if !ok {
		t.Fatal("expected match for index 2")
	}
	if entry.StartByte != 0x200 {
		t.Fatalf("StartByte = 0x%x, want 0x200", entry.StartByte)
	}
}
