package loader

import (
	"strings"
	"testing"

	"github.com/rv32im/rvsim/vm"
)

func TestParseSingleSegment(t *testing.T) {
	src := "@80000000\n13 05 00 00\n73 00 10 00\n"
	img, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if img.EntryAddr != vm.Base {
		t.Fatalf("entry = 0x%08x, want 0x%08x", img.EntryAddr, vm.Base)
	}
	if len(img.Segments) != 1 {
		t.Fatalf("segments = %d, want 1", len(img.Segments))
	}
	want := []byte{0x13, 0x05, 0x00, 0x00, 0x73, 0x00, 0x10, 0x00}
	got := img.Segments[0].Data
	if len(got) != len(want) {
		t.Fatalf("data = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("byte %d = 0x%02x, want 0x%02x", i, got[i], want[i])
		}
	}
}

func TestParseMultipleSegmentsPreservesFirstAddrAsEntry(t *testing.T) {
	src := "@80000010\n01 02\n@80000000\nAA BB\n"
	img, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if img.EntryAddr != vm.Base+0x10 {
		t.Fatalf("entry = 0x%08x, want first @ address 0x%08x", img.EntryAddr, vm.Base+0x10)
	}
	if len(img.Segments) != 2 {
		t.Fatalf("segments = %d, want 2", len(img.Segments))
	}
}

func TestParseBlankLinesIgnored(t *testing.T) {
	src := "@80000000\n\n  \n13 05 00 00\n\n"
	img, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(img.Segments[0].Data) != 4 {
		t.Fatalf("data len = %d, want 4", len(img.Segments[0].Data))
	}
}

func TestParseRejectsMissingLeadingDirective(t *testing.T) {
	src := "13 05 00 00\n"
	if _, err := Parse(strings.NewReader(src)); err == nil {
		t.Fatalf("expected error for image without leading @ directive")
	}
}

func TestParseRejectsMalformedByteToken(t *testing.T) {
	src := "@80000000\nzz\n"
	if _, err := Parse(strings.NewReader(src)); err == nil {
		t.Fatalf("expected error for malformed byte token")
	}
}

func TestParseRejectsOddLengthToken(t *testing.T) {
	src := "@80000000\nA\n"
	if _, err := Parse(strings.NewReader(src)); err == nil {
		t.Fatalf("expected error for odd-length byte token")
	}
}

func TestParseRejectsEmptyImage(t *testing.T) {
	src := "\n\n"
	if _, err := Parse(strings.NewReader(src)); err == nil {
		t.Fatalf("expected error for image with no data at all")
	}
}

func TestParseRejectsOutOfRangeAddress(t *testing.T) {
	src := "@00001000\n13 05 00 00\n"
	if _, err := Parse(strings.NewReader(src)); err == nil {
		t.Fatalf("expected error for @ address below base")
	}
}

func TestParseRejectsSegmentOverrunningMemory(t *testing.T) {
	addr := vm.Base + vm.MemorySize - 2
	src := "@" + hex32(addr) + "\n01 02 03 04\n"
	if _, err := Parse(strings.NewReader(src)); err == nil {
		t.Fatalf("expected error for segment extending past end of memory")
	}
}

func hex32(v uint32) string {
	const digits = "0123456789abcdef"
	b := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		b[i] = digits[v&0xF]
		v >>= 4
	}
	return string(b)
}
