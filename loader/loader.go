// Package loader reads a textual hex-record program image and installs it
// into a vm.Memory, establishing the initial program counter in the
// process. The record format is deliberately small: it is not an object
// file format, just enough to get bytes into simulated memory at known
// addresses (spec.md §6).
package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rv32im/rvsim/vm"
)

// Image is the result of parsing a hex-record file: the bytes to load,
// grouped by the @ directive that introduced them, and the entry point.
type Image struct {
	Segments  []Segment
	EntryAddr uint32
}

// Segment is a contiguous run of bytes destined for one @ address.
type Segment struct {
	Addr uint32
	Data []byte
}

// Load reads path, parses it as a hex-record image, and installs it into m,
// returning the entry point the caller should set as the initial PC.
func Load(path string, m *vm.Memory) (uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open image %s: %w", path, err)
	}
	defer f.Close()

	img, err := Parse(f)
	if err != nil {
		return 0, fmt.Errorf("parse image %s: %w", path, err)
	}

	for _, seg := range img.Segments {
		if err := m.LoadBytes(seg.Addr, seg.Data); err != nil {
			return 0, fmt.Errorf("load image %s: %w", path, err)
		}
	}

	return img.EntryAddr, nil
}

// Parse reads a hex-record image from r. A conforming image must begin with
// an @ directive; one that starts with bare byte tokens has no defined load
// address and is rejected rather than silently defaulting to vm.Base, since
// a typo'd or truncated image should fail loudly instead of landing in the
// wrong place in memory.
func Parse(r io.Reader) (Image, error) {
	scanner := bufio.NewScanner(r)

	var (
		img     Image
		cur     *Segment
		sawAddr bool
		lineNum int
	)

	flush := func() {
		if cur != nil && len(cur.Data) > 0 {
			img.Segments = append(img.Segments, *cur)
		}
		cur = nil
	}

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "@") {
			addr, err := parseAddr(line)
			if err != nil {
				return Image{}, fmt.Errorf("line %d: %w", lineNum, err)
			}
			if !sawAddr {
				img.EntryAddr = addr
			}
			flush()
			cur = &Segment{Addr: addr}
			sawAddr = true
			continue
		}

		if !sawAddr {
			return Image{}, fmt.Errorf("line %d: byte data with no preceding @ address directive", lineNum)
		}

		bytes, err := parseByteTokens(line)
		if err != nil {
			return Image{}, fmt.Errorf("line %d: %w", lineNum, err)
		}
		cur.Data = append(cur.Data, bytes...)
	}
	if err := scanner.Err(); err != nil {
		return Image{}, fmt.Errorf("read image: %w", err)
	}
	flush()

	if !sawAddr {
		return Image{}, fmt.Errorf("image has no @ address directive")
	}
	if len(img.Segments) == 0 {
		return Image{}, fmt.Errorf("image has no byte data")
	}

	for _, seg := range img.Segments {
		end := seg.Addr + uint32(len(seg.Data))
		if !vm.InRange(seg.Addr) || end < seg.Addr || end > vm.Base+vm.MemorySize {
			return Image{}, fmt.Errorf("segment at 0x%08x (%d bytes) falls outside [0x%08x, 0x%08x)",
				seg.Addr, len(seg.Data), vm.Base, vm.Base+vm.MemorySize)
		}
	}

	return img, nil
}

func parseAddr(line string) (uint32, error) {
	hex := strings.TrimPrefix(line, "@")
	hex = strings.TrimSpace(hex)
	if hex == "" {
		return 0, fmt.Errorf("empty @ address directive")
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid @ address %q: %w", hex, err)
	}
	return uint32(v), nil
}

func parseByteTokens(line string) ([]byte, error) {
	fields := strings.Fields(line)
	out := make([]byte, 0, len(fields))
	for _, tok := range fields {
		if len(tok) != 2 {
			return nil, fmt.Errorf("malformed byte token %q (want two hex digits)", tok)
		}
		v, err := strconv.ParseUint(tok, 16, 8)
		if err != nil {
			return nil, fmt.Errorf("malformed byte token %q: %w", tok, err)
		}
		out = append(out, byte(v))
	}
	return out, nil
}
