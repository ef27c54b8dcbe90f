// Package cidr converts inetnum address ranges into CIDR blocks.
package cidr

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"
	"net/netip"
	"strings"
)

var (
	// ErrFormat is returned for text that is not a "start - end" range.
	ErrFormat = errors.New(`range is not in "10.0.0.0 - 10.255.255.255" format`)
	// ErrConversion is returned when a parsed range cannot be summarized.
	ErrConversion = errors.New("range cannot be summarized")
)

const rangeSep = " - "

// ParseRange splits an inetnum value into its start and end addresses.
func ParseRange(text string) (netip.Addr, netip.Addr, error) {
	parts := strings.Split(text, rangeSep)
	if len(parts) != 2 {
		return netip.Addr{}, netip.Addr{}, fmt.Errorf("%w: %q", ErrFormat, text)
	}

	start, err := netip.ParseAddr(strings.TrimSpace(parts[0]))
	if err != nil {
		return netip.Addr{}, netip.Addr{}, fmt.Errorf("%w: %q: %v", ErrFormat, text, err)
	}
	end, err := netip.ParseAddr(strings.TrimSpace(parts[1]))
	if err != nil {
		return netip.Addr{}, netip.Addr{}, fmt.Errorf("%w: %q: %v", ErrFormat, text, err)
	}
	return start, end, nil
}

// InferBroadcast rewrites an IPv4 end address ending in .254 to .255.
// Assignments stop one address short of their parent allocation, so the
// broadcast address is implied rather than stored.
func InferBroadcast(end netip.Addr) netip.Addr {
	if !end.Is4() {
		return end
	}
	b := end.As4()
	if b[3] != 254 {
		return end
	}
	b[3] = 255
	return netip.AddrFrom4(b)
}

// FromInetnum parses an inetnum value and returns the blocks covering it.
func FromInetnum(text string) ([]netip.Prefix, error) {
	start, end, err := ParseRange(text)
	if err != nil {
		return nil, err
	}
	return Summarize(start, InferBroadcast(end))
}

// Summarize returns the minimal ordered list of IPv4 prefixes whose union is
// exactly [start, end].
func Summarize(start, end netip.Addr) ([]netip.Prefix, error) {
	if !start.Is4() || !end.Is4() {
		return nil, fmt.Errorf("%w: %s - %s: only IPv4 ranges are supported", ErrConversion, start, end)
	}
	if end.Less(start) {
		return nil, fmt.Errorf("%w: start %s is after end %s", ErrConversion, start, end)
	}

	cur, last := uint64(toUint32(start)), uint64(toUint32(end))
	var blocks []netip.Prefix
	for cur <= last {
		// Largest block aligned on cur that does not run past last.
		host := bits.TrailingZeros64(cur)
		if host > 32 {
			host = 32
		}
		if fit := bits.Len64(last-cur+1) - 1; fit < host {
			host = fit
		}
		blocks = append(blocks, netip.PrefixFrom(fromUint32(uint32(cur)), 32-host))
		cur += 1 << host
	}
	return blocks, nil
}

func toUint32(a netip.Addr) uint32 {
	b := a.As4()
	return binary.BigEndian.Uint32(b[:])
}

func fromUint32(v uint32) netip.Addr {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return netip.AddrFrom4(b)
}
