package license

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
)

// Entry is one decrypted cache-file record.
type Entry struct {
	ProductCode         uint32
	ProductVersionMajor uint8
	ProductVersionMinor uint8
	LicenseType         uint8
	Timeout             uint32 // unix seconds
	MachineCode         uint32
}

// entryBytes is the fixed plaintext layout the spec's 16-byte ciphertext
// decrypts to.
const entryBytes = 16

func decodeEntry(plain []byte) Entry {
	return Entry{
		ProductCode:         binary.LittleEndian.Uint32(plain[0:4]),
		ProductVersionMajor: plain[4],
		ProductVersionMinor: plain[5],
		LicenseType:         plain[6],
		// plain[7] is padding between the three version/type bytes and
		// the following 4-byte-aligned fields.
		Timeout:     binary.LittleEndian.Uint32(plain[8:12]),
		MachineCode: binary.LittleEndian.Uint32(plain[12:16]),
	}
}

func encodeEntry(e Entry) []byte {
	plain := make([]byte, entryBytes)
	binary.LittleEndian.PutUint32(plain[0:4], e.ProductCode)
	plain[4] = e.ProductVersionMajor
	plain[5] = e.ProductVersionMinor
	plain[6] = e.LicenseType
	binary.LittleEndian.PutUint32(plain[8:12], e.Timeout)
	binary.LittleEndian.PutUint32(plain[12:16], e.MachineCode)
	return plain
}

// Cache is the parsed in-memory form of the cache file: a customer code
// plus one entry per product.
type Cache struct {
	CustomerCode uint32
	Entries      []Entry
}

// ParseCache parses the cache file's text format: a "Customer Code: %u"
// header line, then one hyphen-grouped hex line per product entry.
func ParseCache(text string) (*Cache, error) {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) == 0 {
		return nil, ErrNoLicense
	}

	var customerCode uint32
	if _, err := fmt.Sscanf(lines[0], "Customer Code: %d", &customerCode); err != nil {
		return nil, ErrNoLicense
	}

	c := &Cache{CustomerCode: customerCode}
	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		cipher, err := hex.DecodeString(strings.ReplaceAll(line, "-", ""))
		if err != nil || len(cipher) != entryBytes {
			continue
		}
		if err := decryptEntry(cipher); err != nil {
			continue
		}
		c.Entries = append(c.Entries, decodeEntry(cipher))
	}
	return c, nil
}

// Format re-serializes c back into the cache file's text format, running
// the duplicate-entry cleaner first.
func (c *Cache) Format() (string, error) {
	clean := dedupeEntries(c.Entries)
	var b strings.Builder
	fmt.Fprintf(&b, "Customer Code: %d\n", c.CustomerCode)
	for _, e := range clean {
		plain := encodeEntry(e)
		if err := encryptEntry(plain); err != nil {
			return "", err
		}
		b.WriteString(formatHexGroups(plain))
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// formatHexGroups renders a 16-byte block as eight hyphen-separated
// 4-hex-character quartets.
func formatHexGroups(block []byte) string {
	full := hex.EncodeToString(block)
	groups := make([]string, 0, 8)
	for i := 0; i < len(full); i += 4 {
		groups = append(groups, full[i:i+4])
	}
	return strings.Join(groups, "-")
}

// dedupeEntries collapses multiple entries sharing a ProductCode to the
// last one seen, preserving first-seen order.
func dedupeEntries(entries []Entry) []Entry {
	order := make([]uint32, 0, len(entries))
	byCode := make(map[uint32]Entry, len(entries))
	for _, e := range entries {
		if _, ok := byCode[e.ProductCode]; !ok {
			order = append(order, e.ProductCode)
		}
		byCode[e.ProductCode] = e
	}
	out := make([]Entry, 0, len(order))
	for _, code := range order {
		out = append(out, byCode[code])
	}
	return out
}

// Find returns the entry for productCode, if present.
func (c *Cache) Find(productCode uint32) (Entry, bool) {
	for _, e := range c.Entries {
		if e.ProductCode == productCode {
			return e, true
		}
	}
	return Entry{}, false
}
