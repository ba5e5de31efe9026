// Package identity derives the deterministic UIDs that make ingestion
// idempotent. The same receipt bytes always map to the same order and
// line-item UIDs, so a re-run upserts onto existing rows instead of
// inserting duplicates.
package identity

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Namespace UUIDs are fixed forever. Changing either one silently forks
// every derived UID and orphans all existing rows.
var (
	namespaceOrder    = uuid.MustParse("0c9d55f5-6920-4e55-92a9-1a9b7b2a7a1a")
	namespaceLineItem = uuid.MustParse("6b6a3d35-7b8c-4b68-8e6a-3d6cf2c3a2a1")
)

var whitespaceRE = regexp.MustCompile(`\s+`)

// Normalize lowercases, trims, and collapses internal whitespace so that
// cosmetic differences between parses do not change derived UIDs.
func Normalize(s string) string {
	return whitespaceRE.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), " ")
}

// OrderUID derives the stable order identifier from vendor, order reference,
// and the file's content hash.
func OrderUID(vendor, orderRef, fileHash string) string {
	key := strings.Join([]string{
		Normalize(vendor),
		Normalize(orderRef),
		Normalize(fileHash),
	}, "|")
	return uuid.NewSHA1(namespaceOrder, []byte(key)).String()
}

// LineItemKey carries every field that participates in a line item's
// identity. All values are the raw parsed strings; normalization happens
// inside LineItemUID.
type LineItemKey struct {
	Vendor    string
	OrderRef  string
	FileHash  string
	LineIndex int
	SKU       string
	MfgPart   string
	Desc      string
	UnitPrice string
	Ordered   string
}

// LineItemUID derives the stable line-item identifier. LineIndex keeps two
// otherwise-identical lines on the same receipt distinct.
func LineItemUID(k LineItemKey) string {
	key := strings.Join([]string{
		Normalize(k.Vendor),
		Normalize(k.OrderRef),
		Normalize(k.FileHash),
		fmt.Sprintf("%d", k.LineIndex),
		Normalize(k.SKU),
		Normalize(k.MfgPart),
		Normalize(k.Desc),
		Normalize(k.UnitPrice),
		Normalize(k.Ordered),
	}, "|")
	return uuid.NewSHA1(namespaceLineItem, []byte(key)).String()
}

// PartKey names a part across orders: vendor plus the strongest available
// identifier. SKU wins, then manufacturer part number, then a hash of the
// description so free-text-only lines still aggregate.
func PartKey(vendor, sku, mfgPart, description string) string {
	v := Normalize(vendor)
	if s := strings.TrimSpace(sku); s != "" {
		return v + ":" + s
	}
	if m := strings.TrimSpace(mfgPart); m != "" {
		return v + ":" + m
	}
	h := fnv.New64a()
	h.Write([]byte(Normalize(description)))
	return fmt.Sprintf("%s:%x", v, h.Sum64())
}
