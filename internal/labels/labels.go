// Package labels shapes raw vendor descriptions into printable label fields:
// a cleaned description, a name line, a spec line, a compact one-liner for
// small QR labels, and the URL the QR code should encode.
package labels

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

const DefaultShortMaxLen = 42

// Config is fixed at construction. PreferExternal picks the external-system
// URL over the vendor-native one for QR targets when both resolve.
type Config struct {
	PreferExternal      bool
	ExternalURLTemplate string
	ShortMaxLen         int
}

// Fields is everything the deriver produces for one line item.
type Fields struct {
	DescClean   string
	Line1       string
	Line2       string
	Short       string
	PurchaseURL string
	ExternalURL string
	QRURL       string
	QRText      string
}

// Input carries the raw vendor fields label derivation works from.
type Input struct {
	Vendor      string
	SKU         string
	MfgPart     string
	Description string
	PartKey     string
}

type Deriver struct {
	cfg Config
}

func NewDeriver(cfg Config) *Deriver {
	if cfg.ShortMaxLen <= 0 {
		cfg.ShortMaxLen = DefaultShortMaxLen
	}
	return &Deriver{cfg: cfg}
}

var (
	packClauseRE    = regexp.MustCompile(`(?i)\s*,?\s*(packs?|pack|package|pkg|bag|boxes?)\s+of\s+\d+\s*$`)
	eachClauseRE    = regexp.MustCompile(`(?i)\s*,?\s*each\s*$`)
	cadFileRE       = regexp.MustCompile(`(?i)\.(step|stp|dxf|dwg|iges|igs|sldprt|sldasm|pdf)\b`)
	newlineRE       = regexp.MustCompile(`[\r\n]+`)
	unitRE          = regexp.MustCompile(`(?i)(\d)\s+(mm|cm|m|in)\b`)
	dimsByRE        = regexp.MustCompile(`(?i)(\d[^\s]*)\s*[x×]\s*(\d)`)
	outerDiameterRE = regexp.MustCompile(`(?i)\bouter diameter\b`)
	innerDiameterRE = regexp.MustCompile(`(?i)\binner diameter\b`)
	diameterRE      = regexp.MustCompile(`(?i)\bdiameter\b`)
	threadSizeRE    = regexp.MustCompile(`(?i)\bthread size\b`)
	packWordRE      = regexp.MustCompile(`(?i)\b(pack|packs|pkg|package)\b`)
	fractionSpecRE  = regexp.MustCompile(`(\d+\s*/\s*\d+\s*"?\s*-\s*\d+)`)
	spacesRE        = regexp.MustCompile(`\s+`)
)

// keywords that mark a comma clause as spec-worthy even without digits
var specKeywords = []string{
	"od", "id", "thread", "long", "length", "wide", "width",
	"thick", "thickness", "gauge", "size", "pitch", "dia",
}

// CleanDescription strips trailing pack-of-N clauses and a trailing
// ", Each" from a raw description.
func CleanDescription(desc string) string {
	s := strings.TrimSpace(desc)
	s = strings.TrimSpace(packClauseRE.ReplaceAllString(s, ""))
	s = strings.TrimSpace(eachClauseRE.ReplaceAllString(s, ""))
	return s
}

// tightenUnits compacts dimension text so it fits a label line.
// "24 mm" becomes "24mm", "1.693 x 2.586 in" becomes "1.693x2.586in",
// "Outer Diameter" becomes "OD".
func tightenUnits(s string) string {
	s = unitRE.ReplaceAllString(s, "$1$2")
	s = dimsByRE.ReplaceAllString(s, "${1}x$2")
	s = outerDiameterRE.ReplaceAllString(s, "OD")
	s = innerDiameterRE.ReplaceAllString(s, "ID")
	s = diameterRE.ReplaceAllString(s, "Dia")
	s = threadSizeRE.ReplaceAllString(s, "Thread")
	return strings.TrimSpace(spacesRE.ReplaceAllString(s, " "))
}

// Derive computes the full label field set for one line item.
func (d *Deriver) Derive(in Input) Fields {
	descClean, line1, line2 := deriveLines(in.SKU, in.MfgPart, in.Description)

	f := Fields{
		DescClean:   descClean,
		Line1:       line1,
		Line2:       line2,
		Short:       shortLabel(line1, line2, in.SKU, in.MfgPart, d.cfg.ShortMaxLen),
		PurchaseURL: PurchaseURL(in.Vendor, in.SKU),
		ExternalURL: d.externalURL(in.PartKey, in.Vendor, in.SKU),
	}
	f.QRURL = d.pickQRURL(f.PurchaseURL, f.ExternalURL)
	f.QRText = f.QRURL
	return f
}

func deriveLines(sku, mfgPart, description string) (descClean, line1, line2 string) {
	descClean = CleanDescription(description)
	if descClean == "" {
		line1 = strings.TrimSpace(mfgPart)
		if line1 == "" {
			line1 = strings.TrimSpace(sku)
		}
		return descClean, line1, ""
	}

	segments := splitLines(descClean)

	// Multi-line descriptions ending in a CAD filename (sheet-cutting
	// vendors): filename is the name, material plus dimensions the spec.
	if len(segments) >= 2 && cadFileRE.MatchString(segments[len(segments)-1]) {
		material := segments[0]
		specBits := make([]string, 0, len(segments)-2)
		for _, seg := range segments[1 : len(segments)-1] {
			if tightened := tightenUnits(seg); tightened != "" {
				specBits = append(specBits, tightened)
			}
		}
		line2 = material
		if len(specBits) > 0 {
			line2 = strings.Join(append([]string{material}, specBits...), " — ")
		}
		return descClean, segments[len(segments)-1], line2
	}

	// A CAD-filename SKU is a better name than any prose description.
	if s := strings.TrimSpace(sku); s != "" && cadFileRE.MatchString(s) {
		return descClean, s, strings.Join(segments, " — ")
	}

	// Comma-separated spec clauses, the common hardware-vendor shape.
	clauses := splitClauses(descClean)
	line1 = descClean
	if len(clauses) > 0 {
		line1 = clauses[0]
	}

	var specs []string
	if len(clauses) > 1 {
		for _, clause := range clauses[1:] {
			if !clauseIsSpec(clause) || packWordRE.MatchString(clause) {
				continue
			}
			specs = append(specs, tightenUnits(clause))
		}
	}
	if len(specs) == 0 {
		if m := fractionSpecRE.FindString(descClean); m != "" {
			specs = append(specs, tightenUnits(m))
		}
	}
	if len(specs) > 4 {
		specs = specs[:4]
	}
	line2 = strings.Join(specs, " - ")

	if line2 == "" {
		if m := strings.TrimSpace(mfgPart); m != "" {
			line2 = m
		} else if s := strings.TrimSpace(sku); s != "" {
			line2 = s
		}
	}
	return descClean, line1, line2
}

func splitLines(s string) []string {
	var out []string
	for _, seg := range newlineRE.Split(s, -1) {
		if seg = strings.TrimSpace(seg); seg != "" {
			out = append(out, seg)
		}
	}
	return out
}

func splitClauses(s string) []string {
	var out []string
	for _, clause := range strings.Split(s, ",") {
		if clause = strings.TrimSpace(clause); clause != "" {
			out = append(out, clause)
		}
	}
	return out
}

func clauseIsSpec(clause string) bool {
	for _, r := range clause {
		if unicode.IsDigit(r) {
			return true
		}
	}
	lower := strings.ToLower(clause)
	for _, kw := range specKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func shortLabel(line1, line2, sku, mfgPart string, maxLen int) string {
	l1 := strings.TrimSpace(line1)
	l2 := strings.TrimSpace(line2)

	base := l1
	if l2 != "" && (l1 == "" || !strings.Contains(strings.ToLower(l1), strings.ToLower(l2))) {
		if l1 != "" {
			base = l1 + " (" + l2 + ")"
		} else {
			base = l2
		}
	}
	if base == "" {
		base = strings.TrimSpace(mfgPart)
	}
	if base == "" {
		base = strings.TrimSpace(sku)
	}
	base = strings.TrimSpace(spacesRE.ReplaceAllString(base, " "))
	if runes := []rune(base); len(runes) > maxLen {
		if maxLen <= 3 {
			return string(runes[:maxLen])
		}
		base = strings.TrimRight(string(runes[:maxLen-3]), " ") + "..."
	}
	return base
}

// PurchaseURL builds a vendor-native re-order link from the SKU.
// Unrecognized vendors yield an empty string.
func PurchaseURL(vendor, sku string) string {
	v := strings.ToLower(strings.TrimSpace(vendor))
	s := strings.TrimSpace(sku)
	if v == "" || s == "" {
		return ""
	}
	switch v {
	case "digikey":
		return "https://www.digikey.com/en/products?keywords=" + url.QueryEscape(s)
	case "mcmaster":
		return "https://www.mcmaster.com/#" + url.QueryEscape(s)
	case "arduino":
		return "https://store-usa.arduino.cc/search?type=product%2Cquery&options%5Bprefix%5D=last&q=" + url.QueryEscape(s)
	}
	return ""
}

func (d *Deriver) externalURL(partKey, vendor, sku string) string {
	tmpl := strings.TrimSpace(d.cfg.ExternalURLTemplate)
	if tmpl == "" {
		return ""
	}
	r := strings.NewReplacer(
		"{part_key}", partKey,
		"{vendor}", vendor,
		"{sku}", sku,
	)
	return r.Replace(tmpl)
}

func (d *Deriver) pickQRURL(purchaseURL, externalURL string) string {
	p := strings.TrimSpace(purchaseURL)
	e := strings.TrimSpace(externalURL)
	if d.cfg.PreferExternal {
		if e != "" {
			return e
		}
		return p
	}
	if p != "" {
		return p
	}
	return e
}
