package payments

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const referenceSeparator = "_"

// Reference is the decoded form of the correlation string sent to a gateway
// and echoed back in its webhook.
type Reference struct {
	Kind       TransactionKind
	BusinessID string
	// Nonce is the epoch-millisecond checkout time for kinds that can be
	// paid repeatedly; zero when absent.
	Nonce int64
	// Legacy is set for bare payment ids issued before prefixes existed.
	Legacy bool
}

// NonceTime returns the checkout time carried by the nonce.
func (r Reference) NonceTime() (time.Time, bool) {
	if r.Nonce <= 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(r.Nonce).UTC(), true
}

var referencePrefixes = map[TransactionKind]string{
	KindRentTax:              "rent",
	KindBulkRentTax:          "rentbulk",
	KindTenantRegistration:   "treg",
	KindLandlordRegistration: "lreg",
	KindComplaintFee:         "comp",
	KindListingFee:           "list",
	KindViewingFee:           "view",
}

// Kinds whose business id alone does not identify a single payment attempt.
var noncedKinds = map[TransactionKind]bool{
	KindBulkRentTax:          true,
	KindTenantRegistration:   true,
	KindLandlordRegistration: true,
	KindListingFee:           true,
}

type prefixEntry struct {
	match string // prefix including the separator
	kind  TransactionKind
}

// decodeOrder holds the prefixes longest first.
var decodeOrder = func() []prefixEntry {
	entries := make([]prefixEntry, 0, len(referencePrefixes))
	for kind, p := range referencePrefixes {
		entries = append(entries, prefixEntry{match: p + referenceSeparator, kind: kind})
	}
	sort.Slice(entries, func(i, j int) bool {
		if len(entries[i].match) != len(entries[j].match) {
			return len(entries[i].match) > len(entries[j].match)
		}
		return entries[i].match < entries[j].match
	})
	return entries
}()

// EncodeReference builds the reference for a new checkout attempt.
func EncodeReference(kind TransactionKind, businessID string, now time.Time) string {
	ref := referencePrefixes[kind] + referenceSeparator + businessID
	if noncedKinds[kind] {
		ref += referenceSeparator + strconv.FormatInt(now.UnixMilli(), 10)
	}
	return ref
}

// DecodeReference parses a reference. The separator is part of every
// prefix match, so "rent_" never claims a "rentbulk_" reference. A bare
// UUID is accepted as a legacy rent-tax reference only after every prefix
// has failed. ok is false for anything unrecognized.
func DecodeReference(ref string) (r Reference, ok bool) {
	ref = strings.TrimSpace(ref)
	for _, p := range decodeOrder {
		if !strings.HasPrefix(ref, p.match) {
			continue
		}
		id := ref[len(p.match):]
		var nonce int64
		if noncedKinds[p.kind] {
			id, nonce = splitNonce(id)
		}
		if id == "" {
			return Reference{}, false
		}
		return Reference{Kind: p.kind, BusinessID: id, Nonce: nonce}, true
	}

	if ValidBusinessID(ref) {
		return Reference{Kind: KindRentTax, BusinessID: ref, Legacy: true}, true
	}
	return Reference{}, false
}

// ValidBusinessID reports whether id is in the canonical UUID form every
// business record is keyed by. Braced and urn: forms are refused.
func ValidBusinessID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil && !strings.ContainsAny(id, "{}:")
}

func splitNonce(s string) (string, int64) {
	i := strings.LastIndex(s, referenceSeparator)
	if i <= 0 {
		return s, 0
	}
	n, err := strconv.ParseInt(s[i+1:], 10, 64)
	if err != nil || n <= 0 {
		return s, 0
	}
	return s[:i], n
}

// String re-encodes the reference.
func (r Reference) String() string {
	if r.Legacy {
		return r.BusinessID
	}
	s := referencePrefixes[r.Kind] + referenceSeparator + r.BusinessID
	if r.Nonce > 0 {
		s += referenceSeparator + strconv.FormatInt(r.Nonce, 10)
	}
	return s
}
