package document

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/invoicefiler/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes unicode and removes combining marks, turning
// "Café" into "Cafe".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// removeDiacritics returns s with all combining marks stripped
func removeDiacritics(s string) string {
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		return s
	}
	return out
}

// Checksum computes the SHA-256 hex digest of the raw document bytes.
// It is a pure function of the bytes: identical bytes always hash to
// the identical checksum.
func Checksum(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// NormalizeVendorName lowercases, strips diacritics and removes every
// non-alphanumeric rune, so "Acmé Corp." and "acme corp" collapse to
// the same key.
func NormalizeVendorName(name string) string {
	lowered := strings.ToLower(removeDiacritics(name))
	var b strings.Builder
	for _, r := range lowered {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SyntheticInvoiceNumber derives a deterministic placeholder for
// documents that carry no invoice number. The same vendor, issue date
// and amount always yield the same number, so fingerprinting and file
// naming stay stable across reprocessing.
func SyntheticInvoiceNumber(vendorName string, issueDate *time.Time, grandTotal decimal.Decimal) string {
	dateStr := "nodate"
	if issueDate != nil {
		dateStr = issueDate.Format("20060102")
	}
	seed := fmt.Sprintf("%s|%s|%s", NormalizeVendorName(vendorName), dateStr, grandTotal.StringFixed(2))
	sum := sha256.Sum256([]byte(seed))
	return "SYN-" + strings.ToUpper(hex.EncodeToString(sum[:4]))
}

// Fingerprint computes the semantic fingerprint of a document: a hash
// over the canonical concatenation of normalized vendor name, invoice
// number (or a synthetic placeholder), ISO issue date, grand total
// rounded to two decimals and currency. Two scans of the same invoice
// produce the same fingerprint even when the bytes differ.
func Fingerprint(vendorName, invoiceNumber string, issueDate *time.Time, grandTotal decimal.Decimal, currency valueobject.Currency) string {
	if invoiceNumber == "" {
		invoiceNumber = SyntheticInvoiceNumber(vendorName, issueDate, grandTotal)
	}
	dateStr := "nodate"
	if issueDate != nil {
		dateStr = issueDate.Format("2006-01-02")
	}
	canonical := strings.Join([]string{
		NormalizeVendorName(vendorName),
		NormalizeVendorName(invoiceNumber),
		dateStr,
		grandTotal.Round(2).StringFixed(2),
		string(currency),
	}, "|")
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}
