package document

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

// Segment length caps. Folder segments get a generous bound; the vendor
// and invoice-number parts of the file name are tighter so the full name
// stays filesystem-friendly.
const (
	maxSegmentLen       = 60
	maxVendorSegmentLen = 30
	maxNumberSegmentLen = 20
)

var (
	nonNameChars     = regexp.MustCompile(`[^a-z0-9_\-.]+`)
	repeatSeparators = regexp.MustCompile(`[_\-.]{2,}`)
	whitespace       = regexp.MustCompile(`\s+`)
)

// SanitizeSegment turns an arbitrary string into a single safe path
// segment: diacritics stripped, lowercased, whitespace collapsed to
// underscores, everything outside [a-z0-9_-.] removed, separator runs
// collapsed, and any traversal sequence eliminated.
func SanitizeSegment(s string, maxLen int) string {
	s = removeDiacritics(strings.TrimSpace(s))
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = whitespace.ReplaceAllString(s, "_")
	s = nonNameChars.ReplaceAllString(s, "")
	for strings.Contains(s, "..") {
		s = strings.ReplaceAll(s, "..", ".")
	}
	s = repeatSeparators.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_-.")
	if maxLen > 0 && len(s) > maxLen {
		s = strings.Trim(s[:maxLen], "_-.")
	}
	return s
}

// segmentOr sanitizes s and substitutes a fallback when nothing survives
func segmentOr(s string, maxLen int, fallback string) string {
	if out := SanitizeSegment(s, maxLen); out != "" {
		return out
	}
	return fallback
}

// BuildFolderPath composes the deterministic storage folder:
//
//	{fiscal_year}/{project}-{name}/{grant}-{donor}/{vendor}/{doc_type}
//
// Documents without a project or grant fall under "noproject" and
// "nogrant" so every document has a stable home.
func BuildFolderPath(cls Classification, docType DocType, projectName string) string {
	project := "noproject"
	if cls.ProjectCode != "" {
		project = segmentOr(cls.ProjectCode+"-"+projectName, maxSegmentLen, "noproject")
	}

	grant := "nogrant"
	if cls.GrantCode != "" {
		donor := cls.Donor
		if donor == "" {
			donor = "NoGrant"
		}
		grant = segmentOr(cls.GrantCode+"-"+donor, maxSegmentLen, "nogrant")
	}

	return path.Join(
		segmentOr(cls.FiscalYear, maxSegmentLen, "unknown_fy"),
		project,
		grant,
		segmentOr(cls.VendorCanonical, maxSegmentLen, "unknown_vendor"),
		segmentOr(docType.String(), maxSegmentLen, "other"),
	)
}

// BuildFileName composes the deterministic file name:
//
//	{date}__{vendor}__{number}__{project}__{grant}__{amount}{ccy}__{status}.{ext}
//
// The status baked into the name is the one the document was filed
// with; later transitions update the ledger, not the name.
func BuildFileName(rec *ParsedRecord, cls Classification, status Status) string {
	date := "undated"
	if rec.Dates.IssueDate != nil {
		date = rec.Dates.IssueDate.Format("2006-01-02")
	}

	amount := fmt.Sprintf("%s%s", rec.Totals.GrandTotal.Truncate(0).String(), rec.Currency)

	parts := []string{
		date,
		segmentOr(cls.VendorCanonical, maxVendorSegmentLen, "unknown_vendor"),
		segmentOr(cls.InvoiceNumber, maxNumberSegmentLen, "nonumber"),
		segmentOr(cls.ProjectCode, maxNumberSegmentLen, "noproject"),
		segmentOr(cls.GrantCode, maxNumberSegmentLen, "nogrant"),
		SanitizeSegment(amount, maxSegmentLen),
		status.String(),
	}

	return strings.Join(parts, "__") + "." + fileExtension(rec.FileName)
}

// fileExtension extracts a sanitized extension from the original file
// name, defaulting to pdf
func fileExtension(name string) string {
	ext := strings.TrimPrefix(path.Ext(name), ".")
	ext = SanitizeSegment(ext, 8)
	if ext == "" {
		return "pdf"
	}
	return ext
}
