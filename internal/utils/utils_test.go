package utils

import (
	"testing"
	"time"
)

func TestSafeFileName(t *testing.T) {
	cases := map[string]string{
		"report.PDF":             "report.pdf",
		"../../etc/passwd":       "passwd",
		`C:\docs\My Paper.docx`:  "My_Paper.docx",
		"???.pdf":                "article.pdf",
		"  draft v2 (final).doc": "draft_v2_final.doc",
	}
	for in, want := range cases {
		if got := SafeFileName(in); got != want {
			t.Fatalf("SafeFileName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("abcdef", 4); got != "abc…" {
		t.Fatalf("Truncate = %q", got)
	}
	if got := Truncate("abc", 4); got != "abc" {
		t.Fatalf("Truncate = %q", got)
	}
}

func TestFormatDateTime(t *testing.T) {
	if FormatDateTime(nil) != "-" {
		t.Fatalf("nil time should render as dash")
	}
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	if got := FormatDateTime(&ts); got != "2025-01-02 03:04:05 UTC" {
		t.Fatalf("FormatDateTime = %q", got)
	}
}

func TestFormatEvent(t *testing.T) {
	got := FormatEvent("", "articles", "reject", "article_id", "a1", "reason", "needs sources", "dangling")
	want := `[ARTICLES] action=reject request_id=- article_id=a1 reason="needs sources"`
	if got != want {
		t.Fatalf("FormatEvent = %s, want %s", got, want)
	}
}
