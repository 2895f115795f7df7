package summarizer

import "testing"

func TestWrapNoPreview(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"see https://example.com now", "see <https://example.com> now"},
		{"[docs](https://example.com/a)", "[docs](<https://example.com/a>)"},
		{"see <https://example.com>", "see <https://example.com>"},
		{"[docs](<https://example.com/a>)", "[docs](<https://example.com/a>)"},
		{"https://a.io and [b](https://b.io)", "<https://a.io> and [b](<https://b.io>)"},
		{"http://plain.io/path?x=1", "<http://plain.io/path?x=1>"},
		{"просто текст\nв две строки", "просто текст\nв две строки"},
	}
	for _, tc := range cases {
		got := WrapNoPreview(tc.in)
		if got != tc.want {
			t.Fatalf("WrapNoPreview(%q) = %q, ожидали %q", tc.in, got, tc.want)
		}
	}
}

func TestWrapNoPreviewIdempotent(t *testing.T) {
	in := "итоги: https://a.io, [обзор](https://b.io/report) и <https://c.io>"
	once := WrapNoPreview(in)
	twice := WrapNoPreview(once)
	if once != twice {
		t.Fatalf("повторное применение изменило текст: %q -> %q", once, twice)
	}
}
