package summarizer

import (
	"regexp"
	"strings"
)

// linkOrURL находит markdown-ссылки, уже обёрнутые URL и голые URL.
// Порядок альтернатив важен: более специфичная форма должна выигрывать.
var linkOrURL = regexp.MustCompile(`\[[^\]\n]*\]\(<?https?://[^\s<>)]+>?\)|<https?://[^\s<>]+>|https?://[^\s<>)]+`)

// WrapNoPreview оборачивает каждый URL в тексте угловыми скобками, чтобы
// чат не разворачивал превью ссылок. Преобразование идемпотентно: уже
// обёрнутый URL не оборачивается повторно.
func WrapNoPreview(text string) string {
	return linkOrURL.ReplaceAllStringFunc(text, func(m string) string {
		switch {
		case strings.HasPrefix(m, "["):
			open := strings.LastIndex(m, "](")
			if open < 0 {
				return m
			}
			url := strings.TrimSuffix(m[open+2:], ")")
			url = strings.TrimPrefix(url, "<")
			url = strings.TrimSuffix(url, ">")
			return m[:open+2] + "<" + url + ">)"
		case strings.HasPrefix(m, "<"):
			return m
		default:
			return "<" + m + ">"
		}
	})
}
