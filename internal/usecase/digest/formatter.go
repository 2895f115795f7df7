package digest

import (
	"fmt"
	"strings"

	"github.com/tiequan12345/DiscordV2Bot/internal/domain"
)

// Footer — декоративный разделитель, завершающий дайджест.
const Footer = "\n\n\n```\n* . ﹢ ˖ ✦ ¸ . ﹢ ° ¸. ° ˖ ･ ·̩ ｡ ☆ ﾟ ＊ ¸* . ﹢ ˖ ✦ ¸ . ﹢ ° ¸. ° ˖ ･ ·̩ ｡ ☆ ﾟ ＊ ¸* . ﹢ ˖ ✦ ¸ . ﹢ ° ¸. ° ˖ ･ ·̩ ｡ ☆ ﾟ ＊ ¸* . ﹢ ˖ ✦ ¸ . ﹢ ° ¸. ° ˖ ･ ·̩ ｡ ☆ ﾟ ＊ ¸* . ﹢ ˖ ✦ ¸ . ﹢ ° ¸. ° ˖ ･ ·̩ ｡ ☆ ﾟ ＊ ¸* . ﹢ ˖ ✦ ¸ . ﹢ ° ¸. ° ˖ ･ ·̩ ｡ ☆ ﾟ ＊ ¸* . ﹢ ˖ ✦ ¸ . ﹢ ° ¸. ° ˖ ･ ·̩ ｡ ☆ ﾟ ＊\n```"

// BuildConversation собирает переписку в единый текст для суммаризации.
// Сообщения без текста пропускаются.
func BuildConversation(messages []domain.Message) string {
	var builder strings.Builder
	for _, m := range messages {
		if m.Content == "" {
			continue
		}
		fmt.Fprintf(&builder, "[%s] %s: %s\n", m.ChannelName, m.Author, m.Content)
	}
	return builder.String()
}

// BuildHeader формирует заголовок дайджеста: метка профиля, количество
// каналов и сообщений, затем список имён каналов.
func BuildHeader(label string, names []string, msgCount int) string {
	header := fmt.Sprintf("**Aggregated Summary (%s) of %d Channels (%d msgs):**\n", label, len(names), msgCount)
	return header + strings.Join(names, ", ") + "\n\n"
}

// QuoteLines оформляет текст цитатой: каждая непустая строка получает
// префикс "> ", пустые строки отбрасываются.
func QuoteLines(text string) string {
	var quoted []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		quoted = append(quoted, "> "+line)
	}
	return strings.Join(quoted, "\n")
}

func debugReport(label string, t domain.Transcript) string {
	sep := strings.Repeat("=", 50)
	var builder strings.Builder
	fmt.Fprintf(&builder, "%s\nAGGREGATED CONVERSATION (%s) - %d messages\n", sep, label, len(t.Messages))
	builder.WriteString(strings.Join(t.Names, ", ") + "\n")
	builder.WriteString(sep + "\n")
	builder.WriteString(BuildConversation(t.Messages))
	builder.WriteString(sep)
	return builder.String()
}
