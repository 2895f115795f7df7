package prompts

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultPrompt — встроенная инструкция суммаризации, используется когда
// файл инструкции профиля недоступен.
const DefaultPrompt = "Please summarize the following text in bullet point format for a cryptocurrency trader looking for alpha so he can act on important ideas. If the bullet point doesn't have anything to do with defi or crypto, just skip it."

// Load читает инструкцию профиля label из файла <dir>/<label>.txt.
// При ошибке чтения возвращает DefaultPrompt вместе с ошибкой, чтобы
// вызывающий мог залогировать причину и продолжить работу.
func Load(dir, label string) (string, error) {
	path := filepath.Join(dir, label+".txt")
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultPrompt, fmt.Errorf("чтение файла инструкции %s: %w", path, err)
	}
	return string(data), nil
}
