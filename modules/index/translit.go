package index

import (
	"strings"
)

// Есть ли в строке латинские буквы
func HasLatin(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
	}) >= 0
}

// Сочетания букв разбираются раньше одиночных, от длинных к коротким
var translitPairs = []struct {
	lat string
	cyr string
}{
	{"SHCH", "Щ"},
	{"JSCH", "Щ"},
	{"TCH", "Ч"},
	{"KH", "Х"},
	{"ZH", "Ж"},
	{"TS", "Ц"},
	{"CH", "Ч"},
	{"SH", "Ш"},
	{"YO", "Ё"},
	{"JO", "Ё"},
	{"YU", "Ю"},
	{"JU", "Ю"},
	{"YA", "Я"},
	{"JA", "Я"},
	{"EH", "Э"},
	{"IY", "ИЙ"},
	{"A", "А"},
	{"B", "Б"},
	{"V", "В"},
	{"W", "В"},
	{"G", "Г"},
	{"D", "Д"},
	{"E", "Е"},
	{"Z", "З"},
	{"I", "И"},
	{"J", "Й"},
	{"K", "К"},
	{"Q", "К"},
	{"L", "Л"},
	{"M", "М"},
	{"N", "Н"},
	{"O", "О"},
	{"P", "П"},
	{"R", "Р"},
	{"S", "С"},
	{"T", "Т"},
	{"U", "У"},
	{"F", "Ф"},
	{"H", "Х"},
	{"C", "Ц"},
	{"Y", "Ы"},
	{"X", "КС"},
	{"'", "Ь"},
}

// Транслитерация латинской записи фамилии в кириллицу.
// Строка должна быть приведена к верхнему регистру
func Transliterate(s string) string {
	var result strings.Builder
	result.Grow(len(s))

	for i := 0; i < len(s); {
		matched := false
		for _, pair := range translitPairs {
			if strings.HasPrefix(s[i:], pair.lat) {
				result.WriteString(pair.cyr)
				i += len(pair.lat)
				matched = true

				break
			}
		}
		if !matched {
			result.WriteByte(s[i])
			i++
		}
	}

	return result.String()
}
