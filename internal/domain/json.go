package domain

import (
	"bytes"
	"encoding/json"
)

// MarshalCanonical — детерминированная сериализация файлов данных:
// стабильный порядок ключей (encoding/json сортирует ключи map),
// два пробела отступа, завершающий перевод строки. Диффы коммитов
// остаются читаемыми, сравнение «изменился ли файл» — побайтовым.
func MarshalCanonical(v any) ([]byte, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// EqualCanonical: true, если обе сериализации совпадают байт в байт
func EqualCanonical(a, b []byte) bool { return bytes.Equal(a, b) }
