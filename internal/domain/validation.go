package domain

import "regexp"

var (
	usernameRe = regexp.MustCompile(`^[a-z0-9][a-z0-9_.-]{2,31}$`)
)

// ValidUsername: 3..32 символа, латиница/цифры/._-, сравнение всегда
// case-insensitive (нормализуем до нижнего регистра на входе).
func ValidUsername(s string) bool {
	return usernameRe.MatchString(s)
}

// ValidPassword: минимум 8 символов; детальные требования к составу
// оставлены админ-UI.
func ValidPassword(s string) bool {
	return len(s) >= 8
}

// ValidCollection: известна ли коллекция батчу
func ValidCollection(name string) bool {
	_, ok := CollectionPaths[name]
	return ok
}
