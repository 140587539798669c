package domain

import "time"

// Роли операторов
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleViewer:
		return true
	}
	return false
}

// Логин защищённой учётки-бутстрапа. Её role/username неизменяемы,
// удалить её нельзя — стор восстанавливает её при каждой загрузке.
const DefaultUsername = "admin"

// Account — учётная запись оператора, как она лежит в data/users.json.
// Credential: либо запись свода (iv:tag:ciphertext, hex), либо legacy-пароль
// открытым текстом (Plaintext=true — наследие ранних деплоев).
type Account struct {
	Username   string    `json:"username"`
	Credential string    `json:"credential,omitempty"`
	Plaintext  bool      `json:"plaintext,omitempty"`
	Role       Role      `json:"role"`
	Email      string    `json:"email,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	IsDefault  bool      `json:"isDefault,omitempty"`
}

// AccountView — то, что уходит наружу (никогда не содержит credential)
type AccountView struct {
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	IsDefault bool      `json:"isDefault"`
}

func (a Account) View() AccountView {
	return AccountView{
		Username:  a.Username,
		Role:      a.Role,
		Email:     a.Email,
		CreatedAt: a.CreatedAt,
		IsDefault: a.IsDefault,
	}
}

// AccountPatch — типизированный патч учётки: nil-поле = «не трогать».
// Приоритет слияния: заданное поле патча всегда перекрывает старое значение,
// незаданное — сохраняет его (см. Merge).
type AccountPatch struct {
	Password *string `json:"password,omitempty"`
	Role     *Role   `json:"role,omitempty"`
	Email    *string `json:"email,omitempty"`
}

func (p AccountPatch) Empty() bool {
	return p.Password == nil && p.Role == nil && p.Email == nil
}

// Merge применяет патч к копии учётки. Пароль здесь не трогаем —
// его шифрует стор (ему нужен свод).
func (p AccountPatch) Merge(a Account) Account {
	if p.Role != nil {
		a.Role = *p.Role
	}
	if p.Email != nil {
		a.Email = *p.Email
	}
	return a
}

// AuthUser — аутентифицированный оператор текущего запроса
type AuthUser struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Item — элемент коллекции (products/gallery/hero). Формы элементов
// разнородны и принадлежат фронтенду; сервер трактует их как документы
// с обязательным строковым "id" и метками времени.
type Item map[string]any

func (it Item) ID() string {
	s, _ := it["id"].(string)
	return s
}

// ContentDoc — единый свободный документ data/content.json,
// заменяется целиком (shallow overlay, last-write-wins).
type ContentDoc map[string]any

// Overlay возвращает новый документ: поля патча поверх старых.
// Слияние неглубокое — вложенные объекты заменяются целиком.
func (d ContentDoc) Overlay(patch map[string]any) ContentDoc {
	out := make(ContentDoc, len(d)+len(patch))
	for k, v := range d {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}
