package batch

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/GiridharSalana/ShreeAdvaya/internal/accounts"
	"github.com/GiridharSalana/ShreeAdvaya/internal/domain"
)

// Applied — результат мутатора: каноничные байты нового снапшота плюс
// признак, изменился ли он. Неизменившиеся файлы в коммит не попадают.
type Applied struct {
	Content []byte
	Result  domain.OpResult
	Changed bool
}

// Mutator — чистая функция (snapshot, changeSet) -> newSnapshot для одной
// коллекции. I/O здесь нет: загрузку и запись делает оркестратор.
type Mutator interface {
	Apply(raw []byte, cs domain.ChangeSet, actor domain.AuthUser) (Applied, error)
}

// ItemMutator — общий алгоритм create/update/delete для id-коллекций
// (products/gallery/hero).
type ItemMutator struct {
	Now   func() time.Time
	NewID func(time.Time) string
}

func NewItemMutator() *ItemMutator {
	return &ItemMutator{Now: time.Now, NewID: NewID}
}

func (m *ItemMutator) Apply(raw []byte, cs domain.ChangeSet, _ domain.AuthUser) (Applied, error) {
	var items []domain.Item
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &items); err != nil {
			return Applied{}, fmt.Errorf("collection snapshot is corrupt: %w", err)
		}
	}
	before, err := domain.MarshalCanonical(itemsOrEmpty(items))
	if err != nil {
		return Applied{}, err
	}

	var res domain.OpResult
	now := m.Now().UTC()
	stamp := now.Format(time.RFC3339)

	// updates: по id; протухший id — мягкий отказ, молча пропускаем
	for _, p := range cs.Update {
		if domain.ParseItemID(p.ID).Draft {
			res.Skipped++
			continue
		}
		idx := indexByID(items, p.ID)
		if idx < 0 {
			res.Skipped++
			continue
		}
		it := items[idx]
		for k, v := range p.Fields {
			it[k] = v
		}
		// id и createdAt патчем не перебиваются
		it["id"] = p.ID
		if created, ok := items[idx]["createdAt"]; ok {
			it["createdAt"] = created
		}
		it["updatedAt"] = stamp
		items[idx] = it
		res.Updated++
	}

	// creates: id назначает сервер, черновой id клиента срезается
	for _, c := range cs.Create {
		it := make(domain.Item, len(c)+2)
		for k, v := range c {
			it[k] = v
		}
		it["id"] = m.NewID(now)
		it["createdAt"] = stamp
		it["updatedAt"] = stamp
		items = append(items, it)
		res.Created++
	}

	// deletes: черновые id фильтруются (клиент удалил собственный
	// несохранённый черновик — сюда такое дойти не должно, но не ошибка);
	// удаление отсутствующего id — no-op
	for _, id := range cs.Delete {
		if domain.ParseItemID(id).Draft {
			res.Skipped++
			continue
		}
		idx := indexByID(items, id)
		if idx < 0 {
			res.Skipped++
			continue
		}
		items = append(items[:idx], items[idx+1:]...)
		res.Deleted++
	}

	after, err := domain.MarshalCanonical(itemsOrEmpty(items))
	if err != nil {
		return Applied{}, err
	}
	return Applied{Content: after, Result: res, Changed: !domain.EqualCanonical(before, after)}, nil
}

// ContentMutator — у content-документа нет id-семантики: каждый update
// накладывается на документ целиком (shallow overlay, last-write-wins).
type ContentMutator struct{}

func (ContentMutator) Apply(raw []byte, cs domain.ChangeSet, _ domain.AuthUser) (Applied, error) {
	doc := domain.ContentDoc{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &doc); err != nil {
			return Applied{}, fmt.Errorf("content document is corrupt: %w", err)
		}
	}
	before, err := domain.MarshalCanonical(doc)
	if err != nil {
		return Applied{}, err
	}

	var res domain.OpResult
	for _, p := range cs.Update {
		doc = doc.Overlay(p.Fields)
		res.Updated++
	}
	// create/delete для документа смысла не имеют
	res.Skipped += len(cs.Create) + len(cs.Delete)

	after, err := domain.MarshalCanonical(doc)
	if err != nil {
		return Applied{}, err
	}
	return Applied{Content: after, Result: res, Changed: !domain.EqualCanonical(before, after)}, nil
}

// UsersMutator применяет батч-правки к списку операторов, сохраняя
// все гарантии стора: шифрование паролей, защита дефолтной учётки,
// запрет самоудаления, reconcile до записи. Нарушающие операции —
// мягкий отказ (skipped), инвариант добивает reconcile.
type UsersMutator struct {
	Store *accounts.Store
	Vault domain.CredentialVault
	Now   func() time.Time
}

func (m *UsersMutator) Apply(raw []byte, cs domain.ChangeSet, actor domain.AuthUser) (Applied, error) {
	var list []domain.Account
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &list); err != nil {
			return Applied{}, fmt.Errorf("users snapshot is corrupt: %w", err)
		}
	}
	list = m.Store.Reconcile(list)
	before, err := domain.MarshalCanonical(list)
	if err != nil {
		return Applied{}, err
	}

	var res domain.OpResult

	for _, p := range cs.Update {
		username := strings.ToLower(p.ID)
		patch, ok := accountPatch(p.Fields)
		if !ok {
			res.Skipped++
			continue
		}
		if username == domain.DefaultUsername && patch.Role != nil && *patch.Role != domain.RoleAdmin {
			res.Skipped++
			continue
		}
		idx := indexByUsername(list, username)
		if idx < 0 {
			res.Skipped++
			continue
		}
		a := patch.Merge(list[idx])
		if patch.Password != nil {
			if !domain.ValidPassword(*patch.Password) {
				res.Skipped++
				continue
			}
			cred, err := m.Vault.Encrypt(*patch.Password)
			if err != nil {
				return Applied{}, err
			}
			a.Credential = cred
			a.Plaintext = false
		}
		list[idx] = a
		res.Updated++
	}

	for _, c := range cs.Create {
		username, _ := c["username"].(string)
		password, _ := c["password"].(string)
		username = strings.ToLower(strings.TrimSpace(username))
		if !domain.ValidUsername(username) || !domain.ValidPassword(password) || indexByUsername(list, username) >= 0 {
			res.Skipped++
			continue
		}
		role := domain.RoleEditor
		if r, ok := c["role"].(string); ok && domain.Role(r).Valid() {
			role = domain.Role(r)
		}
		email, _ := c["email"].(string)
		cred, err := m.Vault.Encrypt(password)
		if err != nil {
			return Applied{}, err
		}
		list = append(list, domain.Account{
			Username:   username,
			Credential: cred,
			Role:       role,
			Email:      email,
			CreatedAt:  m.Now().UTC(),
		})
		res.Created++
	}

	for _, id := range cs.Delete {
		username := strings.ToLower(id)
		if username == domain.DefaultUsername || username == actor.Username {
			res.Skipped++
			continue
		}
		idx := indexByUsername(list, username)
		if idx < 0 {
			res.Skipped++
			continue
		}
		list = append(list[:idx], list[idx+1:]...)
		res.Deleted++
	}

	list = m.Store.Reconcile(list)
	after, err := domain.MarshalCanonical(list)
	if err != nil {
		return Applied{}, err
	}
	return Applied{Content: after, Result: res, Changed: !domain.EqualCanonical(before, after)}, nil
}

func accountPatch(fields map[string]any) (domain.AccountPatch, bool) {
	var p domain.AccountPatch
	for k, v := range fields {
		switch k {
		case "password":
			s, ok := v.(string)
			if !ok {
				return p, false
			}
			p.Password = &s
		case "role":
			s, ok := v.(string)
			if !ok || !domain.Role(s).Valid() {
				return p, false
			}
			r := domain.Role(s)
			p.Role = &r
		case "email":
			s, ok := v.(string)
			if !ok {
				return p, false
			}
			p.Email = &s
		}
	}
	return p, !p.Empty()
}

func indexByID(items []domain.Item, id string) int {
	for i, it := range items {
		if it.ID() == id {
			return i
		}
	}
	return -1
}

func indexByUsername(list []domain.Account, username string) int {
	for i, a := range list {
		if a.Username == username {
			return i
		}
	}
	return -1
}

// json.Marshal(nil slice) даёт "null"; пустая коллекция сериализуется как []
func itemsOrEmpty(items []domain.Item) []domain.Item {
	if items == nil {
		return []domain.Item{}
	}
	return items
}
