package accounts

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/GiridharSalana/ShreeAdvaya/internal/domain"
)

// Store загружает/сливает/сохраняет список операторов (data/users.json).
// Базы данных нет: системой записи служит Git-провайдер, файл читается
// заново на каждый запрос.
type Store struct {
	provider domain.Provider
	vault    domain.CredentialVault
	log      *log.Logger

	// seed — JSON-список учёток из окружения (fallback, если файла
	// ещё нет в репозитории)
	seed string
	// bootstrapPassword — пароль, с которым синтезируется дефолтная
	// учётка (по умолчанию — сам мастер-секрет)
	bootstrapPassword string

	// decoy — заранее зашифрованная пустышка: Authenticate сверяет
	// пароль и для несуществующего логина, чтобы не давать тайминг-оракул
	decoy string

	now func() time.Time
}

func New(provider domain.Provider, vault domain.CredentialVault, logger *log.Logger, seed, bootstrapPassword string) (*Store, error) {
	decoy, err := vault.Encrypt("decoy-" + time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("accounts: decoy: %w", err)
	}
	return &Store{
		provider:          provider,
		vault:             vault,
		log:               logger,
		seed:              seed,
		bootstrapPassword: bootstrapPassword,
		decoy:             decoy,
		now:               time.Now,
	}, nil
}

var _ domain.AccountStore = (*Store)(nil)

// Load читает список учёток: провайдер → seed из окружения → пустой список.
// Затем безусловно прогоняет reconcile — инвариант дефолтного админа
// самовосстанавливается при любом повреждении файла.
func (s *Store) Load(ctx context.Context) ([]domain.Account, error) {
	var list []domain.Account

	raw, err := s.provider.ReadFile(ctx, domain.CollectionPaths[domain.ColUsers])
	switch {
	case err == nil:
		if uerr := json.Unmarshal(raw, &list); uerr != nil {
			s.log.Printf("load: users file is corrupt, starting from seed: %v", uerr)
			list = s.seedAccounts()
		}
	case errors.Is(err, domain.ErrNotFound):
		list = s.seedAccounts()
	default:
		s.log.Printf("load: provider read failed, starting from seed: %v", err)
		list = s.seedAccounts()
	}

	return s.Reconcile(list), nil
}

func (s *Store) seedAccounts() []domain.Account {
	if s.seed == "" {
		return nil
	}
	var list []domain.Account
	if err := json.Unmarshal([]byte(s.seed), &list); err != nil {
		s.log.Printf("seed: bad ADMIN_USERS_SEED, ignored: %v", err)
		return nil
	}
	return list
}

// Reconcile приводит список к инварианту: ровно одна учётка с isDefault,
// это DefaultUsername, её роль намертво admin. Отсутствует — вставляется
// в голову списка с bootstrap-паролем.
func (s *Store) Reconcile(list []domain.Account) []domain.Account {
	out := make([]domain.Account, 0, len(list)+1)
	var def *domain.Account
	for _, a := range list {
		a.Username = strings.ToLower(a.Username)
		if a.Username == domain.DefaultUsername {
			if def == nil {
				cp := a
				def = &cp
			}
			continue // дефолтную вставим в голову сами
		}
		a.IsDefault = false // флаг может носить только дефолтная
		if !a.Role.Valid() {
			a.Role = domain.RoleViewer
		}
		out = append(out, a)
	}

	if def == nil {
		cred, err := s.vault.Encrypt(s.bootstrapPassword)
		if err != nil {
			// свод сконструирован — сюда не попадаем; перестрахуемся
			s.log.Printf("reconcile: encrypt bootstrap password: %v", err)
		}
		def = &domain.Account{
			Username:   domain.DefaultUsername,
			Credential: cred,
			CreatedAt:  s.now().UTC(),
		}
	}
	def.Username = domain.DefaultUsername
	def.Role = domain.RoleAdmin
	def.IsDefault = true
	if def.CreatedAt.IsZero() {
		def.CreatedAt = s.now().UTC()
	}

	return append([]domain.Account{*def}, out...)
}

// Authenticate возвращает (user, true) либо (zero, false) — одинаково для
// «нет такого логина» и «не тот пароль», без ветки с ранним выходом.
func (s *Store) Authenticate(ctx context.Context, username, password string) (domain.AuthUser, bool, error) {
	list, err := s.Load(ctx)
	if err != nil {
		return domain.AuthUser{}, false, err
	}

	username = strings.ToLower(strings.TrimSpace(username))
	found := false
	match := domain.Account{Credential: s.decoy}
	for _, a := range list {
		if a.Username == username {
			match = a
			found = true
			break
		}
	}

	ok := s.verifyCredential(match, password)
	if !ok || !found {
		return domain.AuthUser{}, false, nil
	}
	return domain.AuthUser{Username: match.Username, Role: match.Role}, true, nil
}

func (s *Store) verifyCredential(a domain.Account, password string) bool {
	if a.Plaintext || !s.vault.LooksEncrypted(a.Credential) {
		// legacy-запись: пароль лежал открытым текстом
		return subtle.ConstantTimeCompare([]byte(a.Credential), []byte(password)) == 1
	}
	stored, ok := s.vault.Decrypt(a.Credential)
	if !ok {
		// битая запись приравнивается к неверному паролю; деталь — в лог
		s.log.Printf("authenticate: credential decrypt failed for %q", a.Username)
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
}

// List — представление без учётных данных
func (s *Store) List(ctx context.Context) ([]domain.AccountView, error) {
	list, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.AccountView, 0, len(list))
	for _, a := range list {
		out = append(out, a.View())
	}
	return out, nil
}

// Register создаёт учётку. actor == nil допустим только для самой первой
// регистрации (bootstrap: в списке нет никого, кроме дефолтной).
func (s *Store) Register(ctx context.Context, actor *domain.AuthUser, username, password string, role domain.Role, email string) (domain.AccountView, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if !domain.ValidUsername(username) || !domain.ValidPassword(password) {
		return domain.AccountView{}, fmt.Errorf("register %q: %w", username, domain.ErrBadParams)
	}
	if role == "" {
		role = domain.RoleEditor
	}
	if !role.Valid() {
		return domain.AccountView{}, fmt.Errorf("register %q: bad role: %w", username, domain.ErrBadParams)
	}

	list, err := s.Load(ctx)
	if err != nil {
		return domain.AccountView{}, err
	}

	if actor == nil {
		// без токена можно создать только первую «настоящую» учётку
		if len(list) > 1 {
			return domain.AccountView{}, fmt.Errorf("register: token required: %w", domain.ErrUnauth)
		}
	} else if actor.Role != domain.RoleAdmin {
		return domain.AccountView{}, fmt.Errorf("register: admin role required: %w", domain.ErrForbidden)
	}

	for _, a := range list {
		if a.Username == username {
			return domain.AccountView{}, fmt.Errorf("register %q: %w", username, domain.ErrConflict)
		}
	}

	cred, err := s.vault.Encrypt(password)
	if err != nil {
		return domain.AccountView{}, fmt.Errorf("register %q: %w", username, err)
	}
	acc := domain.Account{
		Username:   username,
		Credential: cred,
		Role:       role,
		Email:      email,
		CreatedAt:  s.now().UTC(),
	}
	list = append(list, acc)

	if err := s.save(ctx, list, fmt.Sprintf("admin: register account %s", username)); err != nil {
		return domain.AccountView{}, err
	}
	return acc.View(), nil
}

// Update применяет типизированный патч. Политика (см. DESIGN.md): любой
// оператор меняет СВОЙ пароль; роль/email чужих учёток — только admin.
// Роль и username дефолтной учётки неизменяемы.
func (s *Store) Update(ctx context.Context, actor domain.AuthUser, username string, patch domain.AccountPatch) (domain.AccountView, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if patch.Empty() {
		return domain.AccountView{}, fmt.Errorf("update %q: empty patch: %w", username, domain.ErrBadParams)
	}
	if patch.Role != nil && !patch.Role.Valid() {
		return domain.AccountView{}, fmt.Errorf("update %q: bad role: %w", username, domain.ErrBadParams)
	}
	if patch.Password != nil && !domain.ValidPassword(*patch.Password) {
		return domain.AccountView{}, fmt.Errorf("update %q: weak password: %w", username, domain.ErrBadParams)
	}

	self := actor.Username == username
	if actor.Role != domain.RoleAdmin {
		if !self || patch.Role != nil || patch.Email != nil {
			return domain.AccountView{}, fmt.Errorf("update %q: %w", username, domain.ErrForbidden)
		}
	}
	if username == domain.DefaultUsername && patch.Role != nil && *patch.Role != domain.RoleAdmin {
		// защищённые поля дефолтной учётки не трогаются никем
		return domain.AccountView{}, fmt.Errorf("update %q: default account role is pinned: %w", username, domain.ErrBadParams)
	}

	list, err := s.Load(ctx)
	if err != nil {
		return domain.AccountView{}, err
	}

	idx := -1
	for i, a := range list {
		if a.Username == username {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.AccountView{}, fmt.Errorf("update %q: %w", username, domain.ErrNotFound)
	}

	updated := patch.Merge(list[idx])
	if patch.Password != nil {
		cred, err := s.vault.Encrypt(*patch.Password)
		if err != nil {
			return domain.AccountView{}, fmt.Errorf("update %q: %w", username, err)
		}
		updated.Credential = cred
		updated.Plaintext = false
	}
	list[idx] = updated

	// перед сохранением инвариант переутверждается ещё раз
	list = s.Reconcile(list)
	if err := s.save(ctx, list, fmt.Sprintf("admin: update account %s", username)); err != nil {
		return domain.AccountView{}, err
	}
	return updated.View(), nil
}

// Delete: дефолтную учётку и самого себя удалить нельзя
func (s *Store) Delete(ctx context.Context, actor domain.AuthUser, username string) error {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == domain.DefaultUsername {
		return fmt.Errorf("delete %q: default account is protected: %w", username, domain.ErrBadParams)
	}
	if username == actor.Username {
		return fmt.Errorf("delete %q: self-deletion refused: %w", username, domain.ErrForbidden)
	}

	list, err := s.Load(ctx)
	if err != nil {
		return err
	}

	out := list[:0]
	found := false
	for _, a := range list {
		if a.Username == username {
			found = true
			continue
		}
		out = append(out, a)
	}
	if !found {
		return fmt.Errorf("delete %q: %w", username, domain.ErrNotFound)
	}

	out = s.Reconcile(out)
	return s.save(ctx, out, fmt.Sprintf("admin: delete account %s", username))
}

func (s *Store) save(ctx context.Context, list []domain.Account, message string) error {
	b, err := domain.MarshalCanonical(list)
	if err != nil {
		return fmt.Errorf("accounts save: %w", err)
	}
	if err := s.provider.WriteFile(ctx, domain.CollectionPaths[domain.ColUsers], b, message); err != nil {
		return fmt.Errorf("accounts save: %w", err)
	}
	return nil
}
