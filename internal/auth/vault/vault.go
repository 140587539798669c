package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/GiridharSalana/ShreeAdvaya/internal/domain"
)

// Фиксированные соли: вывод ключей детерминированный — один и тот же
// мастер-секрет всегда даёт те же ключи (иначе не расшифровать старые записи).
var (
	saltEncrypt = []byte("shreeadvaya/vault/encrypt/v1")
	saltSigning = []byte("shreeadvaya/vault/signing/v1")
)

const (
	gcmNonceSize = 12
	gcmTagSize   = 16
)

// Vault шифрует/расшифровывает хранимые пароли операторов ключом,
// выведенным из мастер-секрета. Формат записи: hex(iv):hex(tag):hex(ct).
type Vault struct {
	aead cipher.AEAD
	log  *log.Logger
}

// DeriveKey — детерминированный 32-байтный ключ шифрования из мастер-секрета
func DeriveKey(masterSecret string) []byte {
	return argon2.IDKey([]byte(masterSecret), saltEncrypt, 1, 64*1024, 4, 32)
}

// DeriveSigningSecret — секрет подписи сессионных токенов (тот же мастер-секрет,
// другая соль: ключи независимы)
func DeriveSigningSecret(masterSecret string) []byte {
	return argon2.IDKey([]byte(masterSecret), saltSigning, 1, 64*1024, 4, 32)
}

// New возвращает domain.ErrConfig при пустом мастер-секрете: это предусловие
// деплоя, а не восстановимая ошибка рантайма.
func New(masterSecret string, logger *log.Logger) (*Vault, error) {
	if masterSecret == "" {
		return nil, fmt.Errorf("vault: master secret is empty: %w", domain.ErrConfig)
	}
	block, err := aes.NewCipher(DeriveKey(masterSecret))
	if err != nil {
		return nil, fmt.Errorf("vault: cipher init: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("vault: gcm init: %w", err)
	}
	return &Vault{aead: aead, log: logger}, nil
}

var _ domain.CredentialVault = (*Vault)(nil)

// Encrypt — AES-256-GCM, свежий случайный nonce на каждый вызов
func (v *Vault) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, gcmNonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("vault: nonce: %w", err)
	}
	sealed := v.aead.Seal(nil, nonce, []byte(plaintext), nil)
	// Seal возвращает ciphertext||tag; в записи храним их раздельно
	ct := sealed[:len(sealed)-gcmTagSize]
	tag := sealed[len(sealed)-gcmTagSize:]
	return hex.EncodeToString(nonce) + ":" + hex.EncodeToString(tag) + ":" + hex.EncodeToString(ct), nil
}

// Decrypt fail-closed: false на любом дефекте записи. Никогда не возвращает
// «почти правильный» plaintext — GCM-тег сверяется до выдачи.
func (v *Vault) Decrypt(record string) (string, bool) {
	nonce, tag, ct, ok := splitRecord(record)
	if !ok {
		v.log.Printf("decrypt: malformed record")
		return "", false
	}
	plain, err := v.aead.Open(nil, nonce, append(ct, tag...), nil)
	if err != nil {
		// битая запись либо чужой ключ; подробности только в лог
		v.log.Printf("decrypt: open failed: %v", err)
		return "", false
	}
	return string(plain), true
}

// LooksEncrypted: три hex-части через ":", nonce нужной длины.
// Всё остальное — legacy-пароль открытым текстом.
func (v *Vault) LooksEncrypted(record string) bool {
	_, _, _, ok := splitRecord(record)
	return ok
}

func splitRecord(record string) (nonce, tag, ct []byte, ok bool) {
	parts := strings.Split(record, ":")
	if len(parts) != 3 {
		return nil, nil, nil, false
	}
	nonce, err := hex.DecodeString(parts[0])
	if err != nil || len(nonce) != gcmNonceSize {
		return nil, nil, nil, false
	}
	tag, err = hex.DecodeString(parts[1])
	if err != nil || len(tag) != gcmTagSize {
		return nil, nil, nil, false
	}
	ct, err = hex.DecodeString(parts[2])
	if err != nil {
		return nil, nil, nil, false
	}
	return nonce, tag, ct, true
}
