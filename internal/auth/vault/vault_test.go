package vault

import (
	"io"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVault(t *testing.T) *Vault {
	t.Helper()
	v, err := New("test-master-secret", log.New(io.Discard, "", 0))
	require.NoError(t, err)
	return v
}

func TestNew_EmptySecret(t *testing.T) {
	_, err := New("", log.New(io.Discard, "", 0))
	require.Error(t, err)
}

func TestEncryptDecrypt_Roundtrip(t *testing.T) {
	v := newTestVault(t)

	for _, plain := range []string{"hunter2-but-longer", "", "пароль с юникодом", strings.Repeat("x", 500)} {
		rec, err := v.Encrypt(plain)
		require.NoError(t, err)
		assert.True(t, v.LooksEncrypted(rec))

		got, ok := v.Decrypt(rec)
		require.True(t, ok)
		assert.Equal(t, plain, got)
	}
}

func TestEncrypt_FreshNonce(t *testing.T) {
	v := newTestVault(t)

	a, err := v.Encrypt("same-password")
	require.NoError(t, err)
	b, err := v.Encrypt("same-password")
	require.NoError(t, err)
	// одинаковый plaintext не должен давать одинаковую запись
	assert.NotEqual(t, a, b)
}

func TestDecrypt_TamperedTag(t *testing.T) {
	v := newTestVault(t)

	rec, err := v.Encrypt("secret")
	require.NoError(t, err)

	parts := strings.Split(rec, ":")
	require.Len(t, parts, 3)
	// переворачиваем один бит в hex-символе тега
	tag := []byte(parts[1])
	if tag[0] == '0' {
		tag[0] = '1'
	} else {
		tag[0] = '0'
	}
	tampered := parts[0] + ":" + string(tag) + ":" + parts[2]

	_, ok := v.Decrypt(tampered)
	assert.False(t, ok)
}

func TestDecrypt_MalformedRecords(t *testing.T) {
	v := newTestVault(t)

	for _, rec := range []string{
		"",
		"plaintext-password",
		"aa:bb",
		"zz:zz:zz",
		"aabb:ccdd:eeff", // nonce/tag неправильной длины
	} {
		_, ok := v.Decrypt(rec)
		assert.False(t, ok, "record %q", rec)
		assert.False(t, v.LooksEncrypted(rec), "record %q", rec)
	}
}

func TestDecrypt_WrongKey(t *testing.T) {
	v1 := newTestVault(t)
	v2, err := New("another-master-secret", log.New(io.Discard, "", 0))
	require.NoError(t, err)

	rec, err := v1.Encrypt("secret")
	require.NoError(t, err)

	_, ok := v2.Decrypt(rec)
	assert.False(t, ok)
}

func TestDeriveKeys_DeterministicAndIndependent(t *testing.T) {
	assert.Equal(t, DeriveKey("s"), DeriveKey("s"))
	assert.Equal(t, DeriveSigningSecret("s"), DeriveSigningSecret("s"))
	assert.NotEqual(t, DeriveKey("s"), DeriveSigningSecret("s"))
	assert.NotEqual(t, DeriveKey("s"), DeriveKey("other"))
}
