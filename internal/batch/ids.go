package batch

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"
)

// NewID выдаёт коллизионно-стойкий id элемента: миллисекунды в base36 плюс
// случайный суффикс — несколько create в одну миллисекунду не пересекутся.
func NewID(now time.Time) string {
	var b [3]byte
	_, _ = rand.Read(b[:])
	return strconv.FormatInt(now.UnixMilli(), 36) + "-" + hex.EncodeToString(b[:])
}
