package batch

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/GiridharSalana/ShreeAdvaya/internal/domain"
)

func TestNewID(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	id := NewID(now)
	parts := strings.Split(id, "-")
	assert.Len(t, parts, 2)
	assert.Len(t, parts[1], 6)

	// серверный id не выглядит черновым
	assert.False(t, domain.ParseItemID(id).Draft)

	// одинаковое время — разные id (случайный хвост)
	assert.NotEqual(t, NewID(now), NewID(now))
}
