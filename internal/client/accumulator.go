package client

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/GiridharSalana/ShreeAdvaya/internal/domain"
)

// Снимки старше суток не восстанавливаем: сайт могли успеть поменять
// с другого устройства, и слепое наложение старых правок только навредит.
const staleAfter = 24 * time.Hour

// Accumulator копит правки локально между коммитами. Create получает
// черновой id (temp_<uuid>) — финальный выдаст сервер; update по черновику
// сливается в отложенный create; delete черновика гасит его create
// без следа в итоговом батче.
type Accumulator struct {
	mu      sync.Mutex
	touched time.Time
	pending map[string]*pendingSet
}

type pendingSet struct {
	Creates map[string]domain.Item    `json:"creates"` // draft id -> item
	Updates map[string]map[string]any `json:"updates"` // id -> merged fields
	Deletes map[string]struct{}       `json:"deletes"`
}

// snapshotFile — формат Save/Restore
type snapshotFile struct {
	SavedAt time.Time              `json:"savedAt"`
	Pending map[string]*pendingSet `json:"pending"`
}

func NewAccumulator() *Accumulator {
	return &Accumulator{pending: make(map[string]*pendingSet)}
}

func (a *Accumulator) set(collection string) *pendingSet {
	ps, ok := a.pending[collection]
	if !ok {
		ps = &pendingSet{
			Creates: make(map[string]domain.Item),
			Updates: make(map[string]map[string]any),
			Deletes: make(map[string]struct{}),
		}
		a.pending[collection] = ps
	}
	a.touched = time.Now()
	return ps
}

// Create откладывает создание и возвращает черновой id.
func (a *Accumulator) Create(collection string, item domain.Item) string {
	a.mu.Lock()
	defer a.mu.Unlock()

	draft := domain.DraftIDPrefix + uuid.NewString()
	clone := make(domain.Item, len(item)+1)
	for k, v := range item {
		clone[k] = v
	}
	clone["id"] = draft
	a.set(collection).Creates[draft] = clone
	return draft
}

// Update сливает поля в отложенную правку; по черновому id — прямо
// в отложенный create.
func (a *Accumulator) Update(collection, id string, fields map[string]any) {
	a.mu.Lock()
	defer a.mu.Unlock()

	ps := a.set(collection)
	if item, ok := ps.Creates[id]; ok {
		for k, v := range fields {
			if k == "id" {
				continue
			}
			item[k] = v
		}
		return
	}
	merged, ok := ps.Updates[id]
	if !ok {
		merged = make(map[string]any, len(fields))
		ps.Updates[id] = merged
	}
	for k, v := range fields {
		if k == "id" {
			continue
		}
		merged[k] = v
	}
}

// Delete. Удаление черновика отменяет его create целиком.
func (a *Accumulator) Delete(collection, id string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	ps := a.set(collection)
	if _, ok := ps.Creates[id]; ok {
		delete(ps.Creates, id)
		return
	}
	delete(ps.Updates, id) // правки удаляемого больше не нужны
	ps.Deletes[id] = struct{}{}
}

// Snapshot собирает чистый батч для POST /api/v1/batch.
// Пустые коллекции в него не попадают.
func (a *Accumulator) Snapshot() map[string]domain.ChangeSet {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make(map[string]domain.ChangeSet)
	for name, ps := range a.pending {
		cs := domain.ChangeSet{}
		for _, item := range ps.Creates {
			cs.Create = append(cs.Create, item)
		}
		for id, fields := range ps.Updates {
			cs.Update = append(cs.Update, domain.Patch{ID: id, Fields: fields})
		}
		for id := range ps.Deletes {
			cs.Delete = append(cs.Delete, id)
		}
		if !cs.Empty() {
			out[name] = cs
		}
	}
	return out
}

// Empty — нет ни одной накопленной правки.
func (a *Accumulator) Empty() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, ps := range a.pending {
		if len(ps.Creates) > 0 || len(ps.Updates) > 0 || len(ps.Deletes) > 0 {
			return false
		}
	}
	return true
}

// Reset сбрасывает накопленное (после успешного коммита).
func (a *Accumulator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pending = make(map[string]*pendingSet)
}

// Save сериализует накопленное для переживания перезапуска.
func (a *Accumulator) Save() ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return json.Marshal(snapshotFile{SavedAt: a.touched, Pending: a.pending})
}

// Restore поднимает снимок; протухший (старше суток) молча отбрасывается.
func (a *Accumulator) Restore(raw []byte) error {
	var f snapshotFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return err
	}
	if time.Since(f.SavedAt) > staleAfter {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if f.Pending != nil {
		a.pending = f.Pending
		a.touched = f.SavedAt
	}
	return nil
}
