package domain

import "strings"

// Коллекции, которые умеет принимать батч, и их файлы в репозитории сайта.
const (
	ColProducts = "products"
	ColGallery  = "gallery"
	ColHero     = "hero"
	ColContent  = "content"
	ColUsers    = "users"
)

var CollectionPaths = map[string]string{
	ColProducts: "data/products.json",
	ColGallery:  "data/gallery.json",
	ColHero:     "data/hero.json",
	ColContent:  "data/content.json",
	ColUsers:    "data/users.json",
}

// Префикс черновых id, которые клиент выдаёт ещё не сохранённым элементам.
// Наружу такие id не уходят: сервер срезает их при create и отфильтровывает
// из delete (удаление собственного черновика клиент гасит локально).
const DraftIDPrefix = "temp_"

// ItemID — явный вариант «черновик или сохранённый» вместо размазанного
// по коду prefix-sniffing.
type ItemID struct {
	Raw   string
	Draft bool
}

func ParseItemID(s string) ItemID {
	return ItemID{Raw: s, Draft: strings.HasPrefix(s, DraftIDPrefix)}
}

// Patch — частичное обновление элемента по существующему id
type Patch struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// ChangeSet — накопленные правки одной коллекции.
// Для content id-семантики нет: каждый Update.Fields накладывается
// на документ целиком, Create/Delete игнорируются.
type ChangeSet struct {
	Create []Item   `json:"create,omitempty"`
	Update []Patch  `json:"update,omitempty"`
	Delete []string `json:"delete,omitempty"`
}

func (cs ChangeSet) Empty() bool {
	return len(cs.Create) == 0 && len(cs.Update) == 0 && len(cs.Delete) == 0
}

// OpResult — итог применения ChangeSet к одной коллекции.
// Skipped — протухшие update (id не найден) и отфильтрованные
// черновые delete; мягкий отказ, не ошибка.
type OpResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Deleted int `json:"deleted"`
	Skipped int `json:"skipped"`
}

// BatchResult — итог всего батча
type BatchResult struct {
	Committed bool                `json:"committed"`
	CommitID  string              `json:"commitId,omitempty"`
	Results   map[string]OpResult `json:"results"`
}
