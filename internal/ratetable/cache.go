package ratetable

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/cloud-ru/mcp-realty-go/internal/metrics"
)

// Cache хранит загруженные таблицы, чтобы не перечитывать CSV на каждый расчет
type Cache struct {
	store   *cache.Cache
	dataDir string
}

// NewCache создает кеш таблиц. Относительные пути, которых нет в рабочем каталоге,
// ищутся в dataDir.
func NewCache(ttl time.Duration, dataDir string) *Cache {
	return &Cache{
		store:   cache.New(ttl, 2*ttl),
		dataDir: dataDir,
	}
}

// Correction возвращает таблицу поправочных коэффициентов
func (c *Cache) Correction(path string) *Table {
	resolved := c.Resolve(path)
	k := key(KindCorrection, resolved)
	if v, ok := c.get(k); ok {
		return v.(*Table)
	}
	t := LoadCorrection(resolved)
	c.store.SetDefault(k, t)
	return t
}

// Amounts возвращает таблицу годовых сумм
func (c *Cache) Amounts(path string) *Table {
	resolved := c.Resolve(path)
	k := key(KindAmounts, resolved)
	if v, ok := c.get(k); ok {
		return v.(*Table)
	}
	t := LoadAmounts(resolved)
	c.store.SetDefault(k, t)
	return t
}

// DepreciationRates возвращает таблицу норм амортизации
func (c *Cache) DepreciationRates(path string) *DepreciationRates {
	resolved := c.Resolve(path)
	k := key(KindDepreciation, resolved)
	if v, ok := c.get(k); ok {
		return v.(*DepreciationRates)
	}
	d := LoadDepreciationRates(resolved)
	c.store.SetDefault(k, d)
	return d
}

// RepairsPlan возвращает план ремонтов или nil
func (c *Cache) RepairsPlan(path string) *RepairsPlan {
	resolved := c.Resolve(path)
	k := key(KindRepairsPlan, resolved)
	if v, ok := c.get(k); ok {
		plan, _ := v.(*RepairsPlan)
		return plan
	}
	plan := LoadRepairsPlan(resolved)
	c.store.SetDefault(k, plan)
	return plan
}

// Fingerprint описывает текущее состояние файлов таблиц: путь, размер и время изменения.
// Меняется при правке любого из файлов.
func (c *Cache) Fingerprint(paths ...string) string {
	var b strings.Builder
	for _, p := range paths {
		resolved := c.Resolve(p)
		b.WriteString(resolved)
		b.WriteByte('=')
		b.WriteString(stamp(resolved))
		b.WriteByte(';')
	}
	return b.String()
}

// Flush очищает кеш
func (c *Cache) Flush() {
	c.store.Flush()
}

// Resolve подставляет dataDir для относительных путей, отсутствующих на диске
func (c *Cache) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || c.dataDir == "" {
		return path
	}
	if _, err := os.Stat(path); err == nil {
		return path
	}
	candidate := filepath.Join(c.dataDir, path)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	candidate = filepath.Join(c.dataDir, filepath.Base(path))
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return path
}

func (c *Cache) get(k string) (interface{}, bool) {
	v, ok := c.store.Get(k)
	if ok {
		metrics.CacheRequests.WithLabelValues("rate_table", "hit").Inc()
	} else {
		metrics.CacheRequests.WithLabelValues("rate_table", "miss").Inc()
	}
	return v, ok
}

// key включает состояние файла, поэтому правка CSV не отдает устаревшую таблицу
func key(kind, path string) string {
	return kind + ":" + path + "@" + stamp(path)
}

func stamp(path string) string {
	if path == "" {
		return ""
	}
	info, err := os.Stat(path)
	if err != nil {
		return "missing"
	}
	return strconv.FormatInt(info.Size(), 10) + "-" + strconv.FormatInt(info.ModTime().UnixNano(), 10)
}
