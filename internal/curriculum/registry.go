package curriculum

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
)

const (
	TierKids   = "kids"
	TierTeens  = "teens"
	TierAdults = "adults"
)

// DefaultLevelThresholds are the point totals at which levels 2, 3, ... begin.
var DefaultLevelThresholds = []int{100, 300, 600, 1000, 1500, 2100, 2800, 3600, 4500}

type Category struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Tier            string `json:"tier"`
	Order           int    `json:"order"`
	LevelThresholds []int  `json:"level_thresholds,omitempty"`
}

// LevelFor maps a point total onto a 1-based level.
func (c *Category) LevelFor(points int) int {
	thresholds := c.LevelThresholds
	if len(thresholds) == 0 {
		thresholds = DefaultLevelThresholds
	}
	level := 1
	for _, t := range thresholds {
		if points >= t {
			level++
		}
	}
	return level
}

type CategoriesFile struct {
	Categories []Category `json:"categories"`
}

type Registry struct {
	mu         sync.RWMutex
	categories map[string]*Category
}

func NewRegistry() *Registry {
	return &Registry{
		categories: make(map[string]*Category),
	}
}

// Default returns the built-in catalog.
func Default() *Registry {
	r := NewRegistry()
	for _, c := range []Category{
		{ID: "young_kids", Name: "Young Kids", Tier: TierKids, Order: 1},
		{ID: "older_kids", Name: "Older Kids", Tier: TierKids, Order: 2},
		{ID: "teen_explorers", Name: "Teen Explorers", Tier: TierTeens, Order: 3},
		{ID: "teen_pro", Name: "Teen Pro", Tier: TierTeens, Order: 4},
		{ID: "everyday_english", Name: "Everyday English", Tier: TierAdults, Order: 5},
		{ID: "business_english", Name: "Business English", Tier: TierAdults, Order: 6},
		{ID: "ielts_pte", Name: "IELTS & PTE Preparation", Tier: TierAdults, Order: 7},
	} {
		c := c
		r.Register(&c)
	}
	return r
}

// Load returns the catalog from path, or the built-in one when path is empty.
func Load(path string) (*Registry, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadFromFile(path)
}

func LoadFromFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read categories config: %w", err)
	}

	var file CategoriesFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse categories config: %w", err)
	}

	registry := NewRegistry()
	for i := range file.Categories {
		c := &file.Categories[i]
		switch c.Tier {
		case TierKids, TierTeens, TierAdults:
		default:
			return nil, fmt.Errorf("category %q has unknown tier %q", c.ID, c.Tier)
		}
		registry.Register(c)
	}
	return registry, nil
}

func (r *Registry) Register(c *Category) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories[c.ID] = c
}

func (r *Registry) Get(id string) *Category {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.categories[id]
}

func (r *Registry) Exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.categories[id]
	return ok
}

// All returns every category in catalog order.
func (r *Registry) All() []*Category {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*Category, 0, len(r.categories))
	for _, c := range r.categories {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Order != result[j].Order {
			return result[i].Order < result[j].Order
		}
		return result[i].ID < result[j].ID
	})
	return result
}

func (r *Registry) ByTier(tier string) []*Category {
	var result []*Category
	for _, c := range r.All() {
		if c.Tier == tier {
			result = append(result, c)
		}
	}
	return result
}
