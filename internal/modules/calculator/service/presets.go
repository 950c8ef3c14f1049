package service

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"

	"trade_risk/internal/models"
	"trade_risk/internal/riskcalc"
)

type presetFile struct {
	Presets []presetEntry `yaml:"presets"`
}

// multiples читаем строками, чтобы 0.1 не превратился в float.
type presetEntry struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Weights     []int64  `yaml:"weights"`
	Multiples   []string `yaml:"multiples"`
}

var builtinOrder = []string{"thirds", "front", "runner", "inside"}

// Catalog: упорядоченный набор пресетов выхода.
type Catalog struct {
	order  []string
	byName map[string]models.ExitPreset
}

func NewBuiltinCatalog() *Catalog {
	c := &Catalog{byName: make(map[string]models.ExitPreset, len(builtinOrder))}
	for _, name := range builtinOrder {
		c.put(models.BuiltinExitPresets[name])
	}
	return c
}

func (c *Catalog) put(p models.ExitPreset) {
	if _, ok := c.byName[p.Name]; !ok {
		c.order = append(c.order, p.Name)
	}
	c.byName[p.Name] = p
}

func (c *Catalog) Get(name string) (models.ExitPreset, bool) {
	p, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

func (c *Catalog) List() []models.ExitPreset {
	out := make([]models.ExitPreset, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.byName[name])
	}
	return out
}

// ParsePresets decodes a presets YAML document and validates every entry.
func ParsePresets(data []byte) ([]models.ExitPreset, error) {
	var f presetFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "decode presets")
	}

	out := make([]models.ExitPreset, 0, len(f.Presets))
	seen := make(map[string]struct{}, len(f.Presets))
	for i, e := range f.Presets {
		name := strings.ToLower(strings.TrimSpace(e.Name))
		if name == "" {
			return nil, errors.Errorf("preset #%d: empty name", i+1)
		}
		if _, dup := seen[name]; dup {
			return nil, errors.Errorf("preset %q: duplicate name", name)
		}
		seen[name] = struct{}{}

		p := models.ExitPreset{
			Name:        name,
			Description: e.Description,
			Weights:     e.Weights,
			Multiples:   make([]decimal.Decimal, 0, len(e.Multiples)),
		}
		for j, raw := range e.Multiples {
			m, err := decimal.NewFromString(strings.TrimSpace(raw))
			if err != nil {
				return nil, errors.Wrapf(err, "preset %q: multiple #%d", name, j+1)
			}
			p.Multiples = append(p.Multiples, m)
		}
		if err := riskcalc.PolicyFromPreset(p).Validate(); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// LoadCatalog: встроенные пресеты плюс файл (если задан).
// Пресет из файла с тем же именем заменяет встроенный.
func LoadCatalog(path string) (*Catalog, error) {
	c := NewBuiltinCatalog()
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read presets %s", path)
	}
	presets, err := ParsePresets(data)
	if err != nil {
		return nil, errors.Wrapf(err, "presets %s", path)
	}
	for _, p := range presets {
		c.put(p)
	}
	return c, nil
}
