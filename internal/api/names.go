package api

import (
	"strings"

	"surveygraph/internal/schema"
)

// resolveEntity ищет сущность по имени: сначала точное совпадение, затем
// регистронезависимое, но только если оно единственное.
func resolveEntity(reg *schema.Registry, name string) (*schema.TypeDef, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false
	}
	if td, ok := reg.Entity(name); ok {
		return td, true
	}
	var found *schema.TypeDef
	for _, td := range reg.Entities() {
		if strings.EqualFold(td.Key, name) {
			if found != nil { // неуникально
				return nil, false
			}
			found = td
		}
	}
	return found, found != nil
}
