// Package listview monta a visão derivada das listagens: filtra, busca e
// ordena uma coleção sem tocar na origem.
package listview

import (
	"net/url"
	"slices"
	"strings"
	"time"
)

// Todos é o valor sentinela que desliga um filtro categórico.
const Todos = "todos"

// Order define a ordenação da listagem.
type Order string

const (
	// OrderInsertion mantém a ordem da coleção de origem.
	OrderInsertion Order = ""
	OrderAsc       Order = "asc"
	OrderDesc      Order = "desc"
)

// Criteria reúne os critérios opcionais de uma listagem.
type Criteria struct {
	Query   string
	Filters map[string]string
	Order   Order
}

// Spec descreve como extrair de um registro os campos pesquisáveis.
type Spec[T any] struct {
	// Text lista os campos cobertos pela busca livre.
	Text []func(T) string
	// Categories mapeia o nome do filtro para os valores do registro.
	// Nenhum valor significa campo ausente.
	Categories map[string]func(T) []string
	// Timestamp é usado quando a ordenação asc/desc é pedida.
	Timestamp func(T) time.Time
}

// IsSentinel indica se o valor equivale a "sem restrição".
func IsSentinel(value string) bool {
	v := strings.TrimSpace(value)
	return v == "" || strings.EqualFold(v, Todos) || strings.EqualFold(v, "all")
}

// Active devolve apenas os filtros que restringem a listagem.
func (c Criteria) Active() map[string]string {
	out := make(map[string]string, len(c.Filters))
	for key, value := range c.Filters {
		if IsSentinel(value) {
			continue
		}
		out[key] = strings.TrimSpace(value)
	}
	return out
}

// Apply devolve uma nova fatia com os itens que satisfazem todos os
// critérios. A fatia de origem nunca é alterada.
func Apply[T any](items []T, spec Spec[T], c Criteria) []T {
	query := strings.ToLower(strings.TrimSpace(c.Query))
	filters := c.Active()

	out := make([]T, 0, len(items))
	for _, item := range items {
		if query != "" && !matchesText(item, spec.Text, query) {
			continue
		}
		if !matchesCategories(item, spec.Categories, filters) {
			continue
		}
		out = append(out, item)
	}

	if spec.Timestamp != nil {
		switch c.Order {
		case OrderAsc:
			slices.SortStableFunc(out, func(a, b T) int {
				return spec.Timestamp(a).Compare(spec.Timestamp(b))
			})
		case OrderDesc:
			slices.SortStableFunc(out, func(a, b T) int {
				return spec.Timestamp(b).Compare(spec.Timestamp(a))
			})
		}
	}

	return out
}

func matchesText[T any](item T, fields []func(T) string, query string) bool {
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field(item)), query) {
			return true
		}
	}
	return false
}

func matchesCategories[T any](item T, categories map[string]func(T) []string, filters map[string]string) bool {
	for key, want := range filters {
		get, ok := categories[key]
		if !ok {
			// filtro desconhecido não restringe
			continue
		}
		if !slices.Contains(get(item), want) {
			return false
		}
	}
	return true
}

// ParseOrder aceita asc/desc; qualquer outro valor mantém a ordem de inserção.
func ParseOrder(value string) Order {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "asc", "crescente":
		return OrderAsc
	case "desc", "decrescente":
		return OrderDesc
	default:
		return OrderInsertion
	}
}

// CriteriaFromQuery lê q, ordem e os filtros informados de uma query string.
func CriteriaFromQuery(values url.Values, keys ...string) Criteria {
	c := Criteria{
		Query:   values.Get("q"),
		Order:   ParseOrder(values.Get("ordem")),
		Filters: make(map[string]string, len(keys)),
	}
	for _, key := range keys {
		if v := values.Get(key); v != "" {
			c.Filters[key] = v
		}
	}
	return c
}

// One é um atalho para campos de valor único: vazio vira ausência.
func One(value string) []string {
	if value == "" {
		return nil
	}
	return []string{value}
}
