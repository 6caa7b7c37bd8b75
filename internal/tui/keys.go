package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type Action string

type Binding struct {
	Action Action
	Keys   []string
	Help   string
	Scopes []string
}

// KeyRegistry resolves key presses to actions per scope. Lookups fall back
// to the global scope.
type KeyRegistry struct {
	bindingsByScope map[string][]*Binding
	indexByScope    map[string]map[string]*Binding
}

const (
	scopeGlobal  = "global"
	scopeTable   = "table"
	scopePrompt  = "prompt"
	scopeConfirm = "confirm"
)

const (
	actionQuit         Action = "quit"
	actionNextView     Action = "next_view"
	actionGoDashboard  Action = "go_dashboard"
	actionGoInventory  Action = "go_inventory"
	actionRefresh      Action = "refresh"
	actionUp           Action = "up"
	actionDown         Action = "down"
	actionColumnLeft   Action = "column_left"
	actionColumnRight  Action = "column_right"
	actionSort         Action = "sort"
	actionClearSort    Action = "clear_sort"
	actionFilter       Action = "filter"
	actionClearFilters Action = "clear_filters"
	actionHideColumn   Action = "hide_column"
	actionShowColumns  Action = "show_columns"
	actionToggleSelect Action = "toggle_select"
	actionSelectPage   Action = "select_page"
	actionClearSelect  Action = "clear_selection"
	actionNextPage     Action = "next_page"
	actionPrevPage     Action = "prev_page"
	actionFirstPage    Action = "first_page"
	actionLastPage     Action = "last_page"
	actionPageSizeUp   Action = "page_size_up"
	actionPageSizeDown Action = "page_size_down"
	actionEditStock    Action = "edit_stock"
	actionDelete       Action = "delete"
	actionImport       Action = "import"
	actionExport       Action = "export"
	actionConfirm      Action = "confirm"
	actionCancel       Action = "cancel"
)

func NewKeyRegistry() *KeyRegistry {
	r := &KeyRegistry{
		bindingsByScope: make(map[string][]*Binding),
		indexByScope:    make(map[string]map[string]*Binding),
	}

	reg := func(scope string, action Action, keys []string, help string) {
		r.Register(Binding{Action: action, Keys: keys, Help: help, Scopes: []string{scope}})
	}

	reg(scopeGlobal, actionQuit, []string{"q", "ctrl+c"}, "quit")
	reg(scopeGlobal, actionNextView, []string{"tab"}, "next view")
	reg(scopeGlobal, actionGoDashboard, []string{"1"}, "dashboard")
	reg(scopeGlobal, actionGoInventory, []string{"2"}, "inventory")
	reg(scopeGlobal, actionRefresh, []string{"r"}, "refresh")

	reg(scopeTable, actionUp, []string{"k", "up"}, "up")
	reg(scopeTable, actionDown, []string{"j", "down"}, "down")
	reg(scopeTable, actionColumnLeft, []string{"h", "left"}, "column")
	reg(scopeTable, actionColumnRight, []string{"l", "right"}, "column")
	reg(scopeTable, actionSort, []string{"s"}, "sort")
	reg(scopeTable, actionClearSort, []string{"S"}, "clear sort")
	reg(scopeTable, actionFilter, []string{"f", "/"}, "filter")
	reg(scopeTable, actionClearFilters, []string{"F"}, "clear filters")
	reg(scopeTable, actionHideColumn, []string{"x"}, "hide column")
	reg(scopeTable, actionShowColumns, []string{"X"}, "show all")
	reg(scopeTable, actionToggleSelect, []string{"space"}, "select")
	reg(scopeTable, actionSelectPage, []string{"a"}, "select page")
	reg(scopeTable, actionClearSelect, []string{"A"}, "clear selection")
	reg(scopeTable, actionNextPage, []string{"n", "pgdown"}, "next page")
	reg(scopeTable, actionPrevPage, []string{"p", "pgup"}, "prev page")
	reg(scopeTable, actionFirstPage, []string{"g", "home"}, "first page")
	reg(scopeTable, actionLastPage, []string{"G", "end"}, "last page")
	reg(scopeTable, actionPageSizeUp, []string{"+", "="}, "more rows")
	reg(scopeTable, actionPageSizeDown, []string{"-"}, "fewer rows")
	reg(scopeTable, actionEditStock, []string{"e"}, "edit stock")
	reg(scopeTable, actionDelete, []string{"D"}, "delete selected")
	reg(scopeTable, actionImport, []string{"i"}, "import csv")
	reg(scopeTable, actionExport, []string{"E"}, "export xlsx")

	reg(scopePrompt, actionConfirm, []string{"enter"}, "apply")
	reg(scopePrompt, actionCancel, []string{"esc"}, "cancel")

	reg(scopeConfirm, actionConfirm, []string{"y", "enter"}, "yes")
	reg(scopeConfirm, actionCancel, []string{"n", "esc"}, "no")
	return r
}

// Register adds b to each of its scopes. A binding whose keys are already
// taken in a scope is ignored there.
func (r *KeyRegistry) Register(b Binding) {
	if r == nil || len(b.Keys) == 0 {
		return
	}
	for _, scope := range b.Scopes {
		scope = strings.TrimSpace(scope)
		if scope == "" {
			continue
		}
		if _, ok := r.indexByScope[scope]; !ok {
			r.indexByScope[scope] = make(map[string]*Binding)
		}
		normKeys := normalizeKeyList(b.Keys)
		if len(normKeys) == 0 || r.scopeHasAnyKey(scope, normKeys) {
			continue
		}

		copyBinding := b
		copyBinding.Keys = normKeys
		copyBinding.Scopes = []string{scope}
		r.bindingsByScope[scope] = append(r.bindingsByScope[scope], &copyBinding)
		for _, k := range copyBinding.Keys {
			r.indexByScope[scope][k] = &copyBinding
		}
	}
}

func (r *KeyRegistry) BindingsForScope(scope string) []Binding {
	if r == nil {
		return nil
	}
	items := r.bindingsByScope[scope]
	out := make([]Binding, 0, len(items))
	for _, b := range items {
		out = append(out, *b)
	}
	return out
}

func (r *KeyRegistry) Lookup(keyName, scope string) *Binding {
	if r == nil || keyName == "" {
		return nil
	}
	keyName = normalizeKeyName(keyName)
	if b := r.lookupInScope(keyName, scope); b != nil {
		return b
	}
	if scope != scopeGlobal {
		return r.lookupInScope(keyName, scopeGlobal)
	}
	return nil
}

// HelpBindings adapts a scope's bindings for the footer.
func (r *KeyRegistry) HelpBindings(scope string) []key.Binding {
	items := r.BindingsForScope(scope)
	out := make([]key.Binding, 0, len(items))
	for _, b := range items {
		out = append(out, key.NewBinding(key.WithKeys(b.Keys...), key.WithHelp(b.Keys[0], b.Help)))
	}
	return out
}

func (r *KeyRegistry) scopeHasAnyKey(scope string, keys []string) bool {
	lookup := r.indexByScope[scope]
	for _, k := range keys {
		if _, exists := lookup[k]; exists {
			return true
		}
	}
	return false
}

func normalizeKeyList(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]bool)
	for _, k := range keys {
		n := normalizeKeyName(k)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func normalizeKeyName(k string) string {
	if k == " " {
		return "space"
	}
	trimmed := strings.TrimSpace(k)
	if trimmed == "" {
		return ""
	}
	if len(trimmed) == 1 {
		// Single runes keep their case so "s" and "S" can differ.
		return trimmed
	}
	s := strings.ToLower(trimmed)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "control+", "ctrl+")
	s = strings.ReplaceAll(s, "return", "enter")
	s = strings.ReplaceAll(s, "spacebar", "space")
	return s
}

func (r *KeyRegistry) lookupInScope(keyName, scope string) *Binding {
	if r == nil || scope == "" {
		return nil
	}
	return r.indexByScope[scope][keyName]
}
