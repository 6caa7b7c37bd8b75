// Package prefs stores user preferences next to the config file.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const categoriesFile = "categories.json"

// Store keeps preference files in Dir.
type Store struct {
	Dir string
}

// DefaultStore uses the user config directory.
func DefaultStore() (Store, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return Store{}, err
	}
	return Store{Dir: filepath.Join(dir, "gexx")}, nil
}

func (s Store) categoriesPath() (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(s.Dir, categoriesFile), nil
}

// SaveCategories replaces the category list, keyed by team.
func (s Store) SaveCategories(cats map[string][]string) error {
	path, err := s.categoriesPath()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(cats, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// LoadCategories returns the saved categories keyed by team. A missing file
// yields an empty map.
func (s Store) LoadCategories() (map[string][]string, error) {
	path, err := s.categoriesPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string][]string{}, nil
		}
		return nil, err
	}
	cats := map[string][]string{}
	if err := json.Unmarshal(data, &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

// AddCategory appends name to the team's list unless present.
func (s Store) AddCategory(teamID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	cats, err := s.LoadCategories()
	if err != nil {
		return err
	}
	for _, c := range cats[teamID] {
		if strings.EqualFold(c, name) {
			return nil
		}
	}
	cats[teamID] = append(cats[teamID], name)
	sort.Strings(cats[teamID])
	return s.SaveCategories(cats)
}

// TeamCategories returns the team's saved categories.
func (s Store) TeamCategories(teamID string) ([]string, error) {
	cats, err := s.LoadCategories()
	if err != nil {
		return nil, err
	}
	return cats[teamID], nil
}
