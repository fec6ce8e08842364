package formengine

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/benjaminschreck/go-formengine/pkg/formengine/doctree"
)

const templateExt = ".docx"

// TemplateInfo describes a template file.
type TemplateInfo struct {
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	Size         int64     `json:"size"`
	Modified     time.Time `json:"modified"`
	Placeholders []string  `json:"placeholders,omitempty"`
}

// TemplateStore resolves template names under a root directory.
type TemplateStore struct {
	dir        string
	tempPrefix string
	cache      *TemplateCache
}

// NewTemplateStore creates a store over dir. Files starting with tempPrefix
// are treated as editor lock files and never resolved or listed.
func NewTemplateStore(dir, tempPrefix string, cache *TemplateCache) *TemplateStore {
	if cache == nil {
		cache = NewTemplateCache(CacheConfig{})
	}
	return &TemplateStore{dir: dir, tempPrefix: tempPrefix, cache: cache}
}

// FileName normalizes a template name to its file name. "1b" and "1b.docx"
// both resolve to "1b.docx".
func (s *TemplateStore) FileName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return "", &TemplateNotFoundError{Name: name}
	}
	if s.tempPrefix != "" && strings.HasPrefix(name, s.tempPrefix) {
		return "", &TemplateNotFoundError{Name: name}
	}
	if !strings.EqualFold(filepath.Ext(name), templateExt) {
		name += templateExt
	}
	return name, nil
}

// Resolve returns the path of a template file.
func (s *TemplateStore) Resolve(name string) (string, error) {
	file, err := s.FileName(name)
	if err != nil {
		return "", err
	}
	path := filepath.Join(s.dir, file)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", &TemplateNotFoundError{Name: file}
	}
	return path, nil
}

// Load resolves a template and returns its path and contents.
func (s *TemplateStore) Load(name string) (string, []byte, error) {
	path, err := s.Resolve(name)
	if err != nil {
		return "", nil, err
	}
	data, err := s.cache.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil, &TemplateNotFoundError{Name: filepath.Base(path)}
	}
	if err != nil {
		return "", nil, &RenderError{Op: "load", Template: filepath.Base(path), Cause: err}
	}
	return path, data, nil
}

// List returns the available templates sorted by name.
func (s *TemplateStore) List() ([]TemplateInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []TemplateInfo{}, nil
	}
	if err != nil {
		return nil, Failure{Code: CodeListError, Message: fmt.Sprintf("list templates: %v", err)}
	}

	templates := []TemplateInfo{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(name), templateExt) {
			continue
		}
		if s.tempPrefix != "" && strings.HasPrefix(name, s.tempPrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		templates = append(templates, TemplateInfo{
			Name:     name,
			Path:     filepath.Join(s.dir, name),
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
	}

	sort.Slice(templates, func(i, j int) bool { return templates[i].Name < templates[j].Name })
	return templates, nil
}

// Info describes one template, including the placeholder names it contains.
func (s *TemplateStore) Info(name string) (*TemplateInfo, error) {
	path, data, err := s.Load(name)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, Failure{Code: CodeInfoError, Message: fmt.Sprintf("stat template: %v", err)}
	}
	doc, err := doctree.Open(data)
	if err != nil {
		return nil, Failure{Code: CodeInfoError, Message: fmt.Sprintf("open template %s: %v", filepath.Base(path), err)}
	}

	return &TemplateInfo{
		Name:         filepath.Base(path),
		Path:         path,
		Size:         info.Size(),
		Modified:     info.ModTime(),
		Placeholders: Placeholders(doc),
	}, nil
}
