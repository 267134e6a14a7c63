// Package i18n renders localized error messages from the catalog "errors"
// namespace.
package i18n

import (
	"bytes"
	"strings"
	"sync"
	"text/template"

	i18ncatalog "github.com/louisbranch/cadastro/internal/platform/i18n/catalog"
)

const namespace = "errors"

// Catalog maps error codes to message templates for a specific locale.
type Catalog struct {
	templates map[string]*template.Template
	raw       map[string]string
}

var (
	catalogsMu sync.RWMutex
	catalogs   = map[string]*Catalog{}
)

// GetCatalog returns the catalog for the given locale, resolving unknown
// locales to the catalog base locale.
func GetCatalog(locale string) *Catalog {
	resolved, messages := i18ncatalog.Default().NamespaceMessagesWithFallback(locale, namespace)

	catalogsMu.RLock()
	cached, ok := catalogs[resolved]
	catalogsMu.RUnlock()
	if ok {
		return cached
	}

	built := NewCatalog(resolved, messages)
	catalogsMu.Lock()
	defer catalogsMu.Unlock()
	if existing, ok := catalogs[resolved]; ok {
		return existing
	}
	catalogs[resolved] = built
	return built
}

// NewCatalog creates a catalog from code to template text.
func NewCatalog(locale string, messages map[string]string) *Catalog {
	c := &Catalog{
		templates: make(map[string]*template.Template, len(messages)),
		raw:       make(map[string]string, len(messages)),
	}
	for code, text := range messages {
		c.raw[code] = text
		if t, err := template.New(locale + "/" + code).Option("missingkey=zero").Parse(text); err == nil {
			c.templates[code] = t
		}
	}
	return c
}

// Format renders the message template for code with metadata. Unknown codes
// render as the code itself; broken templates render as their raw text.
func (c *Catalog) Format(code string, metadata map[string]string) string {
	text, ok := c.raw[code]
	if !ok {
		return code
	}
	t, ok := c.templates[code]
	if !ok {
		return text
	}
	if metadata == nil {
		metadata = map[string]string{}
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, metadata); err != nil {
		return text
	}
	return strings.TrimSpace(buf.String())
}
