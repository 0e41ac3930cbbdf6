// Package i18n provides the message catalog used to turn validation codes
// into human readable text. Messages are go-i18n templates; the catalog ships
// English and Spanish and accepts further locales at runtime.
package i18n

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.toml
var builtinLocales embed.FS

// LocalesFS exposes the embedded go-i18n message files (active.<locale>.toml)
// so callers can use them as a starting point for new translations.
func LocalesFS() fs.FS {
	sub, err := fs.Sub(builtinLocales, "locales")
	if err != nil {
		return builtinLocales
	}
	return sub
}

// FallbackLocale is consulted when the requested locale lacks a key.
const FallbackLocale = "en"

// ErrUnknownLocale is returned when a locale cannot be parsed as a BCP 47 tag.
var ErrUnknownLocale = errors.New("i18n: unknown locale")

// Translator resolves a message key for a locale, interpolating params.
// Implementations never fail: a missing key yields a placeholder.
type Translator interface {
	Translate(locale, key string, params map[string]any) string
}

// TranslatorFunc adapts a function into a Translator.
type TranslatorFunc func(locale, key string, params map[string]any) string

// Translate delegates to the underlying function.
func (fn TranslatorFunc) Translate(locale, key string, params map[string]any) string {
	return fn(locale, key, params)
}

// MissingHandler produces the text for a key that no locale defines.
type MissingHandler func(locale, key string, params map[string]any) string

// Placeholder is the default MissingHandler: "!(key)".
func Placeholder(_ string, key string, _ map[string]any) string {
	return "!(" + key + ")"
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithDefaultLocale sets the locale used when Translate receives "".
func WithDefaultLocale(locale string) Option {
	return func(c *Catalog) {
		if locale = strings.TrimSpace(locale); locale != "" {
			c.defaultLocale = locale
		}
	}
}

// WithMessageFiles loads extra go-i18n message files (TOML) after the
// built-in catalogs. The locale comes from the file name (active.fr.toml).
func WithMessageFiles(paths ...string) Option {
	return func(c *Catalog) {
		c.files = append(c.files, paths...)
	}
}

// WithMissingHandler overrides the placeholder for keys missing everywhere.
func WithMissingHandler(handler MissingHandler) Option {
	return func(c *Catalog) {
		if handler != nil {
			c.onMissing = handler
		}
	}
}

// Catalog is a concurrency-safe Translator backed by a go-i18n bundle.
type Catalog struct {
	mu            sync.RWMutex
	bundle        *goi18n.Bundle
	messages      map[string]map[string]string
	defaultLocale string
	onMissing     MissingHandler
	files         []string
}

// New builds a catalog with the embedded English and Spanish messages.
func New(opts ...Option) (*Catalog, error) {
	bundle := goi18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	c := &Catalog{
		bundle:        bundle,
		messages:      make(map[string]map[string]string),
		defaultLocale: FallbackLocale,
		onMissing:     Placeholder,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	entries, err := builtinLocales.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("i18n: read embedded locales: %w", err)
	}
	for _, entry := range entries {
		name := path.Join("locales", entry.Name())
		data, err := builtinLocales.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("i18n: read %s: %w", name, err)
		}
		if err := c.parse(data, entry.Name()); err != nil {
			return nil, err
		}
	}
	for _, file := range c.files {
		if err := c.LoadFile(file); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// MustNew is New that panics on error. The embedded catalogs are always
// valid, so this only fails for bad WithMessageFiles paths.
func MustNew(opts ...Option) *Catalog {
	c, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return c
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns a process-wide catalog with the built-in locales.
func Default() *Catalog {
	defaultOnce.Do(func() {
		defaultCatalog = MustNew()
	})
	return defaultCatalog
}

// LoadFile parses a go-i18n message file from disk and merges it.
func (c *Catalog) LoadFile(filename string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	file, err := c.bundle.LoadMessageFile(filename)
	if err != nil {
		return fmt.Errorf("i18n: load %s: %w", filename, err)
	}
	c.record(file.Tag, file.Messages)
	return nil
}

func (c *Catalog) parse(data []byte, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	file, err := c.bundle.ParseMessageFileBytes(data, name)
	if err != nil {
		return fmt.Errorf("i18n: parse %s: %w", name, err)
	}
	c.record(file.Tag, file.Messages)
	return nil
}

// record mirrors parsed messages into the plain map used by Messages.
// Callers hold the write lock.
func (c *Catalog) record(tag language.Tag, messages []*goi18n.Message) {
	locale := tag.String()
	bucket := c.messages[locale]
	if bucket == nil {
		bucket = make(map[string]string, len(messages))
		c.messages[locale] = bucket
	}
	for _, msg := range messages {
		bucket[msg.ID] = msg.Other
	}
}

// RegisterLocale adds a locale or merges messages into an existing one. New
// keys are added and existing keys overwritten.
func (c *Catalog) RegisterLocale(locale string, messages map[string]string) error {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrUnknownLocale, locale, err)
	}

	keys := make([]string, 0, len(messages))
	for key := range messages {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parsed := make([]*goi18n.Message, 0, len(keys))
	for _, key := range keys {
		parsed = append(parsed, &goi18n.Message{ID: key, Other: messages[key]})
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.bundle.AddMessages(tag, parsed...); err != nil {
		return fmt.Errorf("i18n: register %s: %w", locale, err)
	}
	c.record(tag, parsed)
	return nil
}

// Locales lists the available locales, sorted.
func (c *Catalog) Locales() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, 0, len(c.messages))
	for locale := range c.messages {
		out = append(out, locale)
	}
	sort.Strings(out)
	return out
}

// HasLocale reports whether messages were registered for locale.
func (c *Catalog) HasLocale(locale string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.messages[canonical(locale)]
	return ok
}

// Messages returns a copy of a locale's raw templates. Unknown locales return
// the English catalog.
func (c *Catalog) Messages(locale string) map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	bucket, ok := c.messages[canonical(locale)]
	if !ok {
		bucket = c.messages[FallbackLocale]
	}
	out := make(map[string]string, len(bucket))
	for key, value := range bucket {
		out[key] = value
	}
	return out
}

// DefaultLocale returns the locale used for empty locale arguments.
func (c *Catalog) DefaultLocale() string {
	return c.defaultLocale
}

// Translate implements Translator. Lookup order is the requested locale, then
// English, then the missing handler.
func (c *Catalog) Translate(locale, key string, params map[string]any) string {
	if strings.TrimSpace(locale) == "" {
		locale = c.defaultLocale
	}
	cfg := &goi18n.LocalizeConfig{MessageID: key, TemplateData: params}

	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, candidate := range []string{locale, FallbackLocale} {
		text, err := goi18n.NewLocalizer(c.bundle, candidate).Localize(cfg)
		if err == nil {
			return text
		}
	}
	return c.onMissing(locale, key, params)
}

func canonical(locale string) string {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		return locale
	}
	return tag.String()
}
