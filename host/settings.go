package host

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/url"
	"strconv"
	"strings"
	"sync"
)

// ErrUnknownSettingsGroup is returned when saving a group nothing registered.
var ErrUnknownSettingsGroup = errors.New("unknown settings group")

// OptionStore is the persistence behind registered settings.
type OptionStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Sanitizer converts submitted input into the value to persist. Input is the
// trimmed form string, or nil when the field was not submitted.
type Sanitizer func(input any) any

// SettingArgs configures a registered setting.
type SettingArgs struct {
	Sanitize Sanitizer
	Default  any
}

type registeredSetting struct {
	group string
	key   string
	args  SettingArgs
}

// SettingsRegistry tracks which options belong to which settings group and
// saves submitted groups through an OptionStore.
type SettingsRegistry struct {
	store OptionStore

	mu       sync.RWMutex
	settings map[string]registeredSetting
	groups   map[string][]string
}

// NewSettingsRegistry creates a registry persisting to store.
func NewSettingsRegistry(store OptionStore) *SettingsRegistry {
	return &SettingsRegistry{
		store:    store,
		settings: make(map[string]registeredSetting),
		groups:   make(map[string][]string),
	}
}

// Register adds key to group. Registering a key again replaces its args.
func (r *SettingsRegistry) Register(group, key string, args SettingArgs) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.settings[key]; !exists {
		r.groups[group] = append(r.groups[group], key)
	}
	r.settings[key] = registeredSetting{group: group, key: key, args: args}
}

// Keys returns the keys registered in group in registration order.
func (r *SettingsRegistry) Keys(group string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.groups[group]...)
}

// Default returns the registered default for key.
func (r *SettingsRegistry) Default(key string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.settings[key]
	if !ok {
		return nil, false
	}
	return s.args.Default, true
}

// Get reads a stored option.
func (r *SettingsRegistry) Get(ctx context.Context, key string) (string, bool, error) {
	return r.store.Get(ctx, key)
}

// Save sanitizes and persists every option of group from form. Options that
// are registered but absent from form are saved with nil input, so unchecked
// checkboxes become false.
func (r *SettingsRegistry) Save(ctx context.Context, group string, form url.Values) error {
	r.mu.RLock()
	keys := append([]string(nil), r.groups[group]...)
	settings := make([]registeredSetting, 0, len(keys))
	for _, k := range keys {
		settings = append(settings, r.settings[k])
	}
	r.mu.RUnlock()

	if len(settings) == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownSettingsGroup, group)
	}

	for _, s := range settings {
		var input any
		if values, ok := form[s.key]; ok && len(values) > 0 {
			input = strings.TrimSpace(values[0])
		}
		value := input
		if s.args.Sanitize != nil {
			value = s.args.Sanitize(input)
		}
		if err := r.store.Set(ctx, s.key, encodeOption(value)); err != nil {
			return fmt.Errorf("failed to save option %s: %w", s.key, err)
		}
	}
	return nil
}

// Fields renders the hidden inputs the options-save endpoint needs for group.
func (r *SettingsRegistry) Fields(group string, nonces NonceBinder, referer string) template.HTML {
	var b strings.Builder
	b.WriteString(`<input type="hidden" name="option_page" value="` + template.HTMLEscapeString(group) + `" />`)
	b.WriteString(`<input type="hidden" name="action" value="update" />`)
	b.WriteString(string(nonces.Field(OptionsNonceAction(group), "_wpnonce")))
	if referer != "" {
		b.WriteString(`<input type="hidden" name="_wp_http_referer" value="` + template.HTMLEscapeString(referer) + `" />`)
	}
	return template.HTML(b.String())
}

// OptionsNonceAction is the nonce action protecting saves of group.
func OptionsNonceAction(group string) string {
	return group + "-options"
}

func encodeOption(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case bool:
		if val {
			return "1"
		}
		return "0"
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	default:
		return fmt.Sprint(val)
	}
}
