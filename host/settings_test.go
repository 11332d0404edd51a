package host

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
)

type memStore struct {
	values map[string]string
	sets   int
}

func newMemStore() *memStore {
	return &memStore{values: make(map[string]string)}
}

func (m *memStore) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memStore) Set(_ context.Context, key, value string) error {
	m.sets++
	m.values[key] = value
	return nil
}

func truthy(v any) any {
	s, _ := v.(string)
	return s == "1"
}

func TestSettingsRegistry_Save(t *testing.T) {
	store := newMemStore()
	r := NewSettingsRegistry(store)
	r.Register("grp", "a", SettingArgs{Sanitize: truthy})
	r.Register("grp", "b", SettingArgs{Sanitize: truthy, Default: false})
	r.Register("other", "c", SettingArgs{})

	form := url.Values{"a": {" 1 "}, "c": {"ignored"}}
	if err := r.Save(context.Background(), "grp", form); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if store.values["a"] != "1" {
		t.Fatalf("a = %q, want 1", store.values["a"])
	}
	if store.values["b"] != "0" {
		t.Fatalf("absent b = %q, want 0", store.values["b"])
	}
	if _, ok := store.values["c"]; ok {
		t.Fatalf("option from another group was saved")
	}
	if got := r.Keys("grp"); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("Keys = %v", got)
	}
	if d, ok := r.Default("b"); !ok || d != false {
		t.Fatalf("Default(b) = %v, %v", d, ok)
	}
}

func TestSettingsRegistry_SaveUnknownGroup(t *testing.T) {
	store := newMemStore()
	r := NewSettingsRegistry(store)
	err := r.Save(context.Background(), "missing", url.Values{})
	if !errors.Is(err, ErrUnknownSettingsGroup) {
		t.Fatalf("err = %v, want ErrUnknownSettingsGroup", err)
	}
	if store.sets != 0 {
		t.Fatalf("store touched on unknown group")
	}
}

func TestSettingsRegistry_Fields(t *testing.T) {
	r := NewSettingsRegistry(newMemStore())
	b := NewNonces([]byte("k"), 0).For(1, "s")

	out := string(r.Fields("grp", b, "/admin/options-general?page=x"))
	for _, want := range []string{
		`name="option_page" value="grp"`,
		`name="action" value="update"`,
		`name="_wpnonce"`,
		`name="_wp_http_referer" value="/admin/options-general?page=x"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("Fields missing %s in %s", want, out)
		}
	}
	if !strings.Contains(out, b.Create(OptionsNonceAction("grp"))) {
		t.Fatalf("Fields nonce not bound to the group action")
	}
}
