package versioninfo

import (
	"context"
	"strings"
)

// Preferences are the three display toggles.
type Preferences struct {
	ShowFooter          bool
	ShowAdminBar        bool
	ShowDashboardWidget bool
}

// DefaultPreferences shows the footer only.
func DefaultPreferences() Preferences {
	return Preferences{ShowFooter: true}
}

// Preferences reads the stored toggles. Unset options and read errors fall
// back to the defaults.
func (s *Service) Preferences(ctx context.Context) Preferences {
	d := DefaultPreferences()
	return Preferences{
		ShowFooter:          s.option(ctx, OptionShowFooter, d.ShowFooter),
		ShowAdminBar:        s.option(ctx, OptionShowAdminBar, d.ShowAdminBar),
		ShowDashboardWidget: s.option(ctx, OptionShowDashboardWidget, d.ShowDashboardWidget),
	}
}

func (s *Service) option(ctx context.Context, key string, def bool) bool {
	if s.settings == nil {
		return def
	}
	v, ok, err := s.settings.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to read option")
		return def
	}
	if !ok {
		return def
	}
	return ValidateBool(v)
}

// ValidateBool coerces input to a boolean. "1", "true", "on" and "yes"
// (any case, surrounding space ignored), non-zero integers and true are
// true; everything else is false.
func ValidateBool(input any) bool {
	switch v := input.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "on", "yes":
			return true
		}
		return false
	case []string:
		return len(v) > 0 && ValidateBool(v[0])
	case int:
		return v != 0
	case int8:
		return v != 0
	case int16:
		return v != 0
	case int32:
		return v != 0
	case int64:
		return v != 0
	case uint:
		return v != 0
	case uint8:
		return v != 0
	case uint16:
		return v != 0
	case uint32:
		return v != 0
	case uint64:
		return v != 0
	default:
		return false
	}
}
