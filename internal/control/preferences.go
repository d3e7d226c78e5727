package control

import "github.com/nerrad567/earpanel-core/internal/infrastructure/config"

// Preferences are the panel-wide user settings.
type Preferences struct {
	AutoConnect      bool `json:"auto_connect"`
	Notifications    bool `json:"notifications"`
	LowBatteryAlert  bool `json:"low_battery_alert"`
	AutoUpdates      bool `json:"auto_updates"`
	HighQualityAudio bool `json:"high_quality_audio"`
}

// PreferencesFromConfig builds the initial preferences.
func PreferencesFromConfig(cfg config.PreferencesConfig) Preferences {
	return Preferences{
		AutoConnect:      cfg.AutoConnect,
		Notifications:    cfg.Notifications,
		LowBatteryAlert:  cfg.LowBatteryAlert,
		AutoUpdates:      cfg.AutoUpdates,
		HighQualityAudio: cfg.HighQualityAudio,
	}
}

// PreferencesPatch is a partial update. Nil fields are left unchanged.
type PreferencesPatch struct {
	AutoConnect      *bool `json:"auto_connect,omitempty"`
	Notifications    *bool `json:"notifications,omitempty"`
	LowBatteryAlert  *bool `json:"low_battery_alert,omitempty"`
	AutoUpdates      *bool `json:"auto_updates,omitempty"`
	HighQualityAudio *bool `json:"high_quality_audio,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p PreferencesPatch) Empty() bool {
	return p.AutoConnect == nil && p.Notifications == nil && p.LowBatteryAlert == nil &&
		p.AutoUpdates == nil && p.HighQualityAudio == nil
}

// Apply returns prefs with the patch applied.
func (p PreferencesPatch) Apply(prefs Preferences) Preferences {
	set := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	set(&prefs.AutoConnect, p.AutoConnect)
	set(&prefs.Notifications, p.Notifications)
	set(&prefs.LowBatteryAlert, p.LowBatteryAlert)
	set(&prefs.AutoUpdates, p.AutoUpdates)
	set(&prefs.HighQualityAudio, p.HighQualityAudio)
	return prefs
}
