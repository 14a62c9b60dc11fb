package ops

import (
	"fmt"
	"strings"

	"gjira/internal/errors"
	"gjira/internal/store"
)

// settingKeys is the closed set of configurable settings.
var settingKeys = []string{store.KeyEmail, store.KeyAPIToken, store.KeyTemplate}

// SettingsSetInput contains parameters for the SettingsSet operation.
type SettingsSetInput struct {
	Key   string
	Value string
}

// SettingsSetOutput contains the result of the SettingsSet operation.
type SettingsSetOutput struct {
	Key string `json:"key"`
	Set bool   `json:"set"`
}

// SettingsSet stores a setting value. Keys outside the known set are
// rejected so a typo cannot silently create a dead setting.
func SettingsSet(env *Env, input SettingsSetInput) (*SettingsSetOutput, error) {
	key, err := checkSettingKey(input.Key)
	if err != nil {
		return nil, err
	}
	value := strings.TrimSpace(input.Value)
	if value == "" {
		return nil, errors.NewInvalidRequest("value is required")
	}
	if key == store.KeyEmail && !strings.Contains(value, "@") {
		return nil, errors.NewInvalidRequest("email must be an email address")
	}
	if key == store.KeyTemplate {
		if err := validateTemplate(value); err != nil {
			return nil, err
		}
	}

	if err := store.SetSetting(env.DB, key, value); err != nil {
		return nil, err
	}
	return &SettingsSetOutput{Key: key, Set: true}, nil
}

// SettingsUnsetInput contains parameters for the SettingsUnset operation.
type SettingsUnsetInput struct {
	Key string
}

// SettingsUnset removes a setting. Removing an absent key succeeds.
func SettingsUnset(env *Env, input SettingsUnsetInput) (*SettingsSetOutput, error) {
	key, err := checkSettingKey(input.Key)
	if err != nil {
		return nil, err
	}
	if err := store.UnsetSetting(env.DB, key); err != nil {
		return nil, err
	}
	return &SettingsSetOutput{Key: key, Set: false}, nil
}

// SettingsListOutput contains the result of the SettingsList operation.
type SettingsListOutput struct {
	Settings map[string]string `json:"settings"`
}

// SettingsList returns every stored setting. The API token is masked; it can
// be replaced or removed but never read back.
func SettingsList(env *Env) (*SettingsListOutput, error) {
	settings, err := store.AllSettings(env.DB)
	if err != nil {
		return nil, err
	}
	if _, ok := settings[store.KeyAPIToken]; ok {
		settings[store.KeyAPIToken] = "********"
	}
	return &SettingsListOutput{Settings: settings}, nil
}

// checkSettingKey normalizes and validates a setting key.
func checkSettingKey(key string) (string, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, known := range settingKeys {
		if key == known {
			return key, nil
		}
	}
	return "", errors.NewInvalidRequest(fmt.Sprintf("unknown setting %q; known settings: %s", key, strings.Join(settingKeys, ", ")))
}

// validateTemplate sanity-checks a stored comment template. Unknown
// placeholders are legal (they render verbatim), so only the size is capped.
func validateTemplate(tmpl string) error {
	if len(tmpl) > 4000 {
		return errors.NewInvalidRequest("template too long (max 4000 characters)")
	}
	return nil
}
