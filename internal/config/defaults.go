package config

// GetDefaults returns the default configuration values
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		"kimi_cmd":  "kimi",
		"kimi_args": []string{"--print"},
		"mode":      "oneshot",
		"workspace": ".",
		"timeout":   300,
		"api_key":   "",
		"log_level": "info",
	}
}
