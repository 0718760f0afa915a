package config

import "time"

// DefaultAppID is the AppUserModelID of Windows PowerShell. It is present on
// every Windows install, so toasts show without a custom installer.
const DefaultAppID = `{1AC14E77-02E7-4E5D-B744-2EB1AE5198B7}\WindowsPowerShell\v1.0\powershell.exe`

// GetDefaults returns the default configuration values
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		"app_id":       DefaultAppID,
		"backend":      "auto",
		"wait":         10 * time.Second,
		"linger":       10 * time.Second,
		"log_level":    "warn",
		"log_file":     "",
		"state_dir":    "~/.toastkit/state",
		"max_history":  100,
		"submit_rate":  0.0,
		"submit_burst": 1,
	}
}
