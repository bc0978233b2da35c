package pathing

import (
	"log"
	"os"
	"path/filepath"
)

// Ensure directories exist on startup
func init() {
	// Directories that must exist:
	dirs := []string{
		GetDataDir(),
	}

	// Create all directories
	for _, dir := range dirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			err := os.MkdirAll(dir, 0755)
			if err != nil {
				log.Fatal(err)
			}
		}
	}
}

func GetPumpDbPath() string {
	return filepath.Join(GetDataDir(), "tubewell_data.db")
}

func GetHistorySnapshotPath() string {
	return filepath.Join(GetDataDir(), "history.json")
}

func GetDataDir() string {
	return "/var/lib/tubewell_monitor"
}

func GetConfigDir() string {
	return "/etc/tubewell_monitor"
}
