package browser

import (
	"os"
	"os/exec"
	"runtime"
)

var linuxChromes = []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser"}

// FindChrome on the FS, returns the binary and the temp dir for profiles.
// override is returned as is if set.
func FindChrome(override string) (string, string) {
	tmp := os.TempDir()
	if override != "" {
		return override, tmp
	}

	switch runtime.GOOS {
	case "windows":
		return "C:\\Program Files (x86)\\Google\\Chrome\\Application\\chrome.exe", tmp
	case "darwin":
		return "/Applications/Google Chrome.app/Contents/MacOS/Google Chrome", tmp
	case "linux":
		for _, name := range linuxChromes {
			if path, err := exec.LookPath(name); err == nil {
				return path, tmp
			}
		}
		return "/usr/bin/chromium-browser", tmp
	}
	return "", tmp
}

// ChromeExists returns true if the chrome binary FindChrome resolves is present
func ChromeExists(override string) bool {
	chrome, _ := FindChrome(override)
	if chrome == "" {
		return false
	}
	_, err := os.Stat(chrome)
	return err == nil
}
