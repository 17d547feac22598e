// Package browser opens the operator dashboard in the local browser.
package browser

import (
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// ErrUnsupportedURL is returned for anything but an absolute http(s) URL
var ErrUnsupportedURL = errors.New("browser: only absolute http and https URLs can be opened")

// Commander is an interface for executing commands (for testing)
type Commander interface {
	Start(name string, args ...string) error
}

// RealCommander executes actual commands
type RealCommander struct{}

// Start executes a command and starts it
func (RealCommander) Start(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

var defaultCommander Commander = RealCommander{}

// Open opens the specified URL in the default browser
func Open(rawURL string) error {
	return OpenWithCommander(rawURL, defaultCommander, runtime.GOOS)
}

// OpenWithCommander opens the URL using the specified commander and OS
func OpenWithCommander(rawURL string, commander Commander, goos string) error {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrUnsupportedURL
	}
	target := u.String()

	var name string
	var args []string
	switch goos {
	case "linux", "freebsd", "openbsd", "netbsd":
		name, args = "xdg-open", []string{target}
	case "darwin":
		name, args = "open", []string{target}
	case "windows":
		name, args = "rundll32", []string{"url.dll,FileProtocolHandler", target}
	default:
		return fmt.Errorf("unsupported platform: %s", goos)
	}

	return commander.Start(name, args...)
}

// DashboardURL is the local address of the operator dashboard
func DashboardURL(port int) string {
	return fmt.Sprintf("http://localhost:%d/", port)
}
