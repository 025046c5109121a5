// Package notifier delivers best-effort desktop notifications to a
// companion tray process. It is a named external collaborator, not part
// of the scheduling core: callers log and continue on failure rather
// than aborting a command.
package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/willdone/timeline-core/internal/constants"
	"github.com/willdone/timeline-core/internal/coreerrors"
)

var (
	userConfigDirFunc = os.UserConfigDir
	findProcessFunc   = ps.FindProcess
)

type Notifier struct{}

type WebhookPayload struct {
	Text       string `json:"text"`
	DurationMs uint32 `json:"duration_ms"`
}

func New() *Notifier {
	return &Notifier{}
}

// Notify posts text to the tray process's local webhook, if one is running.
func (n *Notifier) Notify(text string) error {
	trayConfigDir, err := GetTrayAppConfigDir()
	if err != nil {
		return err
	}

	port, secret, err := findAndValidateTrayProcess(filepath.Join(trayConfigDir, constants.NotifierLockfileName))
	if err != nil {
		return err
	}

	payload := WebhookPayload{
		Text:       text,
		DurationMs: constants.NotificationDurationMs,
	}

	return sendNotification(port, secret, payload)
}

// GetTrayAppConfigDir returns the configuration directory used by the tray application.
func GetTrayAppConfigDir() (string, error) {
	configDir, err := userConfigDirFunc()
	if err != nil {
		return "", coreerrors.Wrap(coreerrors.IoFailure, fmt.Errorf("failed to get user config dir: %w", err))
	}

	trayConfigDir := filepath.Join(configDir, constants.TrayAppIdentifier)

	settingsPath := filepath.Join(trayConfigDir, "settings.json")
	if data, err := os.ReadFile(settingsPath); err == nil {
		var store struct {
			Settings struct {
				LockfileDir *string `json:"lockfile_dir"`
			} `json:"settings"`
		}
		if err := json.Unmarshal(data, &store); err == nil {
			if store.Settings.LockfileDir != nil && *store.Settings.LockfileDir != "" {
				return *store.Settings.LockfileDir, nil
			}
		}
	}

	return trayConfigDir, nil
}

func findAndValidateTrayProcess(lockfilePath string) (string, string, error) {
	content, err := os.ReadFile(lockfilePath)
	if err != nil {
		return "", "", coreerrors.New(coreerrors.NotFound, "willdone-tray is not running")
	}

	parts := strings.Split(strings.TrimSpace(string(content)), "|")
	if len(parts) != 3 {
		return "", "", coreerrors.New(coreerrors.IoFailure, "lockfile is malformed")
	}

	port := parts[0]
	if strings.TrimSpace(port) == "" {
		return "", "", coreerrors.New(coreerrors.IoFailure, "port in lockfile is empty")
	}
	portNum, err := strconv.Atoi(port)
	if err != nil {
		return "", "", coreerrors.New(coreerrors.IoFailure, "invalid port number in lockfile")
	}
	if portNum < 1 || portNum > 65535 {
		return "", "", coreerrors.Newf(coreerrors.IoFailure, "port number %d is outside valid range (1-65535)", portNum)
	}

	pid, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", "", coreerrors.New(coreerrors.IoFailure, "invalid process ID in lockfile")
	}
	secret := parts[2]
	if strings.TrimSpace(secret) == "" {
		return "", "", coreerrors.New(coreerrors.IoFailure, "secret in lockfile is empty")
	}

	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return "", "", coreerrors.New(coreerrors.NotFound, "willdone-tray process not running")
	}

	if !strings.HasPrefix(process.Executable(), "willdone-tray") {
		return "", "", coreerrors.Newf(coreerrors.NotFound, "process with PID %d is not willdone-tray (is %s)", pid, process.Executable())
	}

	return port, secret, nil
}

func sendNotification(port string, secret string, payload WebhookPayload) error {
	url := fmt.Sprintf("http://127.0.0.1:%s", port)

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return coreerrors.Wrap(coreerrors.Internal, err)
	}

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return coreerrors.Wrap(coreerrors.NetworkFailure, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Willdone-Secret", secret)

	client := &http.Client{}
	res, err := client.Do(req)
	if err != nil {
		return coreerrors.Wrap(coreerrors.NetworkFailure, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}

	body, _ := io.ReadAll(res.Body)
	return coreerrors.Newf(coreerrors.NetworkFailure, "notification failed with status %d: %s", res.StatusCode, string(body))
}
