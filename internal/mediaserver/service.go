package mediaserver

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"time"

	"go.uber.org/zap"

	"plexvault/internal/logger"
)

const serviceCommandTimeout = 60 * time.Second

// DefaultServiceName returns the platform's registered service name for
// the media server.
func DefaultServiceName() string {
	switch runtime.GOOS {
	case "windows":
		return "PlexService"
	case "darwin":
		return "com.plexapp.plexmediaserver"
	default:
		return "plexmediaserver"
	}
}

// Controller starts and stops the media-server service through the
// platform's service manager. Callers treat every error as best-effort:
// a missing service must never abort a backup.
type Controller struct {
	service string
}

func NewController(service string) *Controller {
	return &Controller{service: service}
}

func (c *Controller) Stop(ctx context.Context) error {
	return c.run(ctx, "stop")
}

func (c *Controller) Start(ctx context.Context) error {
	return c.run(ctx, "start")
}

func (c *Controller) run(ctx context.Context, action string) error {
	name, args := c.command(action)

	ctx, cancel := context.WithTimeout(ctx, serviceCommandTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("service %s %s: %w (%s)", action, c.service, err, string(out))
	}

	logger.Log.Info("service command finished",
		zap.String("action", action),
		zap.String("service", c.service))

	return nil
}

func (c *Controller) command(action string) (string, []string) {
	switch runtime.GOOS {
	case "windows":
		return "net", []string{action, c.service}
	case "darwin":
		verb := "load"
		if action == "stop" {
			verb = "unload"
		}
		return "launchctl", []string{verb, "/Library/LaunchDaemons/" + c.service + ".plist"}
	default:
		return "systemctl", []string{action, c.service}
	}
}
