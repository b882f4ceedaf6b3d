package notifier

import (
	"fmt"
	"os/exec"
	"runtime"

	"stock-sentry/pkg/types"
)

// DesktopNotifier 系统桌面通知器
// macOS使用osascript，Linux使用notify-send，其他平台不支持
type DesktopNotifier struct{}

func NewDesktopNotifier() *DesktopNotifier {
	return &DesktopNotifier{}
}

func (dn *DesktopNotifier) SendAlert(alert *types.Alert) error {
	return dn.send(alertTitle(alert), alert.Message)
}

func (dn *DesktopNotifier) send(title, body string) error {
	switch runtime.GOOS {
	case "darwin":
		script := fmt.Sprintf(`display notification %q with title %q`, body, title)
		return exec.Command("osascript", "-e", script).Run()
	case "linux":
		return exec.Command("notify-send", title, body).Run()
	}
	return fmt.Errorf("不支持的平台: %s", runtime.GOOS)
}
