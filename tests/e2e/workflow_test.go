package e2e

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const (
	TEST_DISPATCH_INTERVAL_SEC = 1
	TEST_NOTIFICATION_TIMEOUT  = 90 * time.Second

	blueLightTitle = "Screens Off Soon"
)

func TestEndToEndWorkflow(t *testing.T) {
	// 1. Setup Environment
	// Allow overriding bin dir via env var, default to ../../bin (relative to tests/e2e)
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get cwd: %v", err)
	}

	binDir := os.Getenv("SLEEPR_BIN_DIR")
	if binDir == "" {
		binDir = filepath.Join(cwd, "..", "..", "bin")
	}
	binDir, _ = filepath.Abs(binDir)
	t.Logf("Using bin dir: %s", binDir)

	cliPath := filepath.Join(binDir, "sleepr")
	if _, err := os.Stat(cliPath); os.IsNotExist(err) {
		t.Skipf("CLI binary not found at %s. Please build it first.", cliPath)
	}

	// Create temp home for isolation
	tempDir := t.TempDir()
	t.Logf("Running test in temp dir: %s", tempDir)

	var cleanEnv []string
	for _, e := range os.Environ() {
		if !strings.HasPrefix(e, "HOME=") && !strings.HasPrefix(e, "SLEEPR_") {
			cleanEnv = append(cleanEnv, e)
		}
	}
	cleanEnv = append(cleanEnv,
		fmt.Sprintf("HOME=%s", tempDir),
		"SLEEPR_NOTIFIER_SENDER=stdout",
		fmt.Sprintf("SLEEPR_DISPATCH_INTERVAL_SEC=%d", TEST_DISPATCH_INTERVAL_SEC),
	)

	dbPath := filepath.Join(tempDir, "sleepr", "sleepr.db")
	sleepr := func(args ...string) string {
		return runCmd(t, cliPath, cleanEnv, append([]string{"--config", dbPath}, args...)...)
	}

	// 2. Initialize CLI
	t.Log("Initializing CLI...")
	sleepr("init")

	// 3. Checklist and streak
	t.Log("Completing the checklist...")
	for _, habit := range []string{"goToBed", "avoidBlueLight", "roomTemp"} {
		sleepr("habit", "toggle", habit)
	}
	if out := sleepr("day", "complete"); !strings.Contains(out, "Day completed") {
		t.Fatalf("Unexpected day complete output: %s", out)
	}
	if out := sleepr("streak"); !strings.Contains(out, "Completed: 1 of 7 days") {
		t.Errorf("Unexpected streak output: %s", out)
	}

	// 4. Reminders: bedtime one hour after the next minute puts blue light at that minute.
	t.Log("Enabling notifications...")
	sleepr("notifications", "enable")

	fireAt := time.Now().Truncate(time.Minute).Add(time.Minute)
	bedtime := fireAt.Add(60 * time.Minute).Format("15:04")
	t.Logf("Setting bedtime to %s, expecting a reminder at %s", bedtime, fireAt.Format("15:04"))
	sleepr("bedtime", "set", bedtime)

	if out := sleepr("reminders"); !strings.Contains(out, fireAt.Format("15:04")) {
		t.Errorf("Reminder list does not mention %s:\n%s", fireAt.Format("15:04"), out)
	}

	// 5. Start the dispatcher (Background)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dispatchCmd := exec.CommandContext(ctx, cliPath, "--config", dbPath, "dispatch")
	dispatchCmd.Env = cleanEnv
	dispatchCmd.Dir = tempDir

	stdoutPipe, err := dispatchCmd.StdoutPipe()
	if err != nil {
		t.Fatalf("Failed to get stdout pipe: %v", err)
	}
	var stderrBuf bytes.Buffer
	dispatchCmd.Stderr = &stderrBuf

	if err := dispatchCmd.Start(); err != nil {
		t.Fatalf("Failed to start dispatcher: %v", err)
	}
	t.Log("Dispatcher started")

	defer func() {
		cancel()
		if err := dispatchCmd.Wait(); err != nil {
			t.Logf("Dispatcher exited with error: %v", err)
		}
		if t.Failed() {
			t.Logf("Dispatcher Stderr: %s", stderrBuf.String())
		}
	}()

	// 6. Monitor output for the reminder
	t.Log("Waiting for the blue light reminder...")
	doneCh := make(chan struct{})
	go func() {
		scanner := bufio.NewScanner(stdoutPipe)
		for scanner.Scan() {
			line := scanner.Text()
			if strings.Contains(line, blueLightTitle) {
				t.Logf("Found reminder: %s", line)
				close(doneCh)
				return
			}
		}
		if err := scanner.Err(); err != nil {
			t.Logf("Scanner error: %v", err)
		}
	}()

	select {
	case <-doneCh:
		t.Log("Verified notification flow!")
	case <-time.After(TEST_NOTIFICATION_TIMEOUT):
		t.Errorf("Timed out waiting for the blue light reminder")
	}
}

func runCmd(t *testing.T, path string, env []string, args ...string) string {
	t.Helper()
	cmd := exec.Command(path, args...)
	cmd.Env = env
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("Command %s %v failed: %v\nOutput: %s", path, args, err, out)
	}
	return string(out)
}
