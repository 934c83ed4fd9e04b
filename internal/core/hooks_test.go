package core_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"modman/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, name, body string, perm os.FileMode) string {
	t.Helper()
	scriptPath := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(scriptPath, []byte("#!/bin/sh\n"+body), perm))
	return scriptPath
}

func TestHookRunner_Success(t *testing.T) {
	scriptPath := writeScript(t, "success.sh", "echo \"stdout message\"\necho \"stderr message\" >&2\nexit 0\n", 0755)

	runner := core.NewHookRunner(60 * time.Second)
	result, err := runner.Run(context.Background(), scriptPath, core.HookContext{HookName: "update.before_all"})
	require.NoError(t, err)
	assert.Contains(t, result.Stdout, "stdout message")
	assert.Contains(t, result.Stderr, "stderr message")
	assert.Equal(t, 0, result.ExitCode)
}

func TestHookRunner_NonZeroExit(t *testing.T) {
	scriptPath := writeScript(t, "fail.sh", "echo \"error occurred\" >&2\nexit 42\n", 0755)

	runner := core.NewHookRunner(60 * time.Second)
	result, err := runner.Run(context.Background(), scriptPath, core.HookContext{HookName: "test.hook"})
	require.Error(t, err)
	assert.Equal(t, 42, result.ExitCode)
	assert.Contains(t, result.Stderr, "error occurred")
}

func TestHookRunner_Timeout(t *testing.T) {
	scriptPath := writeScript(t, "slow.sh", "sleep 10\n", 0755)

	runner := core.NewHookRunner(100 * time.Millisecond)
	_, err := runner.Run(context.Background(), scriptPath, core.HookContext{HookName: "test.hook"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}

func TestHookRunner_NotFound(t *testing.T) {
	runner := core.NewHookRunner(60 * time.Second)
	_, err := runner.Run(context.Background(), "/nonexistent/script.sh", core.HookContext{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestHookRunner_NotExecutable(t *testing.T) {
	scriptPath := writeScript(t, "noexec.sh", "echo hi\n", 0644)

	runner := core.NewHookRunner(60 * time.Second)
	_, err := runner.Run(context.Background(), scriptPath, core.HookContext{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not executable")
}

func TestHookRunner_EnvVars(t *testing.T) {
	scriptPath := writeScript(t, "env.sh", `echo "PROFILE=$MODMAN_PROFILE"
echo "PROFILE_DIR=$MODMAN_PROFILE_DIR"
echo "MOD_NAME=$MODMAN_MOD_NAME"
echo "SOURCE_URL=$MODMAN_SOURCE_URL"
echo "HOOK=$MODMAN_HOOK"
`, 0755)

	runner := core.NewHookRunner(60 * time.Second)
	hc := core.HookContext{
		Profile:    "Modded",
		ProfileDir: "/games/mods",
		ModName:    "Cool.pak",
		SourceURL:  "https://mod.io/g/game/m/cool",
		HookName:   "install.after_each",
	}

	result, err := runner.Run(context.Background(), scriptPath, hc)
	require.NoError(t, err)
	assert.Contains(t, result.Stdout, "PROFILE=Modded")
	assert.Contains(t, result.Stdout, "PROFILE_DIR=/games/mods")
	assert.Contains(t, result.Stdout, "MOD_NAME=Cool.pak")
	assert.Contains(t, result.Stdout, "SOURCE_URL=https://mod.io/g/game/m/cool")
	assert.Contains(t, result.Stdout, "HOOK=install.after_each")
}
