package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	return home
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_Defaults(t *testing.T) {
	home := isolateHome(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultAppID, cfg.AppID)
	assert.Equal(t, "auto", cfg.Backend)
	assert.Equal(t, 10*time.Second, cfg.Wait)
	assert.Equal(t, 10*time.Second, cfg.Linger)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 100, cfg.MaxHistory)
	assert.Equal(t, 1, cfg.SubmitBurst)
	assert.Zero(t, cfg.SubmitRate)
	assert.Equal(t, filepath.Join(home, ".toastkit", "state"), cfg.StateDir)
}

func TestLoad_Priority(t *testing.T) {
	home := isolateHome(t)

	writeFile(t, filepath.Join(home, ".toastkit", "config.json"), `{
  "backend": "sim",
  "max_history": 5,
  "wait": "3s"
}`)
	local := filepath.Join(t.TempDir(), "toast.json")
	writeFile(t, local, `{"max_history": 7, "app_id": "Contoso.App"}`)
	t.Setenv("TOAST_APP_ID", "Env.App")

	cfg, err := Load(local)
	require.NoError(t, err)

	assert.Equal(t, "sim", cfg.Backend, "global value survives")
	assert.Equal(t, 7, cfg.MaxHistory, "local overrides global")
	assert.Equal(t, "Env.App", cfg.AppID, "env overrides local")
	assert.Equal(t, 3*time.Second, cfg.Wait)
}

func TestLoad_EnvDuration(t *testing.T) {
	isolateHome(t)
	t.Setenv("TOAST_LINGER", "45s")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, cfg.Linger)
}

func TestLoad_MissingLocal(t *testing.T) {
	isolateHome(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load local config")
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]struct {
		content string
		field   string
		msg     string
		line    int
	}{
		"unknown backend": {
			content: `{"backend": "growl"}`,
			field:   "backend",
			msg:     "must be one of: auto, sim, freedesktop, winrt",
		},
		"negative history": {
			content: `{"max_history": -1}`,
			field:   "max_history",
			msg:     "must be at least 0",
		},
		"empty app id": {
			content: `{"app_id": ""}`,
			field:   "app_id",
			msg:     "is required",
		},
		"syntax": {
			content: "{\n  \"backend\": \"sim\",\n  oops\n}",
			line:    3,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			isolateHome(t)
			local := filepath.Join(t.TempDir(), "toast.json")
			writeFile(t, local, tt.content)

			_, err := Load(local)
			require.Error(t, err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.field, verr.Field)
			if tt.msg != "" {
				assert.Equal(t, tt.msg, verr.Message)
			}
			assert.Equal(t, tt.line, verr.Line)
		})
	}
}

func TestValidateJSONSyntaxFromBytes(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateJSONSyntaxFromBytes([]byte(`{"a": 1}`), "c.json"))

	err := ValidateJSONSyntaxFromBytes([]byte("  \n"), "c.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty file")

	err = ValidateJSONSyntaxFromBytes([]byte(`[1, 2]`), "c.json")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "top level value must be an object", verr.Message)
	assert.Equal(t, 1, verr.Line)
}

func TestValidationError_Error(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "c.json:2:5: bad", (&ValidationError{FilePath: "c.json", Line: 2, Column: 5, Message: "bad"}).Error())
	assert.Equal(t, "c.json: field 'wait': too long", (&ValidationError{FilePath: "c.json", Field: "wait", Message: "too long"}).Error())
	assert.Equal(t, "c.json: permission denied", (&ValidationError{FilePath: "c.json", Message: "permission denied"}).Error())
}

func TestEnvTransform(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "max_history", envTransform("TOAST_MAX_HISTORY"))
	assert.Equal(t, "app_id", envTransform("TOAST_APP_ID"))
}

func TestExpandHomePath(t *testing.T) {
	home := isolateHome(t)
	assert.Equal(t, filepath.Join(home, "x", "y"), expandHomePath("~/x/y"))
	assert.Equal(t, "/abs/path", expandHomePath("/abs/path"))
	assert.Equal(t, "", expandHomePath(""))
}
