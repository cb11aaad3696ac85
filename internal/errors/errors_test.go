package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{"config error", "E101", "Config file not found", CategoryConfig},
		{"routing error", "E202", "Unsupported framework", CategoryRouting},
		{"cli error", "E301", "Server failed", CategoryCLI},
		{"unknown error code", "E999", "Unknown error", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			assert.Equal(t, tt.wantMsg, err.Message)
			assert.Equal(t, tt.wantCat, err.Category)
			assert.Equal(t, tt.code, err.Code)
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryRouting, "route %q failed", "/users")

	assert.Equal(t, `route "/users" failed`, err.Message)
	assert.Empty(t, err.Code)
	assert.Equal(t, `route "/users" failed`, err.Error())
}

func TestErrorWrap(t *testing.T) {
	cause := fmt.Errorf("open watcher_config.yaml: %w", stderrors.New("permission denied"))
	err := New("E102").Wrap(cause)

	assert.ErrorIs(t, err, cause)
	assert.True(t, strings.HasPrefix(err.Error(), "E102: Invalid config file: open"), err.Error())
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil, "E301"))

	coded := New("E103")
	wrapped := fmt.Errorf("loading: %w", coded)
	assert.Same(t, coded, FromError(wrapped, "E301"))

	plain := stderrors.New("boom")
	got := FromError(plain, "E301")
	assert.Equal(t, "E301", got.Code)
	assert.Equal(t, plain, got.Wrapped)
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("serve: %w", New("E201"))
	assert.True(t, HasCode(err, "E201"), "HasCode should see through wrapping")
	assert.False(t, HasCode(err, "E202"))
	assert.False(t, HasCode(stderrors.New("x"), "E201"))
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("E103").
		WithLocation("watcher_config.yaml").
		Wrap(stderrors.New("no stream_folder key"))

	out := err.Format()
	for _, want := range []string{
		"ERROR E103: Route folder not configured",
		"  watcher_config.yaml",
		"Cause: no stream_folder key",
		"Hint: Add e.g. http_folder",
	} {
		assert.Contains(t, out, want)
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("E201").WithLocation("app/routes/http")
	assert.Equal(t, "app/routes/http: E201: Routes root not found", err.FormatCompact())
}

func TestFprint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	Fprint(&buf, fmt.Errorf("wrapped: %w", New("E302")))
	assert.Contains(t, buf.String(), "ERROR E302: No commands registered")

	buf.Reset()
	Fprint(&buf, stderrors.New("plain failure"))
	assert.Contains(t, buf.String(), "ERROR: plain failure")
}

func TestWrapText(t *testing.T) {
	for _, line := range wrapText(strings.Repeat("word ", 30), 20) {
		assert.LessOrEqual(t, len(line), 20, line)
	}
	assert.Nil(t, wrapText("", 10))
}

func TestRegistryCodes(t *testing.T) {
	for code, tmpl := range registry {
		assert.True(t, strings.HasPrefix(code, "E") && len(code) == 4, "bad code %q", code)
		assert.NotEmpty(t, tmpl.Message, code)

		_, ok := Lookup(code)
		require.True(t, ok, code)
	}
}
