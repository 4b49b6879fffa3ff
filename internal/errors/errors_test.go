package errors

import (
	stderrors "errors"
	"os"
	"path/filepath"
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
		{
			name:    "runtime error",
			code:    "ST001",
			wantMsg: "Selector read before its first computation",
			wantCat: CategoryRuntime,
		},
		{
			name:    "config error",
			code:    "ST010",
			wantMsg: "Invalid configuration value",
			wantCat: CategoryConfig,
		},
		{
			name:    "unknown error code",
			code:    "ST999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
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
	err := Newf(CategoryCLI, "scenario %q not found", "z")
	assert.Equal(t, `scenario "z" not found`, err.Message)
	assert.Equal(t, CategoryCLI, err.Category)
	assert.Equal(t, `scenario "z" not found`, err.Error())
}

func TestError_Error(t *testing.T) {
	assert.Equal(t, "ST003: Store field written outside its store's Update", New("ST003").Error())
	assert.Equal(t, `ST003: Store field written outside its store's Update (field "a")`,
		New("ST003").WithDetail(`field "a"`).Error())
	assert.Equal(t, "plain", (&Error{Message: "plain"}).Error())
}

func TestError_WithLocation(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "store.go")
	content := "package demo\n\nfunc f() {\n\tgrid.cellSize.Set(4)\n}\n"
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0o644))

	err := New("ST003").WithLocation(tmpFile, 4, 2)
	require.NotNil(t, err.Location)
	assert.Equal(t, tmpFile, err.Location.File)
	assert.Equal(t, 4, err.Location.Line)
	assert.NotEmpty(t, err.Context)
}

func TestError_WithCaller(t *testing.T) {
	err := New("ST001").WithCaller(0)
	require.NotNil(t, err.Location)
	assert.True(t, strings.HasSuffix(err.Location.File, "errors_test.go"))
	assert.Positive(t, err.Location.Line)
}

func TestError_WrapAndIs(t *testing.T) {
	sentinel := stderrors.New("sentinel")
	err := New("ST005").Wrap(sentinel)

	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, sentinel, err.Unwrap())
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil, "ST011"))

	se := New("ST010")
	assert.Same(t, se, FromError(se, "ST011"))

	plain := stderrors.New("open statetrack.json: permission denied")
	wrapped := FromError(plain, "ST011")
	assert.Equal(t, "ST011", wrapped.Code)
	assert.ErrorIs(t, wrapped, plain)
}

func TestCode(t *testing.T) {
	assert.Equal(t, "", Code(nil))
	assert.Equal(t, "", Code(stderrors.New("x")))
	assert.Equal(t, "ST002", Code(New("ST002")))

	outer := &wrapper{inner: New("ST004")}
	assert.Equal(t, "ST004", Code(outer))
}

type wrapper struct{ inner error }

func (w *wrapper) Error() string { return "wrapped: " + w.inner.Error() }
func (w *wrapper) Unwrap() error { return w.inner }

func TestLocation_String(t *testing.T) {
	var nilLoc *Location
	assert.Equal(t, "", nilLoc.String())
	assert.Equal(t, "a.go:10:5", (&Location{File: "a.go", Line: 10, Column: 5}).String())
	assert.Equal(t, "a.go:10", (&Location{File: "a.go", Line: 10}).String())
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("ST003").
		WithLocation("store.go", 12, 0).
		WithDetail(`field "cellSize" of store "grid"`).
		WithSuggestion("Wrap the write in store.Update").
		Wrap(stderrors.New("write outside update"))

	formatted := err.Format()
	assert.Contains(t, formatted, "ERROR ST003: Store field written outside its store's Update")
	assert.Contains(t, formatted, "store.go:12")
	assert.Contains(t, formatted, `field "cellSize" of store "grid"`)
	assert.Contains(t, formatted, "Hint: Wrap the write in store.Update")
	assert.Contains(t, formatted, "Caused by: write outside update")
}

func TestFormatCompact(t *testing.T) {
	err := New("ST001").WithLocation("sel.go", 10, 5)
	assert.Equal(t, "sel.go:10:5: ST001: Selector read before its first computation", err.FormatCompact())
}

func TestFormatJSON(t *testing.T) {
	out := New("ST010").WithLocation("cfg.go", 3, 0).WithSuggestion("use 'throttle'").FormatJSON()

	assert.Contains(t, out, `"code":"ST010"`)
	assert.Contains(t, out, `"category":"config"`)
	assert.Contains(t, out, `"message":"Invalid configuration value"`)
	assert.Contains(t, out, `"location":{"file":"cfg.go","line":3}`)
	assert.Contains(t, out, `"suggestion":"use 'throttle'"`)
}

func TestRegistry(t *testing.T) {
	codes := GetAllCodes()
	require.NotEmpty(t, codes)
	assert.Equal(t, "ST001", codes[0])

	_, ok := GetTemplate("ST999")
	assert.False(t, ok)

	Register("ST999", ErrorTemplate{Category: CategoryRuntime, Message: "Custom test error"})
	defer delete(registry, "ST999")

	assert.Equal(t, "Custom test error", New("ST999").Message)
}

func TestWrapText(t *testing.T) {
	assert.Equal(t, []string{"short text"}, wrapText("short text", 100))
	assert.Nil(t, wrapText("", 10))

	lines := wrapText("one two three four five six", 10)
	for _, line := range lines {
		assert.LessOrEqual(t, len(line), 10)
	}
	assert.Equal(t, "one two three four five six", strings.Join(lines, " "))
}
