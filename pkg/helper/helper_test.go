package helper_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tehprofessor/corg/pkg/helper"
)

func TestScript_FramedAndDefinesFunctions(t *testing.T) {
	t.Parallel()

	script := string(helper.Script())
	assert.True(t, strings.HasPrefix(script, "\n# - start logger:\n"))
	assert.True(t, strings.HasSuffix(script, "\n# - end logger:\n"))

	for _, fn := range helper.Functions {
		assert.Contains(t, script, fn+"() {", fn)
	}
}

func TestWrite(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "scripts", helper.DefaultPath)

	written, err := helper.Write(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, written)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, helper.Script(), got)

	written, err = helper.Write(context.Background(), path)
	require.NoError(t, err)
	assert.False(t, written)
}

func TestBundle(t *testing.T) {
	t.Parallel()

	script := []byte("\n}\n\n# - run doc: \nsetup")
	bundle := string(helper.Bundle(script))

	assert.True(t, strings.HasPrefix(bundle, string(helper.Script())))
	assert.True(t, strings.HasSuffix(bundle, string(script)))
}
