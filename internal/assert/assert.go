// Package assert extends testify's assertions with golden-file comparison.
package assert

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Assert bundles testify assertions with the running test.
type Assert struct {
	*assert.Assertions
	T *testing.T
}

func New(t *testing.T) *Assert {
	return &Assert{Assertions: assert.New(t), T: t}
}

// EqualToGolden compares got with testdata/<TestName>_<name>.golden. With
// UPDATE_GOLDEN=true the file is rewritten from got instead.
func (a *Assert) EqualToGolden(name, got string) {
	a.T.Helper()
	path := filepath.Join("testdata", a.T.Name()+"_"+name+".golden")

	if os.Getenv("UPDATE_GOLDEN") == "true" {
		a.NoError(os.MkdirAll(filepath.Dir(path), 0o755))
		a.NoError(os.WriteFile(path, []byte(got), 0o644))
		return
	}

	want, err := os.ReadFile(path)
	if !a.NoError(err, "read golden file %s", path) {
		return
	}
	a.Equal(string(want), got, "output differs from %s", path)
}
