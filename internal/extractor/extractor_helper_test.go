package extractor_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleHTML = "../../resources/fixtures/sample.html"

func readFixture(t *testing.T, file string) string {
	t.Helper()

	b, err := os.ReadFile(filepath.Clean(file))
	require.NoError(t, err, "could not read fixture")

	return string(b)
}
