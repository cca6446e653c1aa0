package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// BaseManifest is a base contract manifest listing the required capabilities.
const BaseManifest = `
contract "BaseParser" {
  capabilities = ["process", "available_operations"]
}
`

// ParserManifest returns a manifest binding typeName to constructor.
func ParserManifest(typeName, constructor string) string {
	return fmt.Sprintf(`
parser %q {
  description = "test parser"
  implements  = "BaseParser"

  lifecycle {
    on_new = %q
  }
}
`, typeName, constructor)
}

// WriteFiles writes files (relative path -> content) under dir, creating
// subdirectories as needed.
func WriteFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
}
