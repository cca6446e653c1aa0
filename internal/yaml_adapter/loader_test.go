package yaml_adapter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/parsegrid/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestLoad_YAML(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	file := writeFile(t, "job.yaml", `
transformations:
  - origin: data/a.zip
    destiny: out/
    operationName: unzip
    parserTypeName: ZipFileParser
  - origin: data/b.xml
    operationName: xml_to_csv
    parserTypeName: XmlToCsvParser
    options:
      sourceBucket: scripts
      sourcePath: parsers/
      retries: 2
`)

	// --- Act ---
	job, err := NewLoader().Load(context.Background(), file)

	// --- Assert ---
	require.NoError(t, err)
	require.Len(t, job.Transformations, 2)
	assert.Equal(t, file+":3,5", job.Transformations[0].Source)
	assert.Equal(t, "ZipFileParser", job.Transformations[0].Fields[config.FieldParserType])
	assert.Equal(t, map[string]any{
		"sourceBucket": "scripts",
		"sourcePath":   "parsers/",
		"retries":      2,
	}, job.Transformations[1].Fields[config.FieldOptions])
}

func TestLoad_LegacyJSON(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	file := writeFile(t, "job_definition.json", `{
  "transformations": [
    {
      "object": {"origin": "s3://raw/a.zip", "destiny": "s3://clean/a/", "parser": "unzip", "classname": "ZipFileParser"},
      "kwargs": {"scripts_bucket": "scripts", "scripts_path": "parsers/", "password": "x"}
    }
  ]
}`)

	// --- Act ---
	job, err := NewLoader().Load(context.Background(), file)

	// --- Assert ---
	require.NoError(t, err)
	require.Len(t, job.Transformations, 1)
	assert.Equal(t, map[string]any{
		config.FieldOrigin:     "s3://raw/a.zip",
		config.FieldDestiny:    "s3://clean/a/",
		config.FieldOperation:  "unzip",
		config.FieldParserType: "ZipFileParser",
		config.FieldOptions: map[string]any{
			"sourceBucket": "scripts",
			"sourcePath":   "parsers/",
			"password":     "x",
		},
	}, job.Transformations[0].Fields)
}

func TestLoad_BareList(t *testing.T) {
	t.Parallel()

	file := writeFile(t, "job.yml", "- origin: a\n- origin: b\n")

	job, err := NewLoader().Load(context.Background(), file)

	require.NoError(t, err)
	require.Len(t, job.Transformations, 2)
	assert.Equal(t, "b", job.Transformations[1].Fields[config.FieldOrigin])
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	_, err := NewLoader().Load(context.Background(), writeFile(t, "bad.yaml", "transformations: [\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse job file")

	_, err = NewLoader().Load(context.Background(), writeFile(t, "scalar.yaml", "just a string\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected a mapping or a list")
}
