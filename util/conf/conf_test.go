package conf

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadProperties(t *testing.T) {
	props, err := ReadProperties(strings.NewReader(`
# training
trainingThreads = 4
adaAlpha=0.01
punctuationTags: . , :
`))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"trainingThreads": "4",
		"adaAlpha":        "0.01",
		"punctuationTags": ". , :",
	}, props)
	assert.Equal(t, []string{"adaAlpha", "punctuationTags", "trainingThreads"}, Keys(props))
}

func TestReadPropertiesErrors(t *testing.T) {
	_, err := ReadProperties(strings.NewReader("justakey\n"))
	assert.Error(t, err)
	_, err = ReadProperties(strings.NewReader("a=1\na=2\n"))
	assert.Error(t, err)
}

func TestReadYAML(t *testing.T) {
	props, err := ReadYAML(strings.NewReader(`
hiddenSize: 200
regParameter: 1e-8
saveIntermediate: false
punctuationTags: [".", ","]
`))
	require.NoError(t, err)
	assert.Equal(t, "200", props["hiddenSize"])
	assert.Equal(t, "1e-08", props["regParameter"])
	assert.Equal(t, "false", props["saveIntermediate"])
	assert.Equal(t, ". ,", props["punctuationTags"])

	_, err = ReadYAML(strings.NewReader("nested:\n  a: 1\n"))
	assert.Error(t, err)

	empty, err := ReadYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	yamlFile := filepath.Join(dir, "train.yaml")
	require.NoError(t, os.WriteFile(yamlFile, []byte("maxIter: 10\n"), 0644))
	props, err := ReadFile(yamlFile)
	require.NoError(t, err)
	assert.Equal(t, "10", props["maxIter"])

	propFile := filepath.Join(dir, "train.properties")
	require.NoError(t, os.WriteFile(propFile, []byte("maxIter=11\n"), 0644))
	props, err = ReadFile(propFile)
	require.NoError(t, err)
	assert.Equal(t, "11", props["maxIter"])

	_, err = ReadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
