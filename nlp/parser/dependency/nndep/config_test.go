package nndep

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	filename := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(filename, []byte(content), 0o644))
	return filename
}

func TestLoadConfigProperties(t *testing.T) {
	filename := writeTemp(t, "train.properties", `
# training
trainingThreads = 4
hiddenSize=100
maxTime=90
dropProb: 0.25
unlabeled=true
punctuationTags=. ,
`)
	c, err := LoadConfig(filename)
	require.NoError(t, err)
	assert.Equal(t, 4, c.TrainingThreads)
	assert.Equal(t, 100, c.HiddenSize)
	assert.Equal(t, 90*time.Second, c.MaxTime)
	assert.Equal(t, 0.25, c.DropProb)
	assert.True(t, c.Unlabeled)
	assert.Equal(t, []string{".", ","}, c.PunctuationTags)
	assert.True(t, c.Punctuation().Contains(","))
	assert.False(t, c.Punctuation().Contains(":"))

	// untouched keys keep their defaults
	assert.Equal(t, DefaultConfig().BatchSize, c.BatchSize)
	assert.True(t, c.SingleRoot)
}

func TestLoadConfigYAML(t *testing.T) {
	filename := writeTemp(t, "train.yaml", `
embeddingSize: 25
maxTime: 1h30m
seed: 42
trainEmbeddings: false
punctuationTags: [".", ":"]
`)
	c, err := LoadConfig(filename)
	require.NoError(t, err)
	assert.Equal(t, 25, c.EmbeddingSize)
	assert.Equal(t, 90*time.Minute, c.MaxTime)
	assert.Equal(t, int64(42), c.Seed)
	assert.False(t, c.TrainEmbeddings)
	assert.Equal(t, []string{".", ":"}, c.PunctuationTags)
}

func TestLoadConfigDefaults(t *testing.T) {
	c, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), c)
	assert.NoError(t, c.Validate())
}

func TestConfigErrors(t *testing.T) {
	c := DefaultConfig()
	assert.Error(t, c.Set("hiddenSizes", "10"))
	assert.Error(t, c.Set("hiddenSize", "ten"))
	assert.Error(t, c.Set("maxTime", "soon"))
	assert.Error(t, c.Apply(map[string]string{"dropProb": "1"}))
	assert.Error(t, c.Apply(map[string]string{"batchSize": "0"}))

	_, err := LoadConfig(writeTemp(t, "bad.properties", "noSuchKey=1\n"))
	assert.Error(t, err)
	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.properties"))
	assert.Error(t, err)
}
