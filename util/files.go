package util

import (
	"compress/gzip"
	"crypto/md5"
	"fmt"
	"io"
	"os"
	"strings"
)

func MD5File(fileName string) (string, error) {
	file, err := os.Open(fileName)
	if err != nil {
		return "", err
	}
	defer file.Close()

	md5 := md5.New()
	if _, err := io.Copy(md5, file); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", md5.Sum(nil)), nil
}

// IsGzip reports whether fileName should be read or written compressed.
func IsGzip(fileName string) bool {
	return strings.HasSuffix(fileName, ".gz")
}

type gzipReadCloser struct {
	*gzip.Reader
	file *os.File
}

func (g *gzipReadCloser) Close() error {
	g.Reader.Close()
	return g.file.Close()
}

// OpenFile opens fileName for reading, decompressing .gz files.
func OpenFile(fileName string) (io.ReadCloser, error) {
	file, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	if !IsGzip(fileName) {
		return file, nil
	}
	reader, err := gzip.NewReader(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	return &gzipReadCloser{reader, file}, nil
}

type gzipWriteCloser struct {
	*gzip.Writer
	file *os.File
}

func (g *gzipWriteCloser) Close() error {
	if err := g.Writer.Close(); err != nil {
		g.file.Close()
		return err
	}
	return g.file.Close()
}

// CreateFile creates fileName for writing, compressing .gz files.
func CreateFile(fileName string) (io.WriteCloser, error) {
	file, err := os.Create(fileName)
	if err != nil {
		return nil, err
	}
	if !IsGzip(fileName) {
		return file, nil
	}
	return &gzipWriteCloser{gzip.NewWriter(file), file}, nil
}
