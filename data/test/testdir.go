package testdata

import (
	"embed"
)

//go:embed handshakes
var testFilesystem embed.FS

func GetTestFS() *embed.FS {
	return &testFilesystem
}
