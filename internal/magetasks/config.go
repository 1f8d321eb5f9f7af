package magetasks

import (
	"os"
	"path/filepath"
)

var (
	// ModulePath is the Go module path.
	ModulePath = "github.com/dkoosis/qarun"

	// MainPackage is the package built into the qarun binary.
	MainPackage = "./cmd/qarun"

	// BinPath is the output path for the built binary.
	BinPath = "./bin/qarun"

	// ProjectRoot is the root directory of the project.
	ProjectRoot string
)

// Initialize records the project root and creates the bin directory.
// Call it from the Magefile init function.
func Initialize() error {
	var err error
	ProjectRoot, err = os.Getwd()
	if err != nil {
		return err
	}
	return os.MkdirAll(filepath.Join(ProjectRoot, "bin"), 0o750)
}
