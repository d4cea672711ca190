package lib

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	vlib "github.com/mcuadros/go-version"
	"go.uber.org/zap"
)

// fields requested from kicad-cli when exporting a schematic BOM
var DefaultKiCadFields = []string{
	"Reference", "Value", "Footprint", "Datasheet", "Description", "${DNP}", "${EXCLUDE_FROM_BOM}",
}

// KiCad runs kicad-cli to turn native KiCad documents into CSV.
type KiCad struct {
	binPath string
	fields  []string
	logger  *zap.Logger
}

func cliName() string {
	if runtime.GOOS == "windows" {
		return "kicad-cli.exe"
	}

	return "kicad-cli"
}

/*
	installRoots returns directories holding one subdirectory per installed
	KiCad version, e.g. C:\Program Files\KiCad\8.0\bin.
*/
func installRoots() []string {
	switch runtime.GOOS {
	case "windows":
		roots := []string{}
		for _, env := range []string{"ProgramFiles", "ProgramW6432", "LOCALAPPDATA"} {
			if dir := os.Getenv(env); dir != "" {
				roots = append(roots, filepath.Join(dir, "KiCad"), filepath.Join(dir, "Programs", "KiCad"))
			}
		}
		return roots
	case "darwin":
		return []string{"/Applications/KiCad"}
	}

	return []string{"/usr/lib/kicad", "/opt/kicad"}
}

// latestInstall finds the newest versioned KiCad install with kicad-cli in root.
func latestInstall(root string) (string, bool) {
	versions, err := os.ReadDir(root)
	if err != nil || len(versions) == 0 {
		return "", false
	}

	latestVersion := ""
	for _, e := range versions {
		if !e.IsDir() {
			continue
		}

		version := e.Name()
		if !Exists(filepath.Join(root, version, "bin", cliName())) {
			continue
		}
		if latestVersion == "" || vlib.CompareSimple(latestVersion, version) == -1 {
			latestVersion = version
		}
	}

	if latestVersion == "" {
		return "", false
	}

	return filepath.Join(root, latestVersion, "bin"), true
}

/*
	FindKiCadCLI locates kicad-cli: an explicit path wins, then PATH, then the
	newest version under the platform install roots.
*/
func FindKiCadCLI(explicit string) (string, error) {
	if explicit != "" {
		if !Exists(explicit) {
			return "", fmt.Errorf("%w: %s does not exist", ErrKiCadNotFound, explicit)
		}
		return explicit, nil
	}

	if path, err := exec.LookPath(cliName()); err == nil {
		return path, nil
	}

	if runtime.GOOS == "darwin" {
		app := "/Applications/KiCad/KiCad.app/Contents/MacOS/kicad-cli"
		if Exists(app) {
			return app, nil
		}
	}

	for _, root := range installRoots() {
		if binPath, ok := latestInstall(root); ok {
			return filepath.Join(binPath, cliName()), nil
		}
	}

	return "", ErrKiCadNotFound
}

// NewKiCad returns a runner for the kicad-cli found by FindKiCadCLI.
func NewKiCad(explicit string, fields []string, logger *zap.Logger) (*KiCad, error) {
	binPath, err := FindKiCadCLI(explicit)
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	if len(fields) == 0 {
		fields = DefaultKiCadFields
	}

	return &KiCad{binPath: binPath, fields: fields, logger: logger}, nil
}

func (ki *KiCad) GetBinPath() string {
	return ki.binPath
}

func (ki *KiCad) ExecuteCommand(ctx context.Context, args []string, cwd string) error {
	cmd := exec.CommandContext(ctx, ki.binPath, args...)
	cmd.Dir = cwd

	ki.logger.Debug("running kicad-cli", zap.Strings("args", args))
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("kicad-cli %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}

	return nil
}

func (ki *KiCad) export(ctx context.Context, src, name string, args func(dst string) []string) (string, func(), error) {
	dir, err := os.MkdirTemp("", "jbom-")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { os.RemoveAll(dir) }

	dst := filepath.Join(dir, name)
	if err := ki.ExecuteCommand(ctx, args(dst), filepath.Dir(src)); err != nil {
		cleanup()
		return "", nil, err
	}

	return dst, cleanup, nil
}

/*
	ExportBOM writes an ungrouped BOM CSV for a schematic into a temporary
	directory. The returned cleanup removes it.
*/
func (ki *KiCad) ExportBOM(ctx context.Context, sch string) (string, func(), error) {
	return ki.export(ctx, sch, "components.csv", func(dst string) []string {
		return []string{
			"sch", "export", "bom",
			"--output", dst,
			"--fields", strings.Join(ki.fields, ","),
			"--ref-range-delimiter", "",
			sch,
		}
	})
}

// ExportPositions writes a millimeter position CSV for a board.
func (ki *KiCad) ExportPositions(ctx context.Context, pcb string) (string, func(), error) {
	return ki.export(ctx, pcb, "positions.csv", func(dst string) []string {
		return []string{
			"pcb", "export", "pos",
			"--output", dst,
			"--format", "csv",
			"--units", "mm",
			"--side", "both",
			pcb,
		}
	})
}
