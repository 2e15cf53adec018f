package store

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/samber/do"
)

// Subdir is appended to whichever base directory wins resolution.
const Subdir = "fal_ai"

var xdgDownloadRegexp = regexp.MustCompile(`XDG_DOWNLOAD_DIR="(.*)"`)

// DirResolver picks the directory images are saved to. OutputDir, when set,
// overrides the user's download directory.
type DirResolver struct {
	OutputDir string
	Home      string
	ReadFile  func(string) ([]byte, error)
}

func NewDirResolver(i *do.Injector) (*DirResolver, error) {
	home, _ := os.UserHomeDir()
	return &DirResolver{
		OutputDir: do.MustInvokeNamed[string](i, "output_dir"),
		Home:      home,
		ReadFile:  os.ReadFile,
	}, nil
}

// Resolve returns <OutputDir>/fal_ai or <downloads>/fal_ai as an absolute
// path. It never touches the filesystem except to read user-dirs.dirs.
func (r *DirResolver) Resolve() string {
	base := r.OutputDir
	if base == "" {
		base = r.downloadsDir()
	}
	dir := filepath.Join(base, Subdir)
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}

// downloadsDir reads XDG_DOWNLOAD_DIR from ~/.config/user-dirs.dirs and
// falls back to ~/Downloads. Any read or parse problem means fallback.
func (r *DirResolver) downloadsDir() string {
	if r.Home == "" {
		return "Downloads"
	}
	dir := filepath.Join(r.Home, "Downloads")

	read := r.ReadFile
	if read == nil {
		read = os.ReadFile
	}
	data, err := read(filepath.Join(r.Home, ".config", "user-dirs.dirs"))
	if err != nil {
		return dir
	}
	m := xdgDownloadRegexp.FindSubmatch(data)
	if m == nil || len(m[1]) == 0 {
		return dir
	}
	return strings.Replace(string(m[1]), "$HOME", r.Home, 1)
}
