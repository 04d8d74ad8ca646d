package eval

import (
	"os"
	"path/filepath"
	"strings"
)

// Like the executable search of execvp, but
//
//   - Takes the working directory and PATH as arguments.
//   - Returns either [StatusCommandNotFound] or [StatusCommandNotExecutable] in
//     the second argument if the search is not successful.
func lookPath(file, wd, paths string) (string, int) {
	if file == "" {
		return "", StatusCommandNotFound
	}
	if strings.Contains(file, "/") {
		if !filepath.IsAbs(file) {
			file = filepath.Join(wd, file)
		}
		return file, checkExecutable(file)
	}
	retStatus := StatusCommandNotFound
	for _, dir := range filepath.SplitList(paths) {
		if !filepath.IsAbs(dir) {
			// Relative entries (including the empty entry, which execvp
			// treats as the working directory) are skipped for safety.
			continue
		}
		fullpath := filepath.Join(dir, file)
		switch checkExecutable(fullpath) {
		case 0:
			return fullpath, 0
		case StatusCommandNotExecutable:
			retStatus = StatusCommandNotExecutable
		}
	}
	return "", retStatus
}

func checkExecutable(file string) int {
	info, err := os.Stat(file)
	if err != nil || info.IsDir() {
		return StatusCommandNotFound
	}
	if info.Mode()&0o111 == 0 {
		return StatusCommandNotExecutable
	}
	return 0
}
