package source

import (
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"fortio.org/safecast"
)

// normalizeCRLF заменяет все \r\n на \n, не трогая одиночные \r.
// Возвращает новый слайс и флаг: были ли замены (true, если хотя бы одна).
func normalizeCRLF(content []byte) ([]byte, bool) {
	// Быстрый путь: если нет \r, возвращаем как есть.
	if !slices.Contains(content, '\r') {
		return content, false
	}

	out := make([]byte, 0, len(content))
	changed := false
	for i := 0; i < len(content); i++ {
		if content[i] == '\r' && i+1 < len(content) && content[i+1] == '\n' {
			changed = true
			continue
		}
		out = append(out, content[i])
	}
	return out, changed
}

func removeBOM(content []byte) ([]byte, bool) {
	if len(content) >= 3 && content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		return content[3:], true
	}
	return content, false
}

func buildLineIndex(content []byte) []uint32 {
	out := make([]uint32, 0, len(content)/32+1)
	for i, b := range content {
		if b == '\n' {
			off, err := safecast.Conv[uint32](i)
			if err != nil {
				// файлы больше 4 GiB не поддерживаются; дальше строки не индексируем
				break
			}
			out = append(out, off)
		}
	}
	return out
}

// toLineCol maps a byte offset to a 1-based line/column pair.
// lineIdx holds offsets of '\n' bytes in ascending order.
func toLineCol(lineIdx []uint32, off uint32) LineCol {
	// количество переводов строк строго до off = номер строки (0-based)
	line := sort.Search(len(lineIdx), func(i int) bool { return lineIdx[i] >= off })
	var startOff uint32
	if line > 0 {
		startOff = lineIdx[line-1] + 1
	}
	ln, err := safecast.Conv[uint32](line + 1)
	if err != nil {
		ln = ^uint32(0)
	}
	return LineCol{Line: ln, Col: off - startOff + 1}
}

func normalizePath(p string) string {
	// единый вид в кроссплатформенных дифах
	return filepath.ToSlash(filepath.Clean(p))
}

// RelativePath returns path relative to baseDir. Paths outside baseDir keep
// their normalized absolute form.
func RelativePath(path, baseDir string) string {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return normalizePath(path)
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return normalizePath(path)
	}
	rel, err := filepath.Rel(absBase, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return normalizePath(absPath)
	}
	return normalizePath(rel)
}
