package sources

import "strings"

// Category is the coarse content classification of a source file.
type Category string

const (
	CategoryCode    Category = "code"
	CategoryMarkup  Category = "markup"
	CategoryStyle   Category = "style"
	CategoryUnknown Category = "unknown"
)

type extensionInfo struct {
	category  Category
	shortName string
}

// extensions is the closed set of recognized file extensions. Anything not
// listed here classifies as CategoryUnknown.
var extensions = map[string]extensionInfo{
	"ts":   {CategoryCode, "TypeScript"},
	"tsx":  {CategoryCode, "TSX"},
	"mts":  {CategoryCode, "TypeScript"},
	"js":   {CategoryCode, "JavaScript"},
	"mjs":  {CategoryCode, "JavaScript"},
	"jsx":  {CategoryCode, "JSX"},
	"html": {CategoryMarkup, "HTML"},
	"htm":  {CategoryMarkup, "HTML"},
	"css":  {CategoryStyle, "CSS"},
	"scss": {CategoryStyle, "SCSS"},
}

const unknownShortName = "Text"

// Extension returns the text after the last '.' of fileName, lower-cased.
// Names without a dot, and dotfiles such as ".env", have no extension.
func Extension(fileName string) string {
	idx := strings.LastIndexByte(fileName, '.')
	if idx <= 0 || idx == len(fileName)-1 {
		return ""
	}
	return strings.ToLower(fileName[idx+1:])
}

// Classify maps a file name to its Category. It is total: every input,
// including the empty string, yields a category.
func Classify(fileName string) Category {
	if info, ok := extensions[Extension(fileName)]; ok {
		return info.category
	}
	return CategoryUnknown
}

// ShortName is the tab label used for small matched sets, e.g.
// "TypeScript" or "HTML".
func ShortName(fileName string) string {
	if info, ok := extensions[Extension(fileName)]; ok {
		return info.shortName
	}
	return unknownShortName
}

// TrimExtension strips the last extension from fileName:
// "x.component.ts" becomes "x.component".
func TrimExtension(fileName string) string {
	if Extension(fileName) == "" {
		return fileName
	}
	return fileName[:strings.LastIndexByte(fileName, '.')]
}
