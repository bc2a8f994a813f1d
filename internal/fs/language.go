package fs

import (
	"path/filepath"
	"strings"
)

// Language constants for common programming languages.
const (
	LangGo         = "go"
	LangTypeScript = "typescript"
	LangJavaScript = "javascript"
	LangPython     = "python"
	LangRust       = "rust"
	LangJava       = "java"
	LangC          = "c"
	LangCPP        = "cpp"
	LangCSharp     = "csharp"
	LangRuby       = "ruby"
	LangPHP        = "php"
	LangSwift      = "swift"
	LangKotlin     = "kotlin"
	LangScala      = "scala"
	LangShell      = "shell"
	LangSQL        = "sql"
	LangUnknown    = ""
)

// extToLang maps file extensions to languages.
var extToLang = map[string]string{
	// Go
	".go": LangGo,

	// TypeScript/JavaScript
	".ts":  LangTypeScript,
	".tsx": LangTypeScript,
	".mts": LangTypeScript,
	".cts": LangTypeScript,
	".js":  LangJavaScript,
	".jsx": LangJavaScript,
	".mjs": LangJavaScript,
	".cjs": LangJavaScript,

	// Python
	".py":  LangPython,
	".pyi": LangPython,
	".pyw": LangPython,

	// Rust
	".rs": LangRust,

	// Java
	".java": LangJava,

	// C/C++
	".c":   LangC,
	".h":   LangC,
	".cc":  LangCPP,
	".cpp": LangCPP,
	".cxx": LangCPP,
	".hpp": LangCPP,
	".hxx": LangCPP,

	// C#
	".cs": LangCSharp,

	// Ruby
	".rb":   LangRuby,
	".rake": LangRuby,

	// PHP
	".php": LangPHP,

	// Swift
	".swift": LangSwift,

	// Kotlin
	".kt":  LangKotlin,
	".kts": LangKotlin,

	// Scala
	".scala": LangScala,

	// Shell
	".sh":   LangShell,
	".bash": LangShell,
	".zsh":  LangShell,

	// SQL
	".sql": LangSQL,
}

// DetectLanguage determines the programming language of a file based on its path.
func DetectLanguage(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := extToLang[ext]; ok {
		return lang
	}
	return LangUnknown
}

// IsSourceFile returns true if the file appears to be source code.
func IsSourceFile(path string) bool {
	return DetectLanguage(path) != LangUnknown
}

// nonSourceNameFragments marks files whose names suggest they carry no
// symbols worth indexing: tests, type declarations, generated artifacts
// and the like. Matching is a coarse substring check on the lowercased
// base name.
var nonSourceNameFragments = []string{
	"test",
	"spec",
	"mock",
	"stub",
	"stories",
	"styles",
	"types",
	"constants",
	"translations",
	"i18n",
	"generated",
}

// IsLowValueName reports whether the file's base name matches one of the
// fragments that mark low-value files.
func IsLowValueName(path string) bool {
	name := strings.ToLower(filepath.Base(path))
	for _, frag := range nonSourceNameFragments {
		if strings.Contains(name, frag) {
			return true
		}
	}
	return false
}
