// Package langdetect works out the language of runbook code blocks.
//
// Every code block ends up in a shell function, so the main question is
// whether a block is shell at all. Blocks with an info string are resolved
// through go-enry's alias table; blocks without one are classified from
// their content.
package langdetect

import (
	"bytes"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Language constants for common detected languages.
const (
	langGo         = "go"
	langPython     = "python"
	langJSON       = "json"
	langYAML       = "yaml"
	langSQL        = "sql"
	langDockerfile = "dockerfile"
	langText       = "text"
	langBash       = "bash"
)

// shellLanguages are the languages run unchanged by a POSIX-ish shell.
var shellLanguages = map[string]bool{
	"bash": true, "sh": true, "shell": true, "zsh": true,
	"ksh": true, "console": true, "shellsession": true, "shell-script": true,
}

// shellCommands are command words that mark a line as shell.
var shellCommands = []string{
	"sudo", "apt", "apt-get", "yum", "dnf", "brew", "cd", "echo", "export",
	"curl", "wget", "git", "mkdir", "rm", "cp", "mv", "ln", "chmod", "chown",
	"systemctl", "service", "docker", "kubectl", "make", "cat", "tar", "ssh",
	"scp", "source", "set", "if", "for", "while", "ls", "touch", "grep", "sed",
	"awk", "npm", "pip", "go", "cargo", "helm", "terraform", "printf", "read",
}

// IsShell reports whether lang names a shell language.
func IsShell(lang string) bool {
	return shellLanguages[strings.ToLower(lang)]
}

// FromInfo returns the language named by a code block info string, or ""
// when the info string is empty. Unknown names are returned lowercased.
func FromInfo(info string) string {
	word, _, _ := strings.Cut(strings.TrimSpace(info), " ")
	if word == "" {
		return ""
	}
	word = strings.Trim(word, "{}.")
	if IsShell(word) {
		return langBash
	}
	if lang, ok := enry.GetLanguageByAlias(word); ok {
		return normalize(lang)
	}
	return strings.ToLower(word)
}

// Resolve returns the language of a code block and whether it had to be
// detected from the body because the info string was empty.
func Resolve(info string, body []byte) (string, bool) {
	if lang := FromInfo(info); lang != "" {
		return lang, false
	}
	return Detect(body), true
}

// Detect returns the detected language for code content.
// Returns "text" if detection fails or confidence is low.
func Detect(content []byte) string {
	if len(bytes.TrimSpace(content)) == 0 {
		return langText
	}

	// Shebangs are the most reliable signal.
	if lang, safe := enry.GetLanguageByShebang(content); safe {
		return normalize(lang)
	}

	if lang := detectByPattern(content); lang != "" {
		return lang
	}

	candidates := []string{
		"Shell", "Python", "Go", "Ruby", "JavaScript", "SQL", "JSON",
		"YAML", "Dockerfile", "PowerShell", "Makefile",
	}

	// Only use the classifier result if confidence is high.
	if lang, safe := enry.GetLanguageByClassifier(content, candidates); safe && lang != "" {
		return normalize(lang)
	}

	return langText
}

// detectByPattern checks for language-specific patterns that are highly indicative.
func detectByPattern(content []byte) string {
	trimmed := bytes.TrimSpace(content)
	contentStr := string(content)

	switch {
	case bytes.HasPrefix(trimmed, []byte("package ")):
		return langGo
	case isDockerfile(content, trimmed):
		return langDockerfile
	case isShell(content):
		return langBash
	case isJSON(trimmed):
		return langJSON
	case isSQL(contentStr):
		return langSQL
	case isPython(contentStr):
		return langPython
	case isYAML(content):
		return langYAML
	}
	return ""
}

// isShell reports whether most command lines start with a known command
// word or a "$ " prompt.
func isShell(content []byte) bool {
	total, hits := 0, 0
	for _, raw := range bytes.Split(content, []byte("\n")) {
		line := strings.TrimSpace(string(raw))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		total++
		if strings.HasPrefix(line, "$ ") {
			hits++
			continue
		}
		word, _, _ := strings.Cut(line, " ")
		for _, cmd := range shellCommands {
			if word == cmd {
				hits++
				break
			}
		}
	}
	return total > 0 && hits*2 > total
}

func isJSON(trimmed []byte) bool {
	return (bytes.HasPrefix(trimmed, []byte("{")) || bytes.HasPrefix(trimmed, []byte("["))) &&
		bytes.Contains(trimmed, []byte(`"`))
}

func isDockerfile(content, trimmed []byte) bool {
	return bytes.HasPrefix(trimmed, []byte("FROM ")) ||
		(bytes.Contains(content, []byte("\nFROM ")) && bytes.Contains(content, []byte("\nRUN "))) ||
		(bytes.Contains(content, []byte("WORKDIR ")) && bytes.Contains(content, []byte("COPY ")))
}

func isSQL(contentStr string) bool {
	upper := strings.TrimSpace(strings.ToUpper(contentStr))
	for _, kw := range []string{"SELECT ", "INSERT ", "UPDATE ", "DELETE ", "CREATE ", "ALTER "} {
		if strings.HasPrefix(upper, kw) {
			return true
		}
	}
	return false
}

func isPython(contentStr string) bool {
	if strings.Contains(contentStr, "def ") && strings.Contains(contentStr, "):") {
		return true
	}
	return strings.Contains(contentStr, "__name__") || strings.Contains(contentStr, "__main__")
}

// isYAML counts key: value pairs and list items.
func isYAML(content []byte) bool {
	count := 0
	for _, line := range bytes.Split(content, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 || bytes.HasPrefix(line, []byte("#")) {
			continue
		}
		if bytes.Contains(line, []byte(": ")) &&
			!bytes.Contains(line, []byte("(")) &&
			!bytes.Contains(line, []byte("{")) &&
			!bytes.HasPrefix(line, []byte(`"`)) {
			count++
		}
		if bytes.HasPrefix(line, []byte("- ")) {
			count++
		}
	}
	return count >= 2
}

// normalize converts go-enry language names to fence tags.
func normalize(lang string) string {
	switch lang {
	case "Shell", "ShellSession":
		return langBash
	}
	return strings.ToLower(lang)
}
