package config

// Template is the project configuration written by `corg init`. Every
// setting is shown with its default value.
const Template = `# corg configuration.
# Settings are layered: defaults, /etc/corg/config.yaml,
# $XDG_CONFIG_HOME/corg/config.yaml, this file, --config, CORG_* variables
# and finally command-line flags.

# Where generated scripts are written.
output_dir: scripts

# Helper library with the corg_* logging functions, relative to output_dir.
helper_path: utils/corg-logger.sh
write_helper: true

# Markdown flavor: gfm (tables, task lists, strikethrough) or commonmark.
# Footnotes are supported by both.
flavor: gfm

# Files treated as runbooks.
extensions:
  - .md
  - .markdown

# Glob patterns of runbooks to skip.
ignore:
  - node_modules/**
  - vendor/**

# Shell used by 'corg run'.
shell: bash

# Keep the previous script as <script>.corg.bak before overwriting it.
backups:
  enabled: false
  mode: sidecar

# Fail when the binary does not satisfy this constraint.
# required_version: ">= 0.1.0"

# Defaults for 'corg run --host'.
# ssh:
#   user: deploy
#   port: 22
#   identity_file: ~/.ssh/id_ed25519
#   known_hosts: ~/.ssh/known_hosts
#   timeout: 10s
#   use_agent: true

# Named hosts for 'corg run --host NAME'.
# hosts:
#   - name: web
#     address: web1.example.com
#     user: deploy
#     port: 22
`

// GenerateTemplate returns the project configuration template.
func GenerateTemplate() []byte {
	return []byte(Template)
}
