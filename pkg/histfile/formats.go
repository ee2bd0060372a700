package histfile

import (
	"strings"
)

// Format represents the on-disk history file dialect
type Format int

const (
	// FormatBash is one plain command per line
	FormatBash Format = iota
	// FormatZsh is the extended format ": <timestamp>:<elapsed>;<command>"
	FormatZsh
)

// zshItemOffset is the width of the ": 0123456789:0;" prefix zsh writes
// in front of every command when EXTENDED_HISTORY is set. The epoch
// timestamp is ten digits wide for any date this tool will ever see.
const zshItemOffset = 15

// zshFileSuffix is the conventional zsh history file name.
const zshFileSuffix = ".zsh_history"

// FormatInfo contains metadata about a history file format
type FormatInfo struct {
	Format      Format
	Description string
	ItemOffset  int
	// ReloadCmd is what a running shell must eat to re-read the file
	// after it was rewritten underneath it.
	ReloadCmd string
}

var supportedFormats = map[Format]FormatInfo{
	FormatBash: {
		Format:      FormatBash,
		Description: "Bash history",
		ItemOffset:  0,
		ReloadCmd:   "history -r",
	},
	FormatZsh: {
		Format:      FormatZsh,
		Description: "Zsh extended history",
		ItemOffset:  zshItemOffset,
		ReloadCmd:   "fc -R",
	},
}

// DetectFormat decides the dialect from the file name alone.
// Zsh is only assumed for the conventional name; anything else reads as
// plain bash lines. A zsh file saved under another name still loads,
// just with the timestamp prefixes visible.
func DetectFormat(path string) Format {
	if strings.HasSuffix(path, zshFileSuffix) {
		return FormatZsh
	}
	return FormatBash
}

// ItemOffset returns how many leading characters of each line are
// bookkeeping rather than command text.
func (f Format) ItemOffset() int {
	if info, ok := supportedFormats[f]; ok {
		return info.ItemOffset
	}
	return 0
}

// ReloadCmd returns the shell command that re-reads the history file.
func (f Format) ReloadCmd() string {
	if info, ok := supportedFormats[f]; ok {
		return info.ReloadCmd
	}
	return supportedFormats[FormatBash].ReloadCmd
}

// String implements fmt.Stringer for logs.
func (f Format) String() string {
	if info, ok := supportedFormats[f]; ok {
		return info.Description
	}
	return "unknown"
}

// GetFormatInfo returns information about a specific format
func GetFormatInfo(format Format) (FormatInfo, bool) {
	info, exists := supportedFormats[format]
	return info, exists
}
