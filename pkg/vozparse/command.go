package vozparse

import "strings"

// CommandKind identifies an editing command.
type CommandKind int

const (
	// DeleteLast removes the most recently added record.
	DeleteLast CommandKind = iota + 1
)

// String returns the wire name of the command.
func (k CommandKind) String() string {
	switch k {
	case DeleteLast:
		return "DELETE_LAST"
	default:
		return "UNKNOWN"
	}
}

// MarshalText encodes the command by its wire name.
func (k CommandKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// deleteKeywords are checked in order by substring match.
var deleteKeywords = []string{"borrar", "eliminar", "corregir", "deshacer", "atras", "quitar"}

// DeleteKeywords returns the keywords that trigger DeleteLast.
func DeleteKeywords() []string {
	out := make([]string, len(deleteKeywords))
	copy(out, deleteKeywords)
	return out
}

// DetectCommand scans normalized text for a command keyword. The match is
// a plain substring test, so "atrasado" also triggers DeleteLast.
func DetectCommand(normalized string) (CommandKind, bool) {
	for _, kw := range deleteKeywords {
		if strings.Contains(normalized, kw) {
			return DeleteLast, true
		}
	}
	return 0, false
}
