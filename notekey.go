package polyvoice

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// KeyFunc canonicalizes a note identity into a stable map key. Two
// identities describing the same note must produce the same key even
// when they are distinct value instances.
type KeyFunc func(id Identity) (string, error)

// StructuralKey is the default KeyFunc: strings and integer kinds map
// directly, everything else is serialized structurally with
// encoding/json (map keys are emitted sorted, so equal structures yield
// equal keys). A non-serializable identity is a caller error.
func StructuralKey(id Identity) (string, error) {
	switch v := id.(type) {
	case string:
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint8:
		return strconv.Itoa(int(v)), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	}
	b, err := json.Marshal(id)
	if err != nil {
		return "", fmt.Errorf("identity %T is not canonicalizable: %w", id, err)
	}
	return string(b), nil
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteName renders a MIDI key number as a scientific pitch name, with
// middle C (key 60) as "C4". Useful when numeric and named identities
// need to address the same pool entries.
func NoteName(key uint8) string {
	return fmt.Sprintf("%s%d", noteNames[key%12], int(key)/12-1)
}
