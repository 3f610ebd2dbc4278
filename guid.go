package lvrebal

import (
	"github.com/rekby/gpt"
	uuid "github.com/satori/go.uuid"
)

// GUID is a 16 byte globally unique ID, as found in GPT headers and
// partition entries.
type GUID [16]byte

// GenGUID generates a random GUID.
func GenGUID() GUID {
	return GUID(uuid.NewV4())
}

func (g GUID) String() string {
	return GUIDToString(g)
}

// StringToGUID converts a GUID in its canonical string form back to a GUID.
func StringToGUID(sguid string) (GUID, error) {
	return gpt.StringToGuid(sguid)
}

// GUIDToString renders a GUID in canonical upper-case form.
func GUIDToString(bguid GUID) string {
	return gpt.Guid(bguid).String()
}
