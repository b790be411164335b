package mei

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Well-known firmware client UUIDs.
var (
	// AMTHIClientUUID identifies the AMT Host Interface client.
	AMTHIClientUUID = uuid.MustParse("12f80028-b4b7-4b2d-aca8-46e0ff65814c")
	// LMEClientUUID identifies the Local Manageability Engine client used by the local manageability service.
	LMEClientUUID = uuid.MustParse("6733a4db-0476-4e7b-b3af-bcfc29bee7a7")
	// MKHIClientUUID identifies the ME Kernel Host Interface client.
	MKHIClientUUID = uuid.MustParse("8e6a6715-9abc-4043-88ef-9e39c6f63e0f")
	// WatchdogClientUUID identifies the AMT watchdog client.
	WatchdogClientUUID = uuid.MustParse("05b79a6f-4628-4d7f-899d-a91514cb32ab")
)

var wellKnownClients = map[string]uuid.UUID{
	"amthi":    AMTHIClientUUID,
	"lme":      LMEClientUUID,
	"mkhi":     MKHIClientUUID,
	"watchdog": WatchdogClientUUID,
}

// ParseClientUUID parses a firmware client identifier. It accepts a well-known client name
// ("amthi", "lme", "mkhi", "watchdog", case-insensitive) or any textual UUID form understood by
// uuid.Parse. The nil UUID is rejected.
func ParseClientUUID(s string) (uuid.UUID, error) {
	s = strings.TrimSpace(s)
	if id, ok := wellKnownClients[strings.ToLower(s)]; ok {
		return id, nil
	}

	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("mei: invalid client UUID %q: %w", s, err)
	}
	if id == uuid.Nil {
		return uuid.Nil, ErrNilClientUUID
	}

	return id, nil
}

// putGUID writes id into b in the little-endian GUID layout used by the MEI driver: the first three
// fields are byte-swapped, the remaining eight bytes are copied as is. b must hold at least 16 bytes.
func putGUID(b []byte, id uuid.UUID) {
	b[0], b[1], b[2], b[3] = id[3], id[2], id[1], id[0]
	b[4], b[5] = id[5], id[4]
	b[6], b[7] = id[7], id[6]
	copy(b[8:16], id[8:16])
}
