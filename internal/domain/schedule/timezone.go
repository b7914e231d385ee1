package schedule

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// gmtOffsetPattern matches POSIX-style textual offsets such as "GMT-5".
var gmtOffsetPattern = regexp.MustCompile(`(?i)^GMT([+-])(\d{1,2})$`)

const secondsPerHour = 3600

// ResolveTimezone turns a profile timezone string into a usable location.
// Resolution order: exact IANA identifier, case-repaired identifier
// (e.g. "ETC/GMT+2" -> "Etc/GMT+2"), POSIX "GMT±N" textual offset with the
// sign inverted relative to the literal text, and finally the system local
// zone. It never fails.
func ResolveTimezone(identifier string) *time.Location {
	id := strings.TrimSpace(identifier)
	if id == "" {
		return time.Local
	}

	if loc, err := time.LoadLocation(id); err == nil {
		return loc
	}

	if repaired := repairRegionCase(id); repaired != id {
		if loc, err := time.LoadLocation(repaired); err == nil {
			return loc
		}
	}

	if loc, ok := gmtOffsetZone(id); ok {
		return loc
	}

	return time.Local
}

// repairRegionCase normalizes the case of the region prefix only; the city
// part is left untouched because IANA city names are already mixed-case.
func repairRegionCase(id string) string {
	parts := strings.SplitN(id, "/", 2)
	head := parts[0]
	if head == "" {
		return id
	}
	head = strings.ToUpper(head[:1]) + strings.ToLower(head[1:])
	if len(parts) == 1 {
		return head
	}
	return head + "/" + parts[1]
}

// gmtOffsetZone parses "GMT±N" into a fixed zone. The sign is inverted
// relative to the literal text: GMT-5 is five hours east of UTC. This mirrors
// the POSIX TZ convention and must be preserved exactly.
func gmtOffsetZone(id string) (*time.Location, bool) {
	m := gmtOffsetPattern.FindStringSubmatch(id)
	if m == nil {
		return nil, false
	}

	hours, err := strconv.Atoi(m[2])
	if err != nil {
		return nil, false
	}

	offset := hours * secondsPerHour
	if m[1] == "+" {
		offset = -offset
	}
	return time.FixedZone(id, offset), true
}
