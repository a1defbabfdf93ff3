package speech

import (
	"fmt"
	"strconv"
	"strings"
)

// parseISODuration converts an ISO-8601 duration such as "PT1H2M3.4S"
// into seconds. The batch API only ever emits time components, so date
// designators are rejected.
func parseISODuration(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if !strings.HasPrefix(s, "PT") {
		return 0, fmt.Errorf("unsupported duration format %q", raw)
	}
	s = s[2:]
	if s == "" {
		return 0, nil
	}

	var total float64
	num := strings.Builder{}
	for _, r := range s {
		switch {
		case (r >= '0' && r <= '9') || r == '.':
			num.WriteRune(r)
		case r == 'H' || r == 'M' || r == 'S':
			value, err := strconv.ParseFloat(num.String(), 64)
			if err != nil {
				return 0, fmt.Errorf("invalid duration component in %q", raw)
			}
			switch r {
			case 'H':
				total += value * 3600
			case 'M':
				total += value * 60
			case 'S':
				total += value
			}
			num.Reset()
		default:
			return 0, fmt.Errorf("unexpected character %q in duration %q", r, raw)
		}
	}
	if num.Len() != 0 {
		return 0, fmt.Errorf("trailing digits without unit in %q", raw)
	}
	return total, nil
}
