package extract

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Uint decodes from a JSON number, a JSON string holding a number, or a
// query/path value. A string that does not parse fails decoding.
type Uint uint64

func (u *Uint) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	}
	return u.UnmarshalParam(s)
}

func (u *Uint) UnmarshalParam(param string) error {
	n, err := strconv.ParseUint(strings.TrimSpace(param), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q", param)
	}
	*u = Uint(n)
	return nil
}

func (u Uint) Int() int { return int(u) }
