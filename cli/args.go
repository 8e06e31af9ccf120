package cli

import (
	"fmt"
	"strconv"
	"strings"
)

func parseID(name, raw string) (int64, error) {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not an integer", name, raw)
	}
	return v, nil
}

func parseIDs(names []string, raw []string) ([]int64, error) {
	out := make([]int64, len(raw))
	for i := range raw {
		v, err := parseID(names[i], raw[i])
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// parseState accepts on/off alongside the strconv spellings.
func parseState(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "on", "yes", "enable", "enabled":
		return true, nil
	case "off", "no", "disable", "disabled":
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("state: %q is not on/off", raw)
	}
	return v, nil
}
