package resource

import (
	"fmt"
	"strconv"
)

// ParamInt extracts an int from a command parameter list.
// JSON numbers decode as float64; strings holding integers are accepted.
func ParamInt(params []interface{}, idx int) int {
	if idx < 0 || idx >= len(params) {
		return 0
	}
	switch v := params[idx].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case bool:
		if v {
			return 1
		}
	case string:
		n, _ := strconv.Atoi(v)
		return n
	}
	return 0
}

// ParamStr extracts a string from a command parameter list.
func ParamStr(params []interface{}, idx int) string {
	if idx < 0 || idx >= len(params) {
		return ""
	}
	switch v := params[idx].(type) {
	case string:
		return v
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// ParamBool follows JS truthiness for the values RMMV stores.
func ParamBool(params []interface{}, idx int) bool {
	if idx < 0 || idx >= len(params) {
		return false
	}
	switch v := params[idx].(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case int:
		return v != 0
	case string:
		return v != ""
	case nil:
		return false
	}
	return true
}

// ParamList extracts a nested array parameter.
func ParamList(params []interface{}, idx int) []interface{} {
	if idx < 0 || idx >= len(params) {
		return nil
	}
	if l, ok := params[idx].([]interface{}); ok {
		return l
	}
	return nil
}

// ParamInts extracts a nested numeric array, e.g. a tone [r, g, b, gray].
func ParamInts(params []interface{}, idx int) []int {
	l := ParamList(params, idx)
	if l == nil {
		return nil
	}
	out := make([]int, len(l))
	for i := range l {
		out[i] = ParamInt(l, i)
	}
	return out
}

// ParamStrings extracts a nested string array, e.g. choice labels.
func ParamStrings(params []interface{}, idx int) []string {
	l := ParamList(params, idx)
	if l == nil {
		return nil
	}
	out := make([]string, len(l))
	for i := range l {
		out[i] = ParamStr(l, i)
	}
	return out
}

// ParamAudio decodes an {name, volume, pitch, pan} object parameter.
func ParamAudio(params []interface{}, idx int) AudioFile {
	if idx < 0 || idx >= len(params) {
		return AudioFile{}
	}
	m, ok := params[idx].(map[string]interface{})
	if !ok {
		return AudioFile{}
	}
	return AudioFile{
		Name:   ParamStr([]interface{}{m["name"]}, 0),
		Volume: ParamInt([]interface{}{m["volume"]}, 0),
		Pitch:  ParamInt([]interface{}{m["pitch"]}, 0),
		Pan:    ParamInt([]interface{}{m["pan"]}, 0),
	}
}

// ParamMoveRoute decodes the move route object of command 205. Values that
// are already typed (built in Go) are returned as-is.
func ParamMoveRoute(params []interface{}, idx int) *MoveRoute {
	if idx < 0 || idx >= len(params) {
		return nil
	}
	switch v := params[idx].(type) {
	case *MoveRoute:
		return v
	case map[string]interface{}:
		r := &MoveRoute{
			Repeat:    ParamBool([]interface{}{v["repeat"]}, 0),
			Skippable: ParamBool([]interface{}{v["skippable"]}, 0),
			Wait:      ParamBool([]interface{}{v["wait"]}, 0),
		}
		list, _ := v["list"].([]interface{})
		for _, raw := range list {
			m, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}
			ps, _ := m["parameters"].([]interface{})
			r.List = append(r.List, &MoveCommand{
				Code:       ParamInt([]interface{}{m["code"]}, 0),
				Parameters: ps,
			})
		}
		return r
	}
	return nil
}
