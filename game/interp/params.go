package interp

import (
	"github.com/kasuganosora/rmmvinterp/resource"
)

func paramStrAt(c *resource.EventCommand, i int) string {
	if c == nil {
		return ""
	}
	return resource.ParamStr(c.Parameters, i)
}

func paramsOf(c *resource.EventCommand) []interface{} {
	if c == nil {
		return nil
	}
	return c.Parameters
}
