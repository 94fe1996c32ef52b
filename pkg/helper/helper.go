package helper

import (
	"strconv"

	"github.com/lithammer/shortuuid/v4"
	"github.com/whitekid/goxp/fx"
)

// NewID returns new random short id
func NewID() string { return shortuuid.New() }

func AtoiDef[T fx.Int](s string, def T) T {
	value, err := strconv.Atoi(s)
	if err != nil {
		return def
	}

	return T(value)
}

func ParseBoolDef(s string, def bool) bool {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return v
}
