package helper

import (
	"io"

	"gopkg.in/yaml.v3"
)

func WriteYAML(w io.Writer, data interface{}) error { return yaml.NewEncoder(w).Encode(data) }
func ReadYAML(r io.Reader, data interface{}) error  { return yaml.NewDecoder(r).Decode(data) }
