package helper

import (
	"encoding/json"
	"io"
)

func WriteJSON(w io.Writer, data interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func ReadJSON(r io.Reader, data interface{}) error { return json.NewDecoder(r).Decode(data) }
