package helper

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer

	x := &struct {
		Message string `json:"message"`
	}{
		Message: "hello world",
	}

	require.NoError(t, WriteJSON(&buf, x))

	var got struct {
		Message string `json:"message"`
	}
	require.NoError(t, ReadJSON(&buf, &got))
	require.Equal(t, x.Message, got.Message)
}
