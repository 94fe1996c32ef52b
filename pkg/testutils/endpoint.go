package testutils

import (
	"net/http"

	"cryptohub/api/endpoints"
	"cryptohub/pkg/helper"
)

func NewEndpointHandler(endpoint endpoints.Endpoint) http.Handler {
	handler := helper.NewEcho()
	endpoint.Route(handler.Group(""))

	return handler
}
