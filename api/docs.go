// Copyright 2025 The Remote Hack Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

var (
	//go:embed static/openapi.json
	openAPIDocument []byte

	//go:embed static/docs.html
	docsPage []byte
)

func (s *Server) openAPI(ctx *gin.Context) {
	ctx.Data(http.StatusOK, "application/json", openAPIDocument)
}

func (s *Server) docs(ctx *gin.Context) {
	ctx.Data(http.StatusOK, "text/html; charset=utf-8", docsPage)
}
