package v1

import (
	"net/http"

	"github.com/mentatproj/mentat/pkg/errorx"
)

// Apiserver handler error codes.
// Code format: 1XXYYZ
//   - 1:  module prefix (apiserver handler)
//   - XX: resource group (00=common, 01=server, 02=tool, 03=query, 04=system, 05=audit)
//   - YY: sequential error number
//   - Z:  reserved (0)

const (
	// Common request errors (100xxx).
	ErrBind       = 100001
	ErrValidation = 100002

	// Server errors (1001xx).
	ErrServerNotFound     = 100101
	ErrServerExists       = 100102
	ErrServerDisabled     = 100103
	ErrServerNotConnected = 100104
	ErrServerConnect      = 100105
	ErrServerSave         = 100106
	ErrServerRemove       = 100107

	// Tool errors (1002xx).
	ErrToolExecute = 100201

	// Query errors (1003xx).
	ErrQueryProcess = 100301

	// System errors (1004xx).
	ErrSystemInfo = 100401

	// Audit errors (1005xx).
	ErrAuditList = 100501
)

func init() {
	// Common.
	errorx.MustRegister(newCoder(ErrBind, http.StatusBadRequest, "Request body binding failed"))
	errorx.MustRegister(newCoder(ErrValidation, http.StatusBadRequest, "Request validation failed"))

	// Server.
	errorx.MustRegister(newCoder(ErrServerNotFound, http.StatusNotFound, "MCP server not found"))
	errorx.MustRegister(newCoder(ErrServerExists, http.StatusConflict, "MCP server already exists"))
	errorx.MustRegister(newCoder(ErrServerDisabled, http.StatusConflict, "MCP server is disabled"))
	errorx.MustRegister(newCoder(ErrServerNotConnected, http.StatusConflict, "MCP server is not connected"))
	errorx.MustRegister(newCoder(ErrServerConnect, http.StatusBadGateway, "Failed to connect to MCP server"))
	errorx.MustRegister(newCoder(ErrServerSave, http.StatusInternalServerError, "Failed to save MCP server"))
	errorx.MustRegister(newCoder(ErrServerRemove, http.StatusInternalServerError, "Failed to remove MCP server"))

	// Tool.
	errorx.MustRegister(newCoder(ErrToolExecute, http.StatusBadGateway, "Tool execution failed"))

	// Query.
	errorx.MustRegister(newCoder(ErrQueryProcess, http.StatusInternalServerError, "Query processing failed"))

	// System.
	errorx.MustRegister(newCoder(ErrSystemInfo, http.StatusInternalServerError, "Failed to collect host information"))

	// Audit.
	errorx.MustRegister(newCoder(ErrAuditList, http.StatusInternalServerError, "Failed to list tool call records"))
}

type coder struct {
	code int
	http int
	msg  string
}

func newCoder(code, httpStatus int, msg string) *coder {
	return &coder{code: code, http: httpStatus, msg: msg}
}

func (c *coder) Code() int         { return c.code }
func (c *coder) HTTPStatus() int   { return c.http }
func (c *coder) String() string    { return c.msg }
func (c *coder) Reference() string { return "" }
