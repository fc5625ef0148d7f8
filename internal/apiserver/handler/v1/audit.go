package v1

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mentatproj/mentat/internal/apiserver/service/audit"
	"github.com/mentatproj/mentat/internal/pkg/core"
	"github.com/mentatproj/mentat/pkg/errorx"
)

// AuditReader lists recent tool-call records.
type AuditReader interface {
	Recent(ctx context.Context, server string, limit int) ([]*audit.Entry, error)
}

// AuditHandler exposes the tool-call audit trail.
type AuditHandler struct {
	reader AuditReader
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(reader AuditReader) *AuditHandler {
	return &AuditHandler{reader: reader}
}

// List handles GET /v1/audit/calls?server=&limit=.
func (h *AuditHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	entries, err := h.reader.Recent(c.Request.Context(), c.Query("server"), limit)
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrAuditList, "list tool calls"), nil)
		return
	}
	if entries == nil {
		entries = []*audit.Entry{}
	}
	core.WriteResponse(c, nil, gin.H{"data": entries})
}
