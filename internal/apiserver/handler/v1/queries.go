package v1

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/gin-gonic/gin"

	"github.com/mentatproj/mentat/internal/apiserver/service/orchestrator"
	"github.com/mentatproj/mentat/internal/pkg/core"
	"github.com/mentatproj/mentat/pkg/errorx"
	"github.com/mentatproj/mentat/pkg/logger"
	"github.com/mentatproj/mentat/pkg/utils/json"
)

// QueryService runs one natural-language query through the tool loop.
type QueryService interface {
	Process(ctx context.Context, req *orchestrator.QueryRequest) (*orchestrator.QueryResult, error)
	ProcessStream(ctx context.Context, req *orchestrator.QueryRequest) *schema.StreamReader[*orchestrator.QueryEvent]
}

// QueryCreateRequest is the POST /v1/queries body. Stream selects the
// SSE progress-event response instead of a single JSON document.
type QueryCreateRequest struct {
	orchestrator.QueryRequest
	Stream bool `json:"stream,omitempty"`
}

// QueryHandler handles POST /v1/queries.
type QueryHandler struct {
	svc QueryService
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(svc QueryService) *QueryHandler {
	return &QueryHandler{svc: svc}
}

// Create handles POST /v1/queries.
func (h *QueryHandler) Create(c *gin.Context) {
	var req QueryCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrBind, "bind query request"), nil)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		core.WriteResponse(c, errorx.WithCode(ErrValidation, "query must not be empty"), nil)
		return
	}

	if req.Stream {
		h.stream(c, &req.QueryRequest)
		return
	}

	result, err := h.svc.Process(c.Request.Context(), &req.QueryRequest)
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, serverErrCode(err, ErrQueryProcess), "process query"), nil)
		return
	}
	core.WriteResponse(c, nil, result)
}

// stream emits query progress as SSE data frames, terminated by a
// [DONE] sentinel. Terminal answer or error events arrive as regular
// frames before the sentinel.
func (h *QueryHandler) stream(c *gin.Context, req *orchestrator.QueryRequest) {
	sr := h.svc.ProcessStream(c.Request.Context(), req)
	defer sr.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	w := c.Writer
	for {
		select {
		case <-c.Request.Context().Done():
			return
		default:
		}

		ev, err := sr.Recv()
		if err != nil {
			if err != io.EOF {
				logger.Warn("[Query] event stream recv failed: %v", err)
			}
			break
		}

		data, err := json.MarshalString(ev)
		if err != nil {
			logger.Warn("[Query] marshal event failed: %v", err)
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		w.Flush()
	}

	fmt.Fprintf(w, "data: [DONE]\n\n")
	w.Flush()
}
