package v1

import (
	"github.com/gin-gonic/gin"
	hoststat "github.com/likexian/host-stat-go"

	"github.com/mentatproj/mentat/internal/pkg/core"
	"github.com/mentatproj/mentat/pkg/errorx"
)

// SystemHandler reports host information for operators.
type SystemHandler struct{}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler() *SystemHandler {
	return &SystemHandler{}
}

// Info handles GET /v1/system/info.
func (h *SystemHandler) Info(c *gin.Context) {
	hostInfo, err := hoststat.GetHostInfo()
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrSystemInfo, "get host info"), nil)
		return
	}
	memStat, err := hoststat.GetMemStat()
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrSystemInfo, "get mem stat"), nil)
		return
	}
	cpuInfo, err := hoststat.GetCPUInfo()
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrSystemInfo, "get cpu info"), nil)
		return
	}

	core.WriteResponse(c, nil, SystemInfoResponse{
		HostName:  hostInfo.HostName,
		OSRelease: hostInfo.Release + " " + hostInfo.OSBit,
		CPUCore:   cpuInfo.CoreCount,
		MemTotal:  memStat.MemTotal,
		MemFree:   memStat.MemFree,
	})
}
