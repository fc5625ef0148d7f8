package apiserver

import (
	"context"
	"fmt"
	"log"

	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"github.com/mentatproj/mentat/internal/apiserver/config"
	v1 "github.com/mentatproj/mentat/internal/apiserver/handler/v1"
	"github.com/mentatproj/mentat/internal/apiserver/service/audit"
	"github.com/mentatproj/mentat/internal/apiserver/service/llm"
	"github.com/mentatproj/mentat/internal/apiserver/service/mcp"
	"github.com/mentatproj/mentat/internal/apiserver/service/orchestrator"
	"github.com/mentatproj/mentat/internal/apiserver/store/bolt"
	genericapiserver "github.com/mentatproj/mentat/internal/pkg/server"
	"github.com/mentatproj/mentat/pkg/logger"
	"github.com/mentatproj/mentat/pkg/shutdown"
	"github.com/mentatproj/mentat/pkg/shutdown/posixsignal"
)

type apiServer struct {
	gs               *shutdown.GracefulShutdown
	gRPCAPIServer    *genericapiserver.GRPCAPIServer
	genericAPIServer *genericapiserver.GenericAPIServer

	mcpModule          *mcp.Module
	llmModule          *llm.Module
	orchestratorModule *orchestrator.Module

	serverDB      *bolt.DB
	auditRecorder *audit.Recorder
	configWatcher *mcp.ConfigWatcher
}

type preparedAPIServer struct {
	*apiServer
}

// ExtraConfig defines extra configuration for the API server.
type ExtraConfig struct {
	Addr       string
	MaxMsgSize int
}

type completedExtraConfig struct {
	*ExtraConfig
}

// Complete fills in any fields not set that are required to have valid data and can be derived from other fields.
func (c *ExtraConfig) complete() *completedExtraConfig {
	if c.Addr == "" {
		c.Addr = "127.0.0.1:8321"
	}

	return &completedExtraConfig{c}
}

// New creates a gRPC API server instance.
func (c *completedExtraConfig) New() (*genericapiserver.GRPCAPIServer, error) {
	opts := []grpc.ServerOption{grpc.MaxRecvMsgSize(c.MaxMsgSize)}
	grpcServer := grpc.NewServer(opts...)

	reflection.Register(grpcServer)

	return genericapiserver.NewGRPCAPIServer(grpcServer, c.Addr), nil
}

func createAPIServer(cfg *config.Config) (*apiServer, error) {
	gs := shutdown.New()
	gs.AddShutdownManager(posixsignal.NewPosixSignalManager())

	genericConfig, err := buildGenericConfig(cfg)
	if err != nil {
		return nil, err
	}

	extraConfig, err := buildExtraConfig(cfg)
	if err != nil {
		return nil, err
	}

	genericServer, err := genericConfig.Complete().New()
	if err != nil {
		return nil, err
	}

	server := &apiServer{
		gs:               gs,
		genericAPIServer: genericServer,
	}

	// grpc.bind-port=0 disables the gRPC listener.
	if cfg.GRPCOptions.BindPort != 0 {
		extraServer, err := extraConfig.complete().New()
		if err != nil {
			return nil, err
		}
		server.gRPCAPIServer = extraServer
	}

	// Local persistence: runtime-added servers and the tool-call audit
	// trail. Both are optional.
	var serverStore mcp.ServerStore
	if cfg.StoreOptions.ServerDBPath != "" {
		db, err := bolt.Open(cfg.StoreOptions.ServerDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open server store: %w", err)
		}
		server.serverDB = db
		serverStore = bolt.NewServerStore(db)
	}
	var recorder mcp.Recorder
	if cfg.StoreOptions.AuditDBPath != "" {
		rec, err := audit.Open(cfg.StoreOptions.AuditDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open audit store: %w", err)
		}
		server.auditRecorder = rec
		recorder = rec
	}

	// Initialize LLM module.
	llmCfg := &llm.Config{
		ModelOptions: cfg.ModelOptions,
	}
	llmModule, err := llmCfg.Complete().New(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM module: %w", err)
	}
	server.llmModule = llmModule
	logger.Info("[Apiserver] LLM module initialized successfully")

	// Initialize MCP module. Servers live in a standalone file (Claude
	// Desktop compatible format).
	mcpFileCfg, err := mcp.LoadMCPConfig(cfg.MCPOptions.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load MCP config from %q: %w", cfg.MCPOptions.ConfigFile, err)
	}
	mcpCfg := &mcp.Config{
		MCPConfig:       mcpFileCfg,
		Store:           serverStore,
		Recorder:        recorder,
		ToolCallTimeout: cfg.MCPOptions.ToolCallTimeout,
		AutoConnect:     cfg.MCPOptions.AutoConnect,
	}
	mcpModule, err := mcpCfg.Complete().New(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to create MCP module: %w", err)
	}
	server.mcpModule = mcpModule
	logger.Info("[Apiserver] MCP module initialized successfully")

	if cfg.MCPOptions.HotReload {
		watcher := mcp.NewConfigWatcher(mcpModule.Registry, cfg.MCPOptions.ConfigFile)
		if err := watcher.Start(); err != nil {
			logger.Warn("[Apiserver] MCP config watcher disabled: %v", err)
		} else {
			server.configWatcher = watcher
		}
	}

	// Initialize orchestrator module on top of the registry and models.
	orchCfg := &orchestrator.Config{
		Executor: mcpModule.Registry,
		Models:   llmModule,
	}
	orchestratorModule, err := orchCfg.Complete().New(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to create orchestrator module: %w", err)
	}
	server.orchestratorModule = orchestratorModule
	logger.Info("[Apiserver] Orchestrator module initialized successfully")

	return server, nil
}

func (s *apiServer) PrepareRun() preparedAPIServer {
	var auditReader v1.AuditReader
	if s.auditRecorder != nil {
		auditReader = s.auditRecorder
	}

	initRouter(s.genericAPIServer.Engine, &routerDeps{
		registry: s.mcpModule.Registry,
		queries:  s.orchestratorModule.Orchestrator,
		audit:    auditReader,
	})

	s.gs.AddShutdownCallback(shutdown.Func(func(string) error {
		if s.configWatcher != nil {
			s.configWatcher.Stop()
		}
		// Close MCP module (disconnect all servers).
		if s.mcpModule != nil {
			s.mcpModule.Close()
		}
		if s.auditRecorder != nil {
			_ = s.auditRecorder.Close()
		}
		if s.serverDB != nil {
			_ = s.serverDB.Close()
		}
		if s.gRPCAPIServer != nil {
			s.gRPCAPIServer.Stop()
		}
		s.genericAPIServer.Close()
		return nil
	}))
	return preparedAPIServer{s}
}

func (s preparedAPIServer) Run() error {
	if s.gRPCAPIServer != nil {
		go s.gRPCAPIServer.Run()
	}

	// start shutdown managers
	if err := s.gs.Start(); err != nil {
		log.Fatalf("start shutdown manager failed: %s", err.Error())
	}

	return s.genericAPIServer.Run()
}

func buildGenericConfig(cfg *config.Config) (genericConfig *genericapiserver.Config, lastErr error) {
	genericConfig = genericapiserver.NewConfig()
	if lastErr = cfg.GenericServerRunOptions.ApplyTo(genericConfig); lastErr != nil {
		return
	}

	return
}

func buildExtraConfig(cfg *config.Config) (*ExtraConfig, error) {
	return &ExtraConfig{
		Addr:       fmt.Sprintf("%s:%d", cfg.GRPCOptions.BindAddress, cfg.GRPCOptions.BindPort),
		MaxMsgSize: cfg.GRPCOptions.MaxMsgSize,
	}, nil
}
