package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"session-lab/auth"
	"session-lab/grpc/api"
	"session-lab/grpc/client"
	"session-lab/grpc/server"
	"session-lab/repositories"
	"session-lab/runtime"
	"session-lab/runtime/workers"
	"session-lab/services"
)

type BaseGrpcSuite struct {
	suite.Suite
	Config Config

	dialOptions []grpc.DialOption
	shutdown    func()
}

// SetupSuite loads the environment configuration and, without E2E_SERVER_ADDR,
// boots a complete server in process over bufconn.
func (s *BaseGrpcSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)

	if s.Config.ServerAddr == "" {
		s.startInProcess()
	}
}

func (s *BaseGrpcSuite) TearDownSuite() {
	if s.shutdown != nil {
		s.shutdown()
	}
}

func (s *BaseGrpcSuite) startInProcess() {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLoggingLevel(badger.ERROR))
	s.Require().NoError(err)
	store := repositories.NewBadgerStore(db, log)

	orchestrator := runtime.NewOrchestrator(log, workers.NewSupervisor(log, 50*time.Millisecond, nil),
		runtime.NewRegistry(), store, nil, runtime.Config{MetricInterval: time.Minute})
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan error, 1)
	go func() { stopped <- orchestrator.Start(ctx) }()
	select {
	case <-orchestrator.Ready():
	case err := <-stopped:
		s.FailNow("engine did not start", err)
	}

	hash, err := auth.HashPassword(s.Config.AdminPassword)
	s.Require().NoError(err)
	tokens := auth.NewTokenManager("e2e-secret-e2e-secret-e2e-secret", time.Hour)
	interceptor := auth.NewInterceptor(tokens, server.Policy)
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(server.UnaryLoggingInterceptor(log), interceptor.Unary()),
		grpc.ChainStreamInterceptor(server.StreamLoggingInterceptor(log), interceptor.Stream()),
	)
	api.RegisterSessionServiceServer(srv, server.NewSessionServer(log,
		services.NewSessionService(orchestrator),
		services.NewAuthService(services.AdminAccount{ID: s.Config.AdminID, PasswordHash: hash}, tokens),
		64))

	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()

	s.Config.ServerAddr = "passthrough:///bufnet"
	s.dialOptions = []grpc.DialOption{
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
	}
	s.shutdown = func() {
		srv.Stop()
		cancel()
		orchestrator.Stop()
		<-stopped
		_ = db.Close()
	}
}

// GrpcConn initializes a gRPC connection with logging, colors, and JSON debugging
func (s *BaseGrpcSuite) GrpcConn(t *testing.T, name string) *grpc.ClientConn {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	t.Log(header)

	opts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
			start := time.Now()
			err := invoker(ctx, method, req, reply, cc, opts...)

			logBuilder := strings.Builder{}
			fmt.Fprintf(&logBuilder, "GRPC %s [%s] in %v", method, status.Code(err), time.Since(start))

			// Log full JSON request/response bodies if E2E_DEBUG_JSON is enabled
			if s.Config.DebugJSON {
				fmt.Fprintln(&logBuilder, "\nREQUEST:")
				fmt.Fprintln(&logBuilder, indent(req))
				if err != nil {
					fmt.Fprintln(&logBuilder, "ERROR:", err)
				} else {
					fmt.Fprintln(&logBuilder, "RESPONSE:")
					fmt.Fprintln(&logBuilder, indent(reply))
				}
			}
			t.Log(logBuilder.String())
			return err
		}),
	}, s.dialOptions...)

	conn, err := grpc.NewClient(s.Config.ServerAddr, opts...)
	s.Require().NoError(err, "Failed to connect to gRPC server at "+s.Config.ServerAddr)
	return conn
}

// WithClient provides a session client within a contextual test step.
func (s *BaseGrpcSuite) WithClient(name string, fn func(ctx context.Context, c *client.SessionClient)) {
	conn := s.GrpcConn(s.T(), name)
	defer func() { _ = conn.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fn(ctx, client.New(slog.New(slog.NewTextHandler(io.Discard, nil)), conn))
}

// NewClient returns a client whose connection lives until the test ends.
func (s *BaseGrpcSuite) NewClient(name string) *client.SessionClient {
	conn := s.GrpcConn(s.T(), name)
	s.T().Cleanup(func() { _ = conn.Close() })
	return client.New(slog.New(slog.NewTextHandler(io.Discard, nil)), conn)
}

func indent(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(data)
}
