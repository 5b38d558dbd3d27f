package api

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "sessionlab.v1.SessionService"

const (
	SessionService_AdminLogin_FullMethodName    = "/" + ServiceName + "/AdminLogin"
	SessionService_CreateSession_FullMethodName = "/" + ServiceName + "/CreateSession"
	SessionService_Start_FullMethodName         = "/" + ServiceName + "/Start"
	SessionService_Pause_FullMethodName         = "/" + ServiceName + "/Pause"
	SessionService_Resume_FullMethodName        = "/" + ServiceName + "/Resume"
	SessionService_End_FullMethodName           = "/" + ServiceName + "/End"
	SessionService_AdvanceTo_FullMethodName     = "/" + ServiceName + "/AdvanceTo"
	SessionService_UnlockModule_FullMethodName  = "/" + ServiceName + "/UnlockModule"
	SessionService_CloseQuestion_FullMethodName = "/" + ServiceName + "/CloseQuestion"
	SessionService_Recompute_FullMethodName     = "/" + ServiceName + "/Recompute"
	SessionService_RecentAlerts_FullMethodName  = "/" + ServiceName + "/RecentAlerts"
	SessionService_Join_FullMethodName          = "/" + ServiceName + "/Join"
	SessionService_Heartbeat_FullMethodName     = "/" + ServiceName + "/Heartbeat"
	SessionService_Leave_FullMethodName         = "/" + ServiceName + "/Leave"
	SessionService_Submit_FullMethodName        = "/" + ServiceName + "/Submit"
	SessionService_RaiseAlert_FullMethodName    = "/" + ServiceName + "/RaiseAlert"
	SessionService_Resync_FullMethodName        = "/" + ServiceName + "/Resync"
	SessionService_ListOnline_FullMethodName    = "/" + ServiceName + "/ListOnline"
	SessionService_Subscribe_FullMethodName     = "/" + ServiceName + "/Subscribe"
)

// SessionServiceServer is the server API for the session service.
type SessionServiceServer interface {
	AdminLogin(context.Context, *AdminLoginRequest) (*TokenResponse, error)
	CreateSession(context.Context, *CreateSessionRequest) (*SessionResponse, error)
	Start(context.Context, *SessionRequest) (*SessionResponse, error)
	Pause(context.Context, *SessionRequest) (*SessionResponse, error)
	Resume(context.Context, *SessionRequest) (*SessionResponse, error)
	End(context.Context, *SessionRequest) (*SessionResponse, error)
	AdvanceTo(context.Context, *AdvanceRequest) (*SessionResponse, error)
	UnlockModule(context.Context, *UnlockModuleRequest) (*SessionResponse, error)
	CloseQuestion(context.Context, *QuestionRequest) (*TallyResponse, error)
	Recompute(context.Context, *QuestionRequest) (*TallyResponse, error)
	RecentAlerts(context.Context, *SessionRequest) (*AlertsResponse, error)
	Join(context.Context, *JoinRequest) (*JoinResponse, error)
	Heartbeat(context.Context, *Empty) (*PresenceResponse, error)
	Leave(context.Context, *Empty) (*PresenceResponse, error)
	Submit(context.Context, *SubmitRequest) (*SubmitResponse, error)
	RaiseAlert(context.Context, *RaiseAlertRequest) (*RaiseAlertResponse, error)
	Resync(context.Context, *ResyncRequest) (*ResyncResponse, error)
	ListOnline(context.Context, *SessionRequest) (*ListOnlineResponse, error)
	Subscribe(*SessionRequest, SessionService_SubscribeServer) error
}

type SessionService_SubscribeServer interface {
	Send(*EventMessage) error
	grpc.ServerStream
}

type subscribeServer struct {
	grpc.ServerStream
}

func (s *subscribeServer) Send(m *EventMessage) error { return s.ServerStream.SendMsg(m) }

func RegisterSessionServiceServer(s grpc.ServiceRegistrar, srv SessionServiceServer) {
	s.RegisterService(&SessionService_ServiceDesc, srv)
}

// unary builds the method descriptor of a request/response RPC.
func unary[Req, Res any](name string, call func(SessionServiceServer, context.Context, *Req) (*Res, error)) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(SessionServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(SessionServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func subscribeHandler(srv any, stream grpc.ServerStream) error {
	in := new(SessionRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(SessionServiceServer).Subscribe(in, &subscribeServer{stream})
}

var SessionService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SessionServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("AdminLogin", SessionServiceServer.AdminLogin),
		unary("CreateSession", SessionServiceServer.CreateSession),
		unary("Start", SessionServiceServer.Start),
		unary("Pause", SessionServiceServer.Pause),
		unary("Resume", SessionServiceServer.Resume),
		unary("End", SessionServiceServer.End),
		unary("AdvanceTo", SessionServiceServer.AdvanceTo),
		unary("UnlockModule", SessionServiceServer.UnlockModule),
		unary("CloseQuestion", SessionServiceServer.CloseQuestion),
		unary("Recompute", SessionServiceServer.Recompute),
		unary("RecentAlerts", SessionServiceServer.RecentAlerts),
		unary("Join", SessionServiceServer.Join),
		unary("Heartbeat", SessionServiceServer.Heartbeat),
		unary("Leave", SessionServiceServer.Leave),
		unary("Submit", SessionServiceServer.Submit),
		unary("RaiseAlert", SessionServiceServer.RaiseAlert),
		unary("Resync", SessionServiceServer.Resync),
		unary("ListOnline", SessionServiceServer.ListOnline),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Subscribe",
			Handler:       subscribeHandler,
			ServerStreams: true,
		},
	},
	Metadata: "sessionlab/v1/session.json",
}

// SessionServiceClient is the client API for the session service. Every call
// uses the JSON codec.
type SessionServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewSessionServiceClient(cc grpc.ClientConnInterface) *SessionServiceClient {
	return &SessionServiceClient{cc: cc}
}

func invoke[Res any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Res, error) {
	out := new(Res)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *SessionServiceClient) AdminLogin(ctx context.Context, in *AdminLoginRequest, opts ...grpc.CallOption) (*TokenResponse, error) {
	return invoke[TokenResponse](ctx, c.cc, SessionService_AdminLogin_FullMethodName, in, opts)
}

func (c *SessionServiceClient) CreateSession(ctx context.Context, in *CreateSessionRequest, opts ...grpc.CallOption) (*SessionResponse, error) {
	return invoke[SessionResponse](ctx, c.cc, SessionService_CreateSession_FullMethodName, in, opts)
}

func (c *SessionServiceClient) Start(ctx context.Context, in *SessionRequest, opts ...grpc.CallOption) (*SessionResponse, error) {
	return invoke[SessionResponse](ctx, c.cc, SessionService_Start_FullMethodName, in, opts)
}

func (c *SessionServiceClient) Pause(ctx context.Context, in *SessionRequest, opts ...grpc.CallOption) (*SessionResponse, error) {
	return invoke[SessionResponse](ctx, c.cc, SessionService_Pause_FullMethodName, in, opts)
}

func (c *SessionServiceClient) Resume(ctx context.Context, in *SessionRequest, opts ...grpc.CallOption) (*SessionResponse, error) {
	return invoke[SessionResponse](ctx, c.cc, SessionService_Resume_FullMethodName, in, opts)
}

func (c *SessionServiceClient) End(ctx context.Context, in *SessionRequest, opts ...grpc.CallOption) (*SessionResponse, error) {
	return invoke[SessionResponse](ctx, c.cc, SessionService_End_FullMethodName, in, opts)
}

func (c *SessionServiceClient) AdvanceTo(ctx context.Context, in *AdvanceRequest, opts ...grpc.CallOption) (*SessionResponse, error) {
	return invoke[SessionResponse](ctx, c.cc, SessionService_AdvanceTo_FullMethodName, in, opts)
}

func (c *SessionServiceClient) UnlockModule(ctx context.Context, in *UnlockModuleRequest, opts ...grpc.CallOption) (*SessionResponse, error) {
	return invoke[SessionResponse](ctx, c.cc, SessionService_UnlockModule_FullMethodName, in, opts)
}

func (c *SessionServiceClient) CloseQuestion(ctx context.Context, in *QuestionRequest, opts ...grpc.CallOption) (*TallyResponse, error) {
	return invoke[TallyResponse](ctx, c.cc, SessionService_CloseQuestion_FullMethodName, in, opts)
}

func (c *SessionServiceClient) Recompute(ctx context.Context, in *QuestionRequest, opts ...grpc.CallOption) (*TallyResponse, error) {
	return invoke[TallyResponse](ctx, c.cc, SessionService_Recompute_FullMethodName, in, opts)
}

func (c *SessionServiceClient) RecentAlerts(ctx context.Context, in *SessionRequest, opts ...grpc.CallOption) (*AlertsResponse, error) {
	return invoke[AlertsResponse](ctx, c.cc, SessionService_RecentAlerts_FullMethodName, in, opts)
}

func (c *SessionServiceClient) Join(ctx context.Context, in *JoinRequest, opts ...grpc.CallOption) (*JoinResponse, error) {
	return invoke[JoinResponse](ctx, c.cc, SessionService_Join_FullMethodName, in, opts)
}

func (c *SessionServiceClient) Heartbeat(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*PresenceResponse, error) {
	return invoke[PresenceResponse](ctx, c.cc, SessionService_Heartbeat_FullMethodName, in, opts)
}

func (c *SessionServiceClient) Leave(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*PresenceResponse, error) {
	return invoke[PresenceResponse](ctx, c.cc, SessionService_Leave_FullMethodName, in, opts)
}

func (c *SessionServiceClient) Submit(ctx context.Context, in *SubmitRequest, opts ...grpc.CallOption) (*SubmitResponse, error) {
	return invoke[SubmitResponse](ctx, c.cc, SessionService_Submit_FullMethodName, in, opts)
}

func (c *SessionServiceClient) RaiseAlert(ctx context.Context, in *RaiseAlertRequest, opts ...grpc.CallOption) (*RaiseAlertResponse, error) {
	return invoke[RaiseAlertResponse](ctx, c.cc, SessionService_RaiseAlert_FullMethodName, in, opts)
}

func (c *SessionServiceClient) Resync(ctx context.Context, in *ResyncRequest, opts ...grpc.CallOption) (*ResyncResponse, error) {
	return invoke[ResyncResponse](ctx, c.cc, SessionService_Resync_FullMethodName, in, opts)
}

func (c *SessionServiceClient) ListOnline(ctx context.Context, in *SessionRequest, opts ...grpc.CallOption) (*ListOnlineResponse, error) {
	return invoke[ListOnlineResponse](ctx, c.cc, SessionService_ListOnline_FullMethodName, in, opts)
}

type SessionService_SubscribeClient interface {
	Recv() (*EventMessage, error)
	grpc.ClientStream
}

type subscribeClient struct {
	grpc.ClientStream
}

func (c *subscribeClient) Recv() (*EventMessage, error) {
	m := new(EventMessage)
	if err := c.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *SessionServiceClient) Subscribe(ctx context.Context, in *SessionRequest, opts ...grpc.CallOption) (SessionService_SubscribeClient, error) {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	stream, err := c.cc.NewStream(ctx, &SessionService_ServiceDesc.Streams[0], SessionService_Subscribe_FullMethodName, opts...)
	if err != nil {
		return nil, err
	}
	x := &subscribeClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}
