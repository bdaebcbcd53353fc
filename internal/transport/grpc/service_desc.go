package grpc

import (
	"context"

	"google.golang.org/grpc"
)

const serviceName = "happyswims.v1.LessonsService"

type LessonsServiceServer interface {
	CreateWindow(ctx context.Context, req *CreateWindowRequest) (*WindowResponse, error)
	UpdateWindow(ctx context.Context, req *UpdateWindowRequest) (*WindowResponse, error)
	DeleteWindow(ctx context.Context, req *DeleteWindowRequest) (*DeleteWindowResponse, error)
	ListWindows(ctx context.Context, req *ListWindowsRequest) (*ListWindowsResponse, error)
	FreeTime(ctx context.Context, req *FreeTimeRequest) (*FreeTimeResponse, error)
	CheckSlot(ctx context.Context, req *CheckSlotRequest) (*CheckSlotResponse, error)
	CreateBooking(ctx context.Context, req *CreateBookingRequest) (*BookingResponse, error)
	CancelBooking(ctx context.Context, req *CancelBookingRequest) (*BookingResponse, error)
	ListBookings(ctx context.Context, req *ListBookingsRequest) (*ListBookingsResponse, error)
	RankInstructors(ctx context.Context, req *RankInstructorsRequest) (*RankInstructorsResponse, error)
	RecordTravelTime(ctx context.Context, req *RecordTravelTimeRequest) (*RecordTravelTimeResponse, error)
}

func RegisterLessonsServiceServer(s grpc.ServiceRegistrar, srv LessonsServiceServer) {
	s.RegisterService(&lessonsServiceDesc, srv)
}

var lessonsServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*LessonsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateWindow", Handler: unaryHandler("CreateWindow", LessonsServiceServer.CreateWindow)},
		{MethodName: "UpdateWindow", Handler: unaryHandler("UpdateWindow", LessonsServiceServer.UpdateWindow)},
		{MethodName: "DeleteWindow", Handler: unaryHandler("DeleteWindow", LessonsServiceServer.DeleteWindow)},
		{MethodName: "ListWindows", Handler: unaryHandler("ListWindows", LessonsServiceServer.ListWindows)},
		{MethodName: "FreeTime", Handler: unaryHandler("FreeTime", LessonsServiceServer.FreeTime)},
		{MethodName: "CheckSlot", Handler: unaryHandler("CheckSlot", LessonsServiceServer.CheckSlot)},
		{MethodName: "CreateBooking", Handler: unaryHandler("CreateBooking", LessonsServiceServer.CreateBooking)},
		{MethodName: "CancelBooking", Handler: unaryHandler("CancelBooking", LessonsServiceServer.CancelBooking)},
		{MethodName: "ListBookings", Handler: unaryHandler("ListBookings", LessonsServiceServer.ListBookings)},
		{MethodName: "RankInstructors", Handler: unaryHandler("RankInstructors", LessonsServiceServer.RankInstructors)},
		{MethodName: "RecordTravelTime", Handler: unaryHandler("RecordTravelTime", LessonsServiceServer.RecordTravelTime)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "happyswims/v1/lessons",
}

func fullMethod(method string) string {
	return "/" + serviceName + "/" + method
}

// unaryHandler adapts a typed server method to grpc.MethodHandler, the way
// generated code does for each rpc.
func unaryHandler[Req, Resp any](method string, call func(LessonsServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(LessonsServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod(method),
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(LessonsServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// LessonsClient calls the lessons service over the JSON codec.
type LessonsClient struct {
	cc grpc.ClientConnInterface
}

func NewLessonsClient(cc grpc.ClientConnInterface) *LessonsClient {
	return &LessonsClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, fullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *LessonsClient) CreateWindow(ctx context.Context, in *CreateWindowRequest, opts ...grpc.CallOption) (*WindowResponse, error) {
	return invoke[WindowResponse](ctx, c.cc, "CreateWindow", in, opts)
}

func (c *LessonsClient) UpdateWindow(ctx context.Context, in *UpdateWindowRequest, opts ...grpc.CallOption) (*WindowResponse, error) {
	return invoke[WindowResponse](ctx, c.cc, "UpdateWindow", in, opts)
}

func (c *LessonsClient) DeleteWindow(ctx context.Context, in *DeleteWindowRequest, opts ...grpc.CallOption) (*DeleteWindowResponse, error) {
	return invoke[DeleteWindowResponse](ctx, c.cc, "DeleteWindow", in, opts)
}

func (c *LessonsClient) ListWindows(ctx context.Context, in *ListWindowsRequest, opts ...grpc.CallOption) (*ListWindowsResponse, error) {
	return invoke[ListWindowsResponse](ctx, c.cc, "ListWindows", in, opts)
}

func (c *LessonsClient) FreeTime(ctx context.Context, in *FreeTimeRequest, opts ...grpc.CallOption) (*FreeTimeResponse, error) {
	return invoke[FreeTimeResponse](ctx, c.cc, "FreeTime", in, opts)
}

func (c *LessonsClient) CheckSlot(ctx context.Context, in *CheckSlotRequest, opts ...grpc.CallOption) (*CheckSlotResponse, error) {
	return invoke[CheckSlotResponse](ctx, c.cc, "CheckSlot", in, opts)
}

func (c *LessonsClient) CreateBooking(ctx context.Context, in *CreateBookingRequest, opts ...grpc.CallOption) (*BookingResponse, error) {
	return invoke[BookingResponse](ctx, c.cc, "CreateBooking", in, opts)
}

func (c *LessonsClient) CancelBooking(ctx context.Context, in *CancelBookingRequest, opts ...grpc.CallOption) (*BookingResponse, error) {
	return invoke[BookingResponse](ctx, c.cc, "CancelBooking", in, opts)
}

func (c *LessonsClient) ListBookings(ctx context.Context, in *ListBookingsRequest, opts ...grpc.CallOption) (*ListBookingsResponse, error) {
	return invoke[ListBookingsResponse](ctx, c.cc, "ListBookings", in, opts)
}

func (c *LessonsClient) RankInstructors(ctx context.Context, in *RankInstructorsRequest, opts ...grpc.CallOption) (*RankInstructorsResponse, error) {
	return invoke[RankInstructorsResponse](ctx, c.cc, "RankInstructors", in, opts)
}

func (c *LessonsClient) RecordTravelTime(ctx context.Context, in *RecordTravelTimeRequest, opts ...grpc.CallOption) (*RecordTravelTimeResponse, error) {
	return invoke[RecordTravelTimeResponse](ctx, c.cc, "RecordTravelTime", in, opts)
}
