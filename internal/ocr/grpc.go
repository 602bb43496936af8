package ocr

import (
	"context"
	"image"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/protobuf/types/known/wrapperspb"

	apperrors "github.com/kennethbchen/Screen-Reader-Telegram-Bot/internal/errors"
	"github.com/kennethbchen/Screen-Reader-Telegram-Bot/internal/trace"
)

// RecognizeMethod is the unary RPC served by a remote OCR service. The request
// is a PNG in a BytesValue; the reply is the recognized text in a StringValue.
const RecognizeMethod = "/screenreader.v1.OCR/Recognize"

// Client configuration defaults
const (
	DefaultAddr             = "localhost:50051"
	DefaultKeepaliveTime    = 10 * time.Second
	DefaultKeepaliveTimeout = 3 * time.Second
)

// GRPC delegates recognition to a remote OCR service.
type GRPC struct {
	conn *grpc.ClientConn
}

// NewGRPC creates a client for the service at addr. The connection is established lazily.
func NewGRPC(addr string, opts ...grpc.DialOption) (*GRPC, error) {
	if addr == "" {
		addr = DefaultAddr
	}
	base := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(trace.UnaryClientInterceptor()),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:    DefaultKeepaliveTime,
			Timeout: DefaultKeepaliveTimeout,
		}),
	}
	conn, err := grpc.NewClient(addr, append(base, opts...)...)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ConfigInvalid, "ocr service address %q", addr)
	}
	return &GRPC{conn: conn}, nil
}

// Close closes the gRPC connection
func (g *GRPC) Close() error {
	return g.conn.Close()
}

// RecognizeText implements Engine.
func (g *GRPC) RecognizeText(ctx context.Context, img image.Image) (string, error) {
	data, err := encodePNG(img)
	if err != nil {
		return "", err
	}
	var out wrapperspb.StringValue
	if err := g.conn.Invoke(ctx, RecognizeMethod, wrapperspb.Bytes(data), &out); err != nil {
		return "", apperrors.FromGRPCError(err)
	}
	return normalize(out.GetValue()), nil
}
