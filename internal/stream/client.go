package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client calls a remote Playback service.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps an established connection.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// DecodeMessage converts a received Struct back into a frame message.
func DecodeMessage(st *structpb.Struct) (Message, error) {
	var m Message
	data, err := json.Marshal(st.AsMap())
	if err != nil {
		return m, fmt.Errorf("encode struct: %w", err)
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("decode frame: %w", err)
	}
	return m, nil
}

// Frame fetches the server's latest frame.
func (c *Client) Frame(ctx context.Context) (Message, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getFrameMethod, &emptypb.Empty{}, out); err != nil {
		return Message{}, err
	}
	return DecodeMessage(out)
}

// Stream calls fn for every frame until the server ends the stream, ctx is
// cancelled, or fn returns an error, which Stream then returns.
func (c *Client) Stream(ctx context.Context, fn func(Message) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cs, err := c.cc.NewStream(ctx, &serviceDesc.Streams[0], streamFramesMethod)
	if err != nil {
		return err
	}
	if err := cs.SendMsg(&emptypb.Empty{}); err != nil {
		return err
	}
	if err := cs.CloseSend(); err != nil {
		return err
	}
	for {
		st := new(structpb.Struct)
		if err := cs.RecvMsg(st); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		m, err := DecodeMessage(st)
		if err != nil {
			return err
		}
		if err := fn(m); err != nil {
			return err
		}
	}
}
