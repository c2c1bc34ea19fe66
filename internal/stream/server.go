package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/banshee-data/scanview/internal/playback"
)

// FrameSource is the part of the playback engine the service reads from.
type FrameSource interface {
	Latest() (playback.Frame, bool)
	Subscribe() (int, <-chan playback.Frame)
	Unsubscribe(id int)
}

// Ensure Server implements the service interface.
var _ PlaybackServer = (*Server)(nil)

// Server implements the Playback service on top of an engine.
type Server struct {
	frames FrameSource
	units  string
	tz     string
}

// NewServer creates a Playback service. distanceUnits and tz format the
// odometry readout included in every frame.
func NewServer(frames FrameSource, distanceUnits, tz string) *Server {
	return &Server{frames: frames, units: distanceUnits, tz: tz}
}

// Message is the document carried in each Struct.
type Message struct {
	playback.Frame
	Readout []string `json:"readout"`
}

func (s *Server) toStruct(f playback.Frame) (*structpb.Struct, error) {
	data, err := json.Marshal(Message{Frame: f, Readout: f.Odometry.Lines(s.units, s.tz)})
	if err != nil {
		return nil, fmt.Errorf("encode frame %d: %w", f.Seq, err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode frame %d: %w", f.Seq, err)
	}
	return structpb.NewStruct(m)
}

// GetFrame returns the most recent frame.
func (s *Server) GetFrame(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	f, ok := s.frames.Latest()
	if !ok {
		return nil, status.Error(codes.Unavailable, "no frame rendered yet")
	}
	st, err := s.toStruct(f)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return st, nil
}

// StreamFrames sends the latest frame, then every frame the engine
// publishes until the client goes away. A slow client skips frames rather
// than stalling playback.
func (s *Server) StreamFrames(_ *emptypb.Empty, stream grpc.ServerStream) error {
	ctx := stream.Context()
	id, frames := s.frames.Subscribe()
	defer s.frames.Unsubscribe(id)
	log.Printf("[gRPC] StreamFrames client %d connected", id)

	send := func(f playback.Frame) error {
		st, err := s.toStruct(f)
		if err != nil {
			return status.Error(codes.Internal, err.Error())
		}
		if err := stream.SendMsg(st); err != nil {
			log.Printf("[gRPC] Send error: %v", err)
			return err
		}
		return nil
	}

	if f, ok := s.frames.Latest(); ok {
		if err := send(f); err != nil {
			return err
		}
	}
	for {
		select {
		case <-ctx.Done():
			log.Printf("[gRPC] StreamFrames client %d cancelled", id)
			return ctx.Err()
		case f, ok := <-frames:
			if !ok {
				return nil
			}
			if err := send(f); err != nil {
				return err
			}
		}
	}
}
