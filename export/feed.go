package export

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/go-zeromq/zmq4"
	"github.com/sugawarayuuta/sonnet"
)

// FeedSink publishes every run on a ZeroMQ PUB socket as a three-frame
// message: topic (the site), manifest JSON, samples as little-endian
// 64-bit words. Subscribers filter by site prefix.
type FeedSink struct {
	sock   zmq4.Socket
	cancel context.CancelFunc
}

// NewFeed binds a publisher to endpoint, e.g. "tcp://*:5556".
func NewFeed(endpoint string) (*FeedSink, error) {
	ctx, cancel := context.WithCancel(context.Background())
	sock := zmq4.NewPub(ctx)
	if err := sock.Listen(endpoint); err != nil {
		cancel()
		sock.Close()
		return nil, fmt.Errorf("export: feed listen %s: %w", endpoint, err)
	}
	return &FeedSink{sock: sock, cancel: cancel}, nil
}

// Export publishes the run. Delivery is best effort: a PUB socket drops
// messages for absent subscribers.
func (f *FeedSink) Export(r *Run) error {
	header, err := sonnet.Marshal(ManifestOf(r))
	if err != nil {
		return fmt.Errorf("export: encode feed header %s: %w", r.ID, err)
	}
	body := make([]byte, 8*len(r.Samples))
	for i, v := range r.Samples {
		binary.LittleEndian.PutUint64(body[i*8:], v)
	}
	if err := f.sock.Send(zmq4.NewMsgFrom([]byte(r.Site), header, body)); err != nil {
		return fmt.Errorf("export: publish %s: %w", r.ID, err)
	}
	return nil
}

// Close shuts the socket down.
func (f *FeedSink) Close() error {
	err := f.sock.Close()
	f.cancel()
	return err
}

// DecodeFeed splits a feed message into its manifest and samples.
func DecodeFeed(msg zmq4.Msg) (Manifest, []uint64, error) {
	var m Manifest
	if len(msg.Frames) != 3 {
		return m, nil, fmt.Errorf("export: feed message has %d frames, want 3", len(msg.Frames))
	}
	if err := sonnet.Unmarshal(msg.Frames[1], &m); err != nil {
		return m, nil, fmt.Errorf("export: feed header: %w", err)
	}
	body := msg.Frames[2]
	if len(body)%8 != 0 {
		return m, nil, fmt.Errorf("export: feed body of %d bytes", len(body))
	}
	samples := make([]uint64, len(body)/8)
	for i := range samples {
		samples[i] = binary.LittleEndian.Uint64(body[i*8:])
	}
	return m, samples, nil
}
