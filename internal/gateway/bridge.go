// ABOUTME: Bridges the caller's WebRTC peer to the model session, audio in both directions.
// ABOUTME: One live call at a time; a newer offer replaces the previous call.

package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/pion/webrtc/v3"
)

// errBadOffer marks an offer the caller sent that pion could not parse.
var errBadOffer = errors.New("invalid SDP offer")

// rtpBufferSize fits any RTP packet that survives an MTU-sized path.
const rtpBufferSize = 1500

// voiceSession is the slice of the realtime session the call slot needs.
type voiceSession interface {
	GenerateReply(instructions string) error
	Close() error
}

// call pairs one caller peer connection with one model session.
type call struct {
	session voiceSession
	pc      *webrtc.PeerConnection
	logger  *slog.Logger
}

// hangup tears down both legs. Safe to call more than once.
func (c *call) hangup() {
	_ = c.session.Close()
	if c.pc != nil {
		_ = c.pc.Close()
	}
}

// startCall answers the caller's SDP offer: it parses the offer, dials the
// model, wires audio both ways, and returns the local answer SDP.
func (g *Gateway) startCall(ctx context.Context, offerSDP string) (string, error) {
	sess, err := g.assistant.NewSession()
	if err != nil {
		return "", fmt.Errorf("building session: %w", err)
	}

	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{{URLs: []string{"stun:stun.l.google.com:19302"}}},
	})
	if err != nil {
		_ = sess.Close()
		return "", fmt.Errorf("creating caller peer connection: %w", err)
	}

	// Parse the offer before dialing the model; a garbled offer should not
	// cost an upstream session.
	if err := pc.SetRemoteDescription(webrtc.SessionDescription{
		Type: webrtc.SDPTypeOffer,
		SDP:  offerSDP,
	}); err != nil {
		_ = pc.Close()
		_ = sess.Close()
		return "", fmt.Errorf("%w: %v", errBadOffer, err)
	}

	outTrack, err := webrtc.NewTrackLocalStaticRTP(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus},
		"audio", "yogi-voice",
	)
	if err != nil {
		_ = pc.Close()
		_ = sess.Close()
		return "", fmt.Errorf("creating output track: %w", err)
	}
	sender, err := pc.AddTrack(outTrack)
	if err != nil {
		_ = pc.Close()
		_ = sess.Close()
		return "", fmt.Errorf("adding output track: %w", err)
	}
	go drainRTCP(sender)

	// Caller microphone -> model.
	pc.OnTrack(func(remote *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		g.logger.Info("caller track started", "codec", remote.Codec().MimeType)
		in := sess.InputTrack()
		if in == nil {
			g.logger.Warn("caller track arrived before model connect")
			return
		}
		go forwardRTP(g.logger, remoteTrackReader{remote}, in)
	})

	// Model voice -> caller.
	sess.OnModelTrack(func(remote *webrtc.TrackRemote) {
		go forwardRTP(g.logger, remoteTrackReader{remote}, outTrack)
	})

	if err := sess.Connect(ctx); err != nil {
		_ = pc.Close()
		_ = sess.Close()
		return "", fmt.Errorf("connecting to model: %w", err)
	}

	answer, err := pc.CreateAnswer(nil)
	if err != nil {
		_ = pc.Close()
		_ = sess.Close()
		return "", fmt.Errorf("creating answer: %w", err)
	}
	gathered := webrtc.GatheringCompletePromise(pc)
	if err := pc.SetLocalDescription(answer); err != nil {
		_ = pc.Close()
		_ = sess.Close()
		return "", fmt.Errorf("setting local description: %w", err)
	}

	// Callers do not trickle against this endpoint; return the full
	// candidate set in one answer.
	select {
	case <-gathered:
	case <-ctx.Done():
		_ = pc.Close()
		_ = sess.Close()
		return "", ctx.Err()
	}

	c := &call{session: sess, pc: pc, logger: g.logger}
	pc.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		g.logger.Info("caller connection state", "state", state.String())
		if state == webrtc.PeerConnectionStateFailed || state == webrtc.PeerConnectionStateClosed {
			g.endCall(c)
		}
	})

	g.setCall(c)
	g.assistant.Greet(sess)

	return pc.LocalDescription().SDP, nil
}

// setCall installs the new live call, hanging up any previous one.
func (g *Gateway) setCall(c *call) {
	g.mu.Lock()
	old := g.call
	g.call = c
	g.mu.Unlock()

	if old != nil {
		g.logger.Info("replacing live call")
		old.hangup()
	}
}

// endCall clears the slot if c still owns it and tears the call down.
func (g *Gateway) endCall(c *call) {
	g.mu.Lock()
	if g.call == c {
		g.call = nil
	}
	g.mu.Unlock()
	c.hangup()
}

// remoteTrackReader adapts a remote track's packet reads to io.Reader.
// Each Read returns exactly one RTP packet.
type remoteTrackReader struct {
	track *webrtc.TrackRemote
}

func (r remoteTrackReader) Read(b []byte) (int, error) {
	n, _, err := r.track.Read(b)
	return n, err
}

// forwardRTP copies RTP packets between tracks until either side closes.
// Packet boundaries are preserved: one Read becomes one Write.
func forwardRTP(logger *slog.Logger, src io.Reader, dst io.Writer) {
	buf := make([]byte, rtpBufferSize)
	for {
		n, err := src.Read(buf)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				logger.Debug("track read ended", "error", err)
			}
			return
		}
		if _, err := dst.Write(buf[:n]); err != nil {
			logger.Debug("track write ended", "error", err)
			return
		}
	}
}

// drainRTCP keeps the sender's RTCP read loop alive so pion's interceptors
// keep running. Reports are discarded.
func drainRTCP(sender *webrtc.RTPSender) {
	buf := make([]byte, rtpBufferSize)
	for {
		if _, _, err := sender.Read(buf); err != nil {
			return
		}
	}
}
