// ABOUTME: WebRTC session to the realtime voice model.
// ABOUTME: Carries audio both ways and runs the tool-call loop over the oai-events channel.

package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pion/webrtc/v3"

	"github.com/cbbisht2004/Yogi/internal/config"
)

// dataChannelName is fixed by the realtime API.
const dataChannelName = "oai-events"

// signalTimeout bounds the SDP offer/answer exchange.
const signalTimeout = 15 * time.Second

// ToolDispatcher runs one tool call and renders the outcome as a spoken
// sentence. Satisfied by tools.Dispatcher.
type ToolDispatcher interface {
	Dispatch(ctx context.Context, callID, name string, args json.RawMessage) string
}

// Tool is a function declaration announced to the model in session.update.
type Tool struct {
	Name        string
	Description string
	Parameters  json.RawMessage
}

// SessionConfig carries everything a session needs to connect.
type SessionConfig struct {
	Realtime     config.RealtimeConfig
	Instructions string
	Tools        []Tool
	Dispatcher   ToolDispatcher
	Logger       *slog.Logger

	// HTTPClient is used for token minting and the SDP exchange. nil selects
	// a default with sane timeouts.
	HTTPClient *http.Client
}

// Session is one live connection to the realtime model. It owns the peer
// connection facing the model; the gateway bridges the user's peer to it.
type Session struct {
	cfg    SessionConfig
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	pc       *webrtc.PeerConnection
	inTrack  *webrtc.TrackLocalStaticRTP
	onTrack  func(*webrtc.TrackRemote)
	ready    chan struct{}
	readyOnce sync.Once
	sendText func(string) error

	mu sync.Mutex
	dc *webrtc.DataChannel
}

// NewSession prepares a session. Connect must be called before audio or
// replies flow.
func NewSession(cfg SessionConfig) (*Session, error) {
	if cfg.Dispatcher == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: signalTimeout}
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		cfg:    cfg,
		logger: cfg.Logger.With("component", "realtime"),
		ctx:    ctx,
		cancel: cancel,
		ready:  make(chan struct{}),
	}
	return s, nil
}

// OnModelTrack registers the handler for the model's audio track. Must be
// set before Connect.
func (s *Session) OnModelTrack(fn func(*webrtc.TrackRemote)) {
	s.onTrack = fn
}

// InputTrack returns the track carrying the user's audio to the model.
// Available after Connect.
func (s *Session) InputTrack() *webrtc.TrackLocalStaticRTP {
	return s.inTrack
}

// Connect mints an ephemeral token, dials the model over WebRTC, and starts
// the event loop. It returns once the SDP exchange completes; WaitReady
// blocks until the data channel opens.
func (s *Session) Connect(ctx context.Context) error {
	token, err := MintEphemeralToken(ctx, s.cfg.HTTPClient, s.cfg.Realtime)
	if err != nil {
		return err
	}

	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{{URLs: []string{"stun:stun.l.google.com:19302"}}},
	})
	if err != nil {
		return fmt.Errorf("creating peer connection: %w", err)
	}
	s.pc = pc

	inTrack, err := webrtc.NewTrackLocalStaticRTP(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus},
		"audio", "yogi-mic",
	)
	if err != nil {
		pc.Close()
		return fmt.Errorf("creating input track: %w", err)
	}
	if _, err := pc.AddTrack(inTrack); err != nil {
		pc.Close()
		return fmt.Errorf("adding input track: %w", err)
	}
	s.inTrack = inTrack

	pc.OnTrack(func(track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		s.logger.Info("model track started", "codec", track.Codec().MimeType)
		if s.onTrack != nil {
			s.onTrack(track)
		}
	})

	ordered := true
	dc, err := pc.CreateDataChannel(dataChannelName, &webrtc.DataChannelInit{Ordered: &ordered})
	if err != nil {
		pc.Close()
		return fmt.Errorf("creating data channel: %w", err)
	}
	s.mu.Lock()
	s.dc = dc
	s.sendText = dc.SendText
	s.mu.Unlock()

	dc.OnOpen(func() {
		s.logger.Info("data channel open")
		if err := s.configureSession(); err != nil {
			s.logger.Error("session.update failed", "error", err)
		}
		s.readyOnce.Do(func() { close(s.ready) })
	})
	dc.OnMessage(func(msg webrtc.DataChannelMessage) {
		s.handleMessage(msg.Data)
	})

	offer, err := pc.CreateOffer(nil)
	if err != nil {
		pc.Close()
		return fmt.Errorf("creating offer: %w", err)
	}
	gathered := webrtc.GatheringCompletePromise(pc)
	if err := pc.SetLocalDescription(offer); err != nil {
		pc.Close()
		return fmt.Errorf("setting local description: %w", err)
	}

	// The realtime endpoint does not trickle; send the full candidate set.
	select {
	case <-gathered:
	case <-ctx.Done():
		pc.Close()
		return ctx.Err()
	}

	answer, err := s.exchangeSDP(ctx, token, pc.LocalDescription().SDP)
	if err != nil {
		pc.Close()
		return err
	}
	if err := pc.SetRemoteDescription(webrtc.SessionDescription{
		Type: webrtc.SDPTypeAnswer,
		SDP:  answer,
	}); err != nil {
		pc.Close()
		return fmt.Errorf("setting remote description: %w", err)
	}

	s.logger.Info("connected to realtime model", "model", s.cfg.Realtime.Model)
	return nil
}

// exchangeSDP posts the local offer to the realtime endpoint and returns the
// model's answer.
func (s *Session) exchangeSDP(ctx context.Context, token, offerSDP string) (string, error) {
	endpoint := fmt.Sprintf("%s/v1/realtime?model=%s", s.cfg.Realtime.APIBase, s.cfg.Realtime.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(offerSDP))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/sdp")

	resp, err := s.cfg.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("exchanging SDP: %w", err)
	}
	defer resp.Body.Close()

	answer, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading SDP answer: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("exchanging SDP: %s: %s", resp.Status, answer)
	}
	return string(answer), nil
}

// WaitReady blocks until the data channel is open and the session configured.
func (s *Session) WaitReady(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.ctx.Done():
		return fmt.Errorf("session closed")
	}
}

// configureSession announces instructions, voice, and the tool schemas.
func (s *Session) configureSession() error {
	specs := make([]toolSpec, len(s.cfg.Tools))
	for i, t := range s.cfg.Tools {
		specs[i] = toolSpec{
			Type:        "function",
			Name:        t.Name,
			Description: t.Description,
			Parameters:  t.Parameters,
		}
	}
	return s.sendEvent(sessionUpdateEvent{
		Type: "session.update",
		Session: sessionOptions{
			Modalities:   []string{"text", "audio"},
			Instructions: s.cfg.Instructions,
			Voice:        s.cfg.Realtime.Voice,
			Temperature:  s.cfg.Realtime.Temperature,
			Tools:        specs,
			ToolChoice:   "auto",
		},
	})
}

// GenerateReply asks the model to speak, overriding instructions for this
// one response. Used for the scripted session greeting.
func (s *Session) GenerateReply(instructions string) error {
	return s.sendEvent(responseCreateEvent{
		Type:     "response.create",
		Response: &responseParams{Instructions: instructions},
	})
}

func (s *Session) sendEvent(event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	s.mu.Lock()
	send := s.sendText
	s.mu.Unlock()
	if send == nil {
		return fmt.Errorf("data channel not connected")
	}
	return send(string(payload))
}

// handleMessage decodes one server event and reacts to it.
func (s *Session) handleMessage(data []byte) {
	var ev serverEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		s.logger.Warn("undecodable server event", "error", err)
		return
	}

	switch ev.Type {
	case eventSessionCreated:
		s.logger.Info("realtime session created")
	case eventFunctionCallDone:
		// Dispatch off the read loop; tool calls may block for seconds.
		go s.runToolCall(ev)
	case eventResponseDone:
		s.logger.Debug("response complete")
	case eventError:
		if ev.Error != nil {
			s.logger.Error("server event error", "code", ev.Error.Code, "message", ev.Error.Message)
		} else {
			s.logger.Error("server event error")
		}
	default:
		s.logger.Debug("unhandled server event", "type", ev.Type)
	}
}

// runToolCall dispatches one function call and hands the result back to the
// conversation, then asks the model to speak the outcome.
func (s *Session) runToolCall(ev serverEvent) {
	s.logger.Info("tool call", "tool", ev.Name, "call_id", ev.CallID)
	output := s.cfg.Dispatcher.Dispatch(s.ctx, ev.CallID, ev.Name, json.RawMessage(ev.Arguments))

	if err := s.sendEvent(functionOutputEvent{
		Type: "conversation.item.create",
		Item: functionOutputItem{
			Type:   "function_call_output",
			CallID: ev.CallID,
			Output: output,
		},
	}); err != nil {
		s.logger.Error("sending tool output failed", "tool", ev.Name, "error", err)
		return
	}
	if err := s.sendEvent(responseCreateEvent{Type: "response.create"}); err != nil {
		s.logger.Error("requesting response failed", "tool", ev.Name, "error", err)
	}
}

// Close tears the session down. Safe to call more than once.
func (s *Session) Close() error {
	s.cancel()

	s.mu.Lock()
	dc := s.dc
	s.dc = nil
	s.sendText = nil
	s.mu.Unlock()

	if dc != nil {
		_ = dc.Close()
	}
	if s.pc != nil {
		return s.pc.Close()
	}
	return nil
}
