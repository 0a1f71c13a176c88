package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"image"
	"image/png"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/df07/go-interactive-raytracer/pkg/config"
	"github.com/df07/go-interactive-raytracer/pkg/core"
	"github.com/df07/go-interactive-raytracer/pkg/renderer"
	"github.com/df07/go-interactive-raytracer/pkg/scene"
)

const (
	writeWait       = 10 * time.Second
	controlQueueLen = 64
	consoleQueueLen = 256
)

// ControlMessage is a client request to change the render. Which fields are
// meaningful depends on Type.
type ControlMessage struct {
	Type     string      `json:"type"` // camera, object, textureScale, resize, maxDepth, pick
	LookFrom *[3]float64 `json:"lookFrom,omitempty"`
	LookAt   *[3]float64 `json:"lookAt,omitempty"`
	FOV      float64     `json:"fov,omitempty"`
	ID       int         `json:"id,omitempty"`
	Center   [3]float64  `json:"center,omitempty"`
	Value    float64     `json:"value,omitempty"`
	Width    int         `json:"width,omitempty"`
	Height   int         `json:"height,omitempty"`
	X        int         `json:"x,omitempty"`
	Y        int         `json:"y,omitempty"`

	decodeErr error
}

// Frame encodings a client can ask for with ?format=
const (
	FormatPNG     = "png"     // window-sized PNG inside the JSON message
	FormatFloat32 = "float32" // JSON header followed by a binary RGB float32 texture, bottom row first
)

// FrameMessage carries the current estimate after a pass
type FrameMessage struct {
	Type          string  `json:"type"`
	Format        string  `json:"format"`
	Sample        int     `json:"sample"`
	Width         int     `json:"width"`
	Height        int     `json:"height"`
	TextureWidth  int     `json:"textureWidth"`
	TextureHeight int     `json:"textureHeight"`
	LastRenderMs  float64 `json:"lastRenderMs"`
	Image         string  `json:"image,omitempty"` // Base64 encoded PNG
}

type consoleEvent struct {
	Type string `json:"type"`
	ConsoleMessage
}

type errorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// session owns one renderer and drives it from a single goroutine. The
// websocket reader only queues control messages; they are applied between
// passes.
type session struct {
	id            string
	conn          *websocket.Conn
	renderer      *renderer.Renderer
	logger        *slog.Logger
	controls      chan ControlMessage
	console       chan ConsoleMessage
	frameInterval time.Duration
	format        string
	lastFrame     time.Time
}

// newSession builds the renderer for cfg. The session's logger mirrors
// every record to the client console.
func newSession(conn *websocket.Conn, cfg config.Config, base slog.Handler, frameInterval time.Duration, format string) (*session, error) {
	id := uuid.NewString()
	console := make(chan ConsoleMessage, consoleQueueLen)
	logger := slog.New(NewConsoleHandler(base, console)).With("session", id)

	s, _, err := scene.Lookup(cfg.Scene)
	if err != nil {
		return nil, err
	}
	r, err := renderer.NewRenderer(s, renderer.NewCamera(cfg.CameraConfig()), cfg.RendererConfig(), logger)
	if err != nil {
		return nil, errors.Wrap(err, "creating renderer")
	}

	return &session{
		id:            id,
		conn:          conn,
		renderer:      r,
		logger:        logger,
		controls:      make(chan ControlMessage, controlQueueLen),
		console:       console,
		frameInterval: frameInterval,
		format:        format,
	}, nil
}

// run renders until the client disconnects or ctx is cancelled
func (s *session) run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go s.readControls(ctx, cancel)

	width, height := s.renderer.Size()
	s.logger.Info("Session started", "scene_objects", s.renderer.Scene().Len(), "texture_width", width, "texture_height", height)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if err := s.drainControls(); err != nil {
			return err
		}

		rendered := s.renderer.Step()
		if err := s.flushConsole(); err != nil {
			return err
		}
		if rendered {
			if err := s.maybeSendFrame(); err != nil {
				return err
			}
			continue
		}

		// Saturated: make sure the final estimate went out, then idle until
		// the client changes something
		if err := s.sendFrame(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case msg := <-s.controls:
			if err := s.applyAndReset(msg); err != nil {
				return err
			}
		}
	}
}

// readControls decodes client messages into the control queue
func (s *session) readControls(ctx context.Context, cancel context.CancelFunc) {
	defer cancel()
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("Websocket read ended", "error", err)
			}
			return
		}
		var msg ControlMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			msg = ControlMessage{decodeErr: errors.Wrap(err, "malformed message")}
		}
		select {
		case s.controls <- msg:
		case <-ctx.Done():
			return
		}
	}
}

// drainControls applies every queued control message, then resets the
// accumulation once if anything changed
func (s *session) drainControls() error {
	changed := false
	for {
		select {
		case msg := <-s.controls:
			ok, err := s.apply(msg)
			if err != nil {
				return err
			}
			changed = changed || ok
		default:
			if changed {
				s.renderer.ResetAccumulation()
			}
			return nil
		}
	}
}

func (s *session) applyAndReset(msg ControlMessage) error {
	changed, err := s.apply(msg)
	if err != nil {
		return err
	}
	if changed {
		s.renderer.ResetAccumulation()
	}
	return nil
}

// apply performs one control message. It reports whether the image is now
// stale. Invalid requests are reported to the client and do not end the
// session; only transport failures are returned.
func (s *session) apply(msg ControlMessage) (bool, error) {
	var err error
	switch {
	case msg.decodeErr != nil:
		err = msg.decodeErr
	case msg.Type == "camera":
		camera := s.renderer.Camera().Config()
		if msg.LookFrom != nil {
			camera.LookFrom = vec(*msg.LookFrom)
		}
		if msg.LookAt != nil {
			camera.LookAt = vec(*msg.LookAt)
		}
		if msg.FOV != 0 {
			camera.VFov = msg.FOV
		}
		if err = camera.Validate(); err != nil {
			break
		}
		s.renderer.Camera().SetConfig(camera)
	case msg.Type == "object":
		err = s.renderer.Scene().SetCenter(msg.ID, vec(msg.Center))
	case msg.Type == "textureScale":
		err = s.renderer.SetTextureScale(msg.Value)
	case msg.Type == "resize":
		err = s.renderer.Resize(msg.Width, msg.Height)
	case msg.Type == "maxDepth":
		err = s.renderer.SetMaxDepth(int(msg.Value))
	case msg.Type == "pick":
		width, height := s.renderer.Size()
		resp := inspectPixel(s.renderer.Scene(), s.renderer.Camera(), width, height, msg.X, msg.Y)
		return false, s.write(resp)
	default:
		err = errors.Errorf("unknown message type %q", msg.Type)
	}

	if err != nil {
		s.logger.Warn("Rejected control message", "type", msg.Type, "error", err)
		return false, s.write(errorMessage{Type: "error", Message: err.Error()})
	}
	s.logger.Debug("Applied control message", "type", msg.Type)
	return true, nil
}

func (s *session) flushConsole() error {
	for {
		select {
		case msg := <-s.console:
			if err := s.write(consoleEvent{Type: "console", ConsoleMessage: msg}); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// maybeSendFrame throttles frames to one per frameInterval; the first sample
// after a reset always goes out so edits show up immediately
func (s *session) maybeSendFrame() error {
	if s.renderer.SampleCount() > 1 && time.Since(s.lastFrame) < s.frameInterval {
		return nil
	}
	return s.sendFrame()
}

func (s *session) sendFrame() error {
	windowWidth, windowHeight := s.renderer.WindowSize()
	textureWidth, textureHeight := s.renderer.Size()
	msg := FrameMessage{
		Type:          "frame",
		Format:        s.format,
		Sample:        s.renderer.SampleCount(),
		Width:         windowWidth,
		Height:        windowHeight,
		TextureWidth:  textureWidth,
		TextureHeight: textureHeight,
		LastRenderMs:  float64(s.renderer.LastRender().Microseconds()) / 1000,
	}

	if s.format == FormatFloat32 {
		s.lastFrame = time.Now()
		if err := s.write(msg); err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := binary.Write(&buf, binary.LittleEndian, s.renderer.Texture()); err != nil {
			return errors.Wrap(err, "encoding texture")
		}
		if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return err
		}
		return s.conn.WriteMessage(websocket.BinaryMessage, buf.Bytes())
	}

	encoded, err := imageToBase64PNG(s.renderer.Blit())
	if err != nil {
		return errors.Wrap(err, "encoding frame")
	}
	msg.Image = encoded
	s.lastFrame = time.Now()
	return s.write(msg)
}

func (s *session) write(v interface{}) error {
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return s.conn.WriteJSON(v)
}

// imageToBase64PNG converts an image to base64-encoded PNG
func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func vec(a [3]float64) core.Vec3 {
	return core.NewVec3(a[0], a[1], a[2])
}
