package runware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// ErrSessionClosed is returned for operations on a closed session.
var ErrSessionClosed = errors.New("runware session closed")

// maxFrameBytes bounds a single inbound frame.
const maxFrameBytes = 4 << 20

// listenerBuffer bounds frames queued for one task.
const listenerBuffer = 8

// taskError is one entry of an "errors" frame.
type taskError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	TaskUUID string `json:"taskUUID,omitempty"`
	TaskType string `json:"taskType,omitempty"`
}

func (e taskError) Error() string {
	if e.Code != "" {
		return e.Code + ": " + e.Message
	}
	return e.Message
}

// taskResult is one entry of a "data" frame.
type taskResult struct {
	TaskType              string `json:"taskType"`
	TaskUUID              string `json:"taskUUID"`
	ImageUUID             string `json:"imageUUID,omitempty"`
	ImageURL              string `json:"imageURL,omitempty"`
	ImageBase64Data       string `json:"imageBase64Data,omitempty"`
	ConnectionSessionUUID string `json:"connectionSessionUUID,omitempty"`
}

// usable reports whether r carries an image.
func (r taskResult) usable() bool {
	return r.ImageURL != "" || r.ImageBase64Data != ""
}

// envelope is the shape of every server frame.
type envelope struct {
	Data   []taskResult `json:"data,omitempty"`
	Errors []taskError  `json:"errors,omitempty"`
	// Older API versions report a single error object.
	Error *taskError `json:"error,omitempty"`
}

func (e envelope) errs() []taskError {
	if e.Error != nil {
		return append(e.Errors, *e.Error)
	}
	return e.Errors
}

// frame is what a task listener receives.
type frame struct {
	result *taskResult
	err    error
}

// Session is an authenticated websocket connection to the vendor.
// It must be closed; prefer Client.WithSession, which guarantees that.
type Session struct {
	conn        *websocket.Conn
	sessionUUID string

	writeMu sync.Mutex

	mu        sync.Mutex
	listeners map[string]chan frame

	readDone  chan struct{}
	readErr   error
	closeOnce sync.Once
}

// dial connects and authenticates a new session.
func dial(ctx context.Context, url, apiKey string, hc *http.Client) (*Session, error) {
	conn, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{HTTPClient: hc})
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	conn.SetReadLimit(maxFrameBytes)

	s := &Session{
		conn:      conn,
		listeners: make(map[string]chan frame),
		readDone:  make(chan struct{}),
	}

	if err := s.authenticate(ctx, apiKey); err != nil {
		conn.CloseNow()
		return nil, err
	}

	go s.readLoop()
	return s, nil
}

func (s *Session) authenticate(ctx context.Context, apiKey string) error {
	auth := []map[string]string{{"taskType": "authentication", "apiKey": apiKey}}
	if err := wsjson.Write(ctx, s.conn, auth); err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}

	var env envelope
	if err := wsjson.Read(ctx, s.conn, &env); err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}
	if errs := env.errs(); len(errs) > 0 {
		return fmt.Errorf("authenticate: %w", errs[0])
	}
	for _, d := range env.Data {
		if d.TaskType == "authentication" {
			s.sessionUUID = d.ConnectionSessionUUID
			return nil
		}
	}
	return errors.New("authenticate: no authentication acknowledgement")
}

// readLoop routes frames to task listeners until the connection ends.
func (s *Session) readLoop() {
	defer close(s.readDone)
	for {
		var env envelope
		// Reads are bounded by the connection lifetime, not a request.
		if err := wsjson.Read(context.Background(), s.conn, &env); err != nil {
			s.mu.Lock()
			s.readErr = err
			s.mu.Unlock()
			return
		}
		for i := range env.Data {
			s.dispatch(env.Data[i].TaskUUID, frame{result: &env.Data[i]})
		}
		for _, e := range env.errs() {
			s.dispatch(e.TaskUUID, frame{err: e})
		}
	}
}

// dispatch delivers f to the task's listener. Frames without a task UUID
// go to every listener.
func (s *Session) dispatch(taskUUID string, f frame) {
	s.mu.Lock()
	var targets []chan frame
	if taskUUID == "" {
		for _, ch := range s.listeners {
			targets = append(targets, ch)
		}
	} else if ch, ok := s.listeners[taskUUID]; ok {
		targets = append(targets, ch)
	}
	s.mu.Unlock()

	for _, ch := range targets {
		select {
		case ch <- f:
		default:
			// Listener is full; it has already seen more frames than it asked for.
		}
	}
}

func (s *Session) listen(taskUUID string) chan frame {
	ch := make(chan frame, listenerBuffer)
	s.mu.Lock()
	s.listeners[taskUUID] = ch
	s.mu.Unlock()
	return ch
}

func (s *Session) unlisten(taskUUID string) {
	s.mu.Lock()
	delete(s.listeners, taskUUID)
	s.mu.Unlock()
}

func (s *Session) write(ctx context.Context, v any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return wsjson.Write(ctx, s.conn, v)
}

// PartialFunc receives results or an error as frames arrive for a task.
type PartialFunc func(results []taskResult, err error)

// Run submits task and returns the vendor's direct response: it collects
// frames until want of them carry an image, or until a frame arrives
// without one. An imageless frame is an acknowledgement and the images
// follow later on the same task.
//
// onPartial sees every frame for the task, including frames that arrive
// after Run returns, until release is called or the connection ends. A
// lost connection is reported to onPartial as an error. release must be
// called and is safe to call more than once.
func (s *Session) Run(ctx context.Context, taskUUID string, task any, want int, onPartial PartialFunc) (results []taskResult, release func(), err error) {
	noop := func() {}
	if onPartial == nil {
		onPartial = func([]taskResult, error) {}
	}

	select {
	case <-s.readDone:
		return nil, noop, ErrSessionClosed
	default:
	}

	ch := s.listen(taskUUID)
	if err := s.write(ctx, []any{task}); err != nil {
		s.unlisten(taskUUID)
		return nil, noop, fmt.Errorf("submit task: %w", err)
	}

	usable := 0
	for usable < want {
		var f frame
		select {
		case f = <-ch:
		case <-s.readDone:
			s.unlisten(taskUUID)
			return results, noop, s.connectionLost()
		case <-ctx.Done():
			s.unlisten(taskUUID)
			return results, noop, ctx.Err()
		}

		if f.err != nil {
			onPartial(nil, f.err)
			s.unlisten(taskUUID)
			return results, noop, f.err
		}
		onPartial([]taskResult{*f.result}, nil)
		results = append(results, *f.result)
		if !f.result.usable() {
			break
		}
		usable++
	}

	if usable >= want {
		s.unlisten(taskUUID)
		return results, noop, nil
	}
	return results, s.forward(taskUUID, ch, onPartial), nil
}

// forward passes later frames for taskUUID to onPartial until the returned
// release func is called or the connection ends.
func (s *Session) forward(taskUUID string, ch chan frame, onPartial PartialFunc) func() {
	stop := make(chan struct{})
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)
		defer s.unlisten(taskUUID)
		for {
			select {
			case f := <-ch:
				if f.err != nil {
					onPartial(nil, f.err)
				} else {
					onPartial([]taskResult{*f.result}, nil)
				}
			case <-s.readDone:
				onPartial(nil, s.connectionLost())
				return
			case <-stop:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-stopped
		})
	}
}

func (s *Session) connectionLost() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Errorf("connection lost: %w", s.readErr)
}

// Close tears the session down. It is safe to call more than once.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.conn.Close(websocket.StatusNormalClosure, "")
		<-s.readDone
	})
	return err
}
