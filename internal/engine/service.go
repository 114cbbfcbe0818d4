package engine

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/ppbench/internal/landmarks"
)

// Service implements Engine by driving an external detection engine process.
// Requests and responses are newline-delimited JSON over the process pipes.
// The process is started lazily on first use.
type Service struct {
	command string
	args    []string

	mu         sync.Mutex
	cmd        *exec.Cmd
	stdin      io.WriteCloser
	stdout     *bufio.Reader
	started    bool
	configured bool
	config     []byte
	images     map[string]gocv.Mat
}

// NewService creates an engine backed by the given command.
func NewService(command string, args ...string) *Service {
	return &Service{
		command: command,
		args:    args,
		images:  make(map[string]gocv.Mat),
	}
}

type request struct {
	Op     string `json:"op"`
	Config string `json:"config,omitempty"`
	Path   string `json:"path,omitempty"`
	Key    string `json:"key,omitempty"`
}

type response struct {
	OK        bool              `json:"ok"`
	Error     string            `json:"error,omitempty"`
	Key       string            `json:"key,omitempty"`
	Landmarks *landmarks.Record `json:"landmarks,omitempty"`
}

// Configure sends the configuration blob to the engine process. Once the
// engine is configured, repeat calls are no-ops so a shared engine is never
// re-initialized mid-batch.
func (s *Service) Configure(config []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.configured {
		return nil
	}

	resp, err := s.roundTrip(request{Op: "configure", Config: string(config)})
	if err != nil {
		return err
	}
	if !resp.OK {
		return fmt.Errorf("engine configure failed: %s", resp.Error)
	}

	s.configured = true
	s.config = config
	return nil
}

// SetImage loads the image locally for rendering and registers it with the
// engine's image store. Returns the engine's key for the image.
func (s *Service) SetImage(path string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.configured {
		return "", fmt.Errorf("engine not configured")
	}

	resp, err := s.roundTrip(request{Op: "setImage", Path: path})
	if err != nil {
		return "", err
	}
	if !resp.OK {
		return "", fmt.Errorf("engine setImage %s: %s", path, resp.Error)
	}

	img := gocv.IMRead(path, gocv.IMReadColor)
	if !img.Empty() {
		if old, ok := s.images[resp.Key]; ok {
			old.Close()
		}
		s.images[resp.Key] = img
	}
	return resp.Key, nil
}

// DetectLandmarks runs detection on a previously loaded image.
func (s *Service) DetectLandmarks(key string) (*landmarks.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp, err := s.roundTrip(request{Op: "detect", Key: key})
	if err != nil {
		return nil, err
	}
	if !resp.OK || resp.Landmarks == nil {
		return nil, fmt.Errorf("engine detect %s: %s", key, resp.Error)
	}
	return resp.Landmarks, nil
}

// Image returns the locally loaded buffer for a key.
func (s *Service) Image(key string) (gocv.Mat, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	img, ok := s.images[key]
	return img, ok
}

// Close shuts down the engine process and releases loaded images.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, img := range s.images {
		img.Close()
		delete(s.images, key)
	}
	return s.shutdown()
}

func (s *Service) roundTrip(req request) (*response, error) {
	if err := s.ensureStarted(); err != nil {
		return nil, err
	}

	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	data = append(data, '\n')
	if _, err := s.stdin.Write(data); err != nil {
		return nil, fmt.Errorf("write request: %w", err)
	}

	line, err := s.stdout.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var resp response
	if err := json.Unmarshal([]byte(line), &resp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return &resp, nil
}

func (s *Service) ensureStarted() error {
	if s.started {
		return nil
	}

	s.cmd = exec.Command(s.command, s.args...)

	stdin, err := s.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}
	stdout, err := s.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}
	s.cmd.Stderr = os.Stderr

	if err := s.cmd.Start(); err != nil {
		return fmt.Errorf("start engine process: %w", err)
	}

	s.stdin = stdin
	s.stdout = bufio.NewReader(stdout)
	s.started = true
	return nil
}

func (s *Service) shutdown() error {
	if !s.started {
		return nil
	}

	if s.stdin != nil {
		s.stdin.Close()
	}
	err := s.cmd.Wait()

	s.started = false
	s.configured = false
	s.cmd = nil
	s.stdin = nil
	s.stdout = nil
	return err
}
