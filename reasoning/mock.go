package reasoning

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MockService is a deterministic in-memory Service for tests and examples.
// Canned responses registered via AddResponse match on prompt substring and
// take precedence over the FIFO queue; prompts matching neither are echoed.
// All methods are safe for concurrent use.
type MockService struct {
	mu        sync.Mutex
	canned    []cannedResponse
	queue     []string
	failErr   error
	failTimes int
	calls     []Request
}

type cannedResponse struct {
	substr string
	text   string
}

// NewMockService constructs an empty MockService.
func NewMockService() *MockService {
	return &MockService{}
}

// AddResponse registers a canned completion returned whenever the prompt
// contains substr. Registrations are checked in insertion order.
func (m *MockService) AddResponse(substr, text string) *MockService {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.canned = append(m.canned, cannedResponse{substr: substr, text: text})
	return m
}

// Queue appends completions returned in FIFO order for prompts that match
// no canned substring.
func (m *MockService) Queue(texts ...string) *MockService {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, texts...)
	return m
}

// FailWith makes every subsequent call return err until cleared with a nil err.
func (m *MockService) FailWith(err error) *MockService {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failErr = err
	m.failTimes = 0
	return m
}

// FailTimes makes the next n calls return err, then recovers.
func (m *MockService) FailTimes(n int, err error) *MockService {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failErr = err
	m.failTimes = n
	return m
}

// Calls returns a copy of every request received so far.
func (m *MockService) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns the number of requests received so far.
func (m *MockService) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// LastCall returns the most recent request, or a zero Request if none.
func (m *MockService) LastCall() Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return Request{}
	}
	return m.calls[len(m.calls)-1]
}

// CompleteText implements Service.
func (m *MockService) CompleteText(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, req)

	if m.failErr != nil {
		err := m.failErr
		if m.failTimes > 0 {
			m.failTimes--
			if m.failTimes == 0 {
				m.failErr = nil
			}
		}
		return nil, err
	}

	model := req.Model
	if model == "" {
		model = "mock-model"
	}

	for _, c := range m.canned {
		if strings.Contains(req.Prompt, c.substr) {
			return m.response(c.text, model, req), nil
		}
	}

	if len(m.queue) > 0 {
		text := m.queue[0]
		m.queue = m.queue[1:]
		return m.response(text, model, req), nil
	}

	return m.response(fmt.Sprintf("Mock response to: %s", req.Prompt), model, req), nil
}

// Provider implements Service.
func (m *MockService) Provider() string { return "mock" }

func (m *MockService) response(text, model string, req Request) *Response {
	return &Response{
		Text:  text,
		Model: model,
		Usage: Usage{
			InputTokens:  int64(len(req.Prompt)+len(req.System)) / 4,
			OutputTokens: int64(len(text)) / 4,
		},
	}
}
