package chatcmder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour/styles"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/ollamachat/cmd/ollamachat/prefsflags"
	"github.com/papercomputeco/ollamachat/pkg/llm"
	"github.com/papercomputeco/ollamachat/pkg/ollama"
)

type recordedRequest struct {
	path string
	body map[string]any
}

// upstream answers every call with a numbered reply and records what it got.
type upstream struct {
	*httptest.Server

	mu       sync.Mutex
	requests []recordedRequest
	failing  bool
}

func newUpstream() *upstream {
	u := &upstream{}
	u.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)

		u.mu.Lock()
		u.requests = append(u.requests, recordedRequest{path: r.URL.Path, body: body})
		n, failing := len(u.requests), u.failing
		u.mu.Unlock()

		if failing {
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"error":"model not found"}`)
			return
		}
		reply := fmt.Sprintf("<reply %d>", n)
		if r.URL.Path == ollama.EndpointChat {
			fmt.Fprintf(w, `{"message":{"role":"assistant","content":%q},"done":true}`, reply)
			return
		}
		fmt.Fprintf(w, `{"response":%q,"done":true}`, reply)
	}))
	return u
}

func (u *upstream) received() []recordedRequest {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]recordedRequest(nil), u.requests...)
}

func (u *upstream) setFailing(failing bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.failing = failing
}

var _ = Describe("Chat Command", func() {
	var (
		server *upstream
		out    *bytes.Buffer
	)

	BeforeEach(func() {
		server = newUpstream()
		out = &bytes.Buffer{}
	})

	AfterEach(func() {
		server.Close()
	})

	execute := func(input string, args ...string) error {
		flags := &prefsflags.Flags{
			ConfigPath: filepath.Join(GinkgoT().TempDir(), "config.toml"),
			Server:     server.URL,
		}
		cmd := NewChatCmd(flags)
		cmd.SetIn(strings.NewReader(input))
		cmd.SetOut(out)
		cmd.SetErr(io.Discard)
		cmd.SetArgs(args)
		return cmd.ExecuteContext(context.Background())
	}

	It("starts in generate mode and continues in chat mode", func() {
		Expect(execute("hi\nand again\n", "--system", "Be brief")).To(Succeed())

		reqs := server.received()
		Expect(reqs).To(HaveLen(2))

		Expect(reqs[0].path).To(Equal(ollama.EndpointGenerate))
		Expect(reqs[0].body["prompt"]).To(Equal("Be brief\n\nhi"))

		Expect(reqs[1].path).To(Equal(ollama.EndpointChat))
		Expect(reqs[1].body["messages"]).To(Equal([]any{
			map[string]any{"role": "system", "content": "Be brief"},
			map[string]any{"role": "user", "content": "hi"},
			map[string]any{"role": "assistant", "content": "<reply 1>"},
			map[string]any{"role": "user", "content": "and again"},
		}))

		Expect(out.String()).To(ContainSubstring("<reply 1>"))
		Expect(out.String()).To(ContainSubstring("<reply 2>"))
	})

	It("uses the preferred system prompt by default", func() {
		Expect(execute("hi\n")).To(Succeed())
		Expect(server.received()[0].body["prompt"]).To(HavePrefix("You tell stories about blue robots on Mars\n\n"))
	})

	It("sends no system prompt with --no-system", func() {
		Expect(execute("hi\n", "--no-system")).To(Succeed())
		Expect(server.received()[0].body["prompt"]).To(Equal("hi"))
	})

	It("forwards the model and options", func() {
		Expect(execute("hi\n", "--model", "mistral:latest", "-o", "temperature=0.1")).To(Succeed())
		body := server.received()[0].body
		Expect(body["model"]).To(Equal("mistral:latest"))
		Expect(body["options"]).To(Equal(map[string]any{"temperature": 0.1}))
	})

	It("starts over after /reset", func() {
		Expect(execute("hi\n/reset\nagain\n", "--no-system")).To(Succeed())

		reqs := server.received()
		Expect(reqs).To(HaveLen(2))
		Expect(reqs[1].path).To(Equal(ollama.EndpointGenerate))
		Expect(reqs[1].body["prompt"]).To(Equal("again"))
		Expect(out.String()).To(ContainSubstring("Conversation cleared."))
	})

	It("skips blank lines and stops at /exit", func() {
		Expect(execute("\n  \nhi\n/exit\nnever sent\n")).To(Succeed())
		Expect(server.received()).To(HaveLen(1))
	})

	It("reports a failed turn and leaves it out of the conversation", func() {
		server.setFailing(true)
		Expect(execute("hi\n", "--no-system")).To(Succeed())
		Expect(out.String()).To(ContainSubstring("model not found"))
	})

	It("rejects malformed options", func() {
		Expect(execute("hi\n", "-o", "temperature")).To(MatchError(ContainSubstring("expected key=value")))
		Expect(server.received()).To(BeEmpty())
	})
})

var _ = Describe("Session", func() {
	var (
		server *upstream
		s      *session
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		server = newUpstream()
		s = &session{client: ollama.New(server.URL, zap.NewNop())}
	})

	AfterEach(func() {
		server.Close()
	})

	It("does not record a turn that failed", func() {
		server.setFailing(true)
		_, err := s.generate(ctx, "hi")
		Expect(err).To(MatchError(ollama.ErrGenerationFailed))
		Expect(s.transcript).To(BeEmpty())
	})

	It("keeps replies unescaped", func() {
		result, err := s.generate(ctx, "hi")
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Text).To(Equal("<reply 1>"))
	})

	It("records user and assistant turns in order", func() {
		s.record("hi", "hello")
		s.record("again", "hello again")
		Expect(s.transcript).To(Equal([]llm.Message{
			{Role: llm.RoleUser, Content: "hi"},
			{Role: llm.RoleAssistant, Content: "hello"},
			{Role: llm.RoleUser, Content: "again"},
			{Role: llm.RoleAssistant, Content: "hello again"},
		}))

		s.reset()
		Expect(s.transcript).To(BeEmpty())
	})
})

var _ = Describe("Chat TUI", func() {
	var (
		server *upstream
		s      *session
		m      tuiModel
	)

	BeforeEach(func() {
		server = newUpstream()
		s = &session{client: ollama.New(server.URL, zap.NewNop())}
		m = newTUIModel(context.Background(), s, styles.NoTTYStyle)
	})

	AfterEach(func() {
		server.Close()
	})

	update := func(msg tea.Msg) tea.Cmd {
		next, cmd := m.Update(msg)
		m = next.(tuiModel)
		return cmd
	}

	enter := func(text string) tea.Cmd {
		m.input.SetValue(text)
		return update(tea.KeyMsg{Type: tea.KeyEnter})
	}

	It("shows the resolved model before the first message", func() {
		Expect(m.View()).To(ContainSubstring("model: " + ollama.DefaultTextModel))
	})

	It("sends a prompt and waits for the reply", func() {
		cmd := enter("hello robots")
		Expect(cmd).NotTo(BeNil())
		Expect(m.waiting).To(BeTrue())
		Expect(m.input.Value()).To(BeEmpty())
		Expect(m.View()).To(ContainSubstring("hello robots"))

		Expect(enter("too soon")).To(BeNil())
		Expect(m.turns).To(HaveLen(1))
	})

	It("records the reply when it arrives", func() {
		enter("hello robots")
		update(m.generate("hello robots")())

		Expect(m.waiting).To(BeFalse())
		Expect(s.transcript).To(HaveLen(2))
		Expect(m.View()).To(ContainSubstring("reply 1"))
	})

	It("shows an error and keeps the transcript unchanged", func() {
		server.setFailing(true)
		enter("hello robots")
		update(m.generate("hello robots")())

		Expect(s.transcript).To(BeEmpty())
		Expect(m.status).To(ContainSubstring("model not found"))
	})

	It("takes a failed turn off screen and restores the prompt", func() {
		s.record("hi", "hello")
		m.turns = append(m.turns, s.transcript...)

		server.setFailing(true)
		enter("hello robots")
		update(m.generate("hello robots")())

		Expect(m.turns).To(Equal(s.transcript))
		Expect(m.input.Value()).To(Equal("hello robots"))
	})

	It("clears the conversation on /reset", func() {
		s.record("hi", "hello")
		m.turns = append(m.turns, s.transcript...)

		Expect(enter("/reset")).To(BeNil())
		Expect(s.transcript).To(BeEmpty())
		Expect(m.turns).To(BeEmpty())
		Expect(m.status).To(Equal("conversation cleared"))
		Expect(server.received()).To(BeEmpty())
	})

	It("ignores empty input", func() {
		Expect(enter("   ")).To(BeNil())
		Expect(m.waiting).To(BeFalse())
	})

	It("quits on escape and /exit", func() {
		Expect(update(tea.KeyMsg{Type: tea.KeyEsc})()).To(Equal(tea.Quit()))
		Expect(enter("/exit")()).To(Equal(tea.Quit()))
	})

	It("resizes to the window", func() {
		update(tea.WindowSizeMsg{Width: 100, Height: 40})
		Expect(m.viewport.Width).To(Equal(100))
		Expect(m.viewport.Height).To(Equal(40 - inputHeight - 2))
	})
})
